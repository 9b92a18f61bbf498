package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/cwa-weather-push/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultCWABaseURL is the 36-hour county forecast dataset.
const DefaultCWABaseURL = "https://opendata.cwa.gov.tw/api/v1/rest/datastore/F-C0032-001"

// Element names in the F-C0032-001 dataset.
const (
	elementCondition = "Wx"
	elementPoP       = "PoP"
	elementMinTemp   = "MinT"
	elementMaxTemp   = "MaxT"
)

// CWAProvider fetches the first forecast period for a city from the
// Central Weather Administration open-data API.
type CWAProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewCWAProvider creates a provider; an empty baseURL selects DefaultCWABaseURL.
func NewCWAProvider(client *http.Client, baseURL, apiKey string) *CWAProvider {
	if baseURL == "" {
		baseURL = DefaultCWABaseURL
	}
	return &CWAProvider{
		name:    "cwa",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("cwa", 6, time.Minute),
	}
}

func (p *CWAProvider) Name() string {
	return p.name
}

// Batch returns a fetcher sharing this provider's settings but with a fresh
// circuit breaker, so failures never carry over from one batch to the next.
func (p *CWAProvider) Batch() weather.Fetcher {
	b := *p
	b.circuit = newBreaker(p.name, 6, time.Minute)
	return &b
}

// FetchOne returns the first-period record for city. It fails with
// weather.ErrConfig when no API key is set and weather.ErrUpstream when the
// call fails or the response carries no location.
func (p *CWAProvider) FetchOne(ctx context.Context, city string) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("%w: missing CWA API key", weather.ErrConfig)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("Authorization", p.apiKey)
		values.Set("locationName", city)
		values.Set("format", "JSON")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Record{}, fmt.Errorf("%w: %s: %w", weather.ErrUpstream, city, err)
	}
	defer resp.Body.Close()

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return weather.Record{}, fmt.Errorf("%w: %s: decode response: %w", weather.ErrUpstream, city, err)
	}

	return parseFirstPeriod(raw, city)
}

func parseFirstPeriod(raw map[string]any, city string) (weather.Record, error) {
	locations := array(object(raw, "records"), "location")
	if len(locations) == 0 {
		return weather.Record{}, fmt.Errorf("%w: no data for %s", weather.ErrUpstream, city)
	}

	loc, _ := locations[0].(map[string]any)
	elements := array(loc, "weatherElement")

	wx := pick(elements, elementCondition)
	pop := pick(elements, elementPoP)
	minT := pick(elements, elementMinTemp)
	maxT := pick(elements, elementMaxTemp)

	name := str(loc, "locationName")
	if name == "" {
		name = city
	}

	return weather.Record{
		City:      name,
		Condition: str(parameter(wx), "parameterName"),
		PoP:       toInt(parameter(pop)["parameterName"]),
		MinTemp:   toInt(parameter(minT)["parameterName"]),
		MaxTemp:   toInt(parameter(maxT)["parameterName"]),
		Start:     str(first(wx), "startTime"),
		End:       str(first(wx), "endTime"),
	}, nil
}

// pick returns the time series of the element named name, or nil.
func pick(elements []any, name string) []any {
	for _, e := range elements {
		el, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if str(el, "elementName") == name {
			return array(el, "time")
		}
	}
	return nil
}

// first returns the first period of a time series, or nil.
func first(series []any) map[string]any {
	if len(series) == 0 {
		return nil
	}
	m, _ := series[0].(map[string]any)
	return m
}

func parameter(series []any) map[string]any {
	return object(first(series), "parameter")
}

func object(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func array(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// toInt parses an integer permissively. Anything that is not an integer
// yields nil rather than an error.
func toInt(v any) *int {
	switch x := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		return &n
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil
		}
		n := int(x)
		return &n
	default:
		return nil
	}
}
