package weather

import (
	"time"
)

// FailedCondition is the condition text carried by a placeholder record.
const FailedCondition = "取得失敗"

// SixCities is the default city list. Order determines table row order and
// which record supplies the forecast time range.
var SixCities = []string{"臺北市", "新北市", "桃園市", "臺中市", "臺南市", "高雄市"}

// Record is the first forecast period for one city, flattened.
// Nil numeric fields mean the upstream value was missing or unparseable.
type Record struct {
	City      string `json:"city"`
	Condition string `json:"condition"`
	PoP       *int   `json:"pop"`
	MinTemp   *int   `json:"minTemp"`
	MaxTemp   *int   `json:"maxTemp"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
}

// Placeholder returns the record substituted for a city whose fetch failed.
func Placeholder(city string) Record {
	return Record{
		City:      city,
		Condition: FailedCondition,
	}
}

// FetchResult keeps the outcome of one city's fetch, success or failure.
type FetchResult struct {
	City   string
	Record Record
	Err    error
}

// RecordOrPlaceholder returns the fetched record, or the placeholder if the fetch failed.
func (r FetchResult) RecordOrPlaceholder() Record {
	if r.Err != nil {
		return Placeholder(r.City)
	}
	return r.Record
}

// Embed is the structured webhook payload.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedFooter is the small attribution line under an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Message is what a Publisher delivers. At least one of Content or Embeds
// should be set, but neither is enforced.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// RunReport describes one pipeline run.
type RunReport struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"startedAt"` // always UTC
	FinishedAt   time.Time `json:"finishedAt"`
	Records      []Record  `json:"records"`
	FailedCities []string  `json:"failedCities,omitempty"`
	Published    bool      `json:"published"`
	Error        string    `json:"error,omitempty"`
}
