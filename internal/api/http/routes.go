package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cwa-weather-push/internal/store"
	"github.com/i474232898/cwa-weather-push/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	api := app.Group("/api")

	// On-demand fetch; independent of scheduled runs.
	api.Get("/weather", func(c *fiber.Ctx) error {
		cities := service.Cities()
		if city := c.Query("city"); city != "" {
			if err := validate.Var(city, "oneof="+strings.Join(cities, " ")); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "unknown city: "+city)
			}
			cities = []string{city}
		}

		records := service.FetchAll(c.UserContext(), cities)
		return c.JSON(fiber.Map{
			"records":   records,
			"highlight": weather.Highlight(records),
			"timeRange": weather.TimeRange(records),
		})
	})

	api.Get("/temp", func(c *fiber.Ctx) error {
		records := service.FetchAll(c.UserContext(), service.Cities())

		temps := make([]cityTemp, 0, len(records))
		for _, r := range records {
			temps = append(temps, cityTemp{City: r.City, MinTemp: r.MinTemp, MaxTemp: r.MaxTemp})
		}

		resp := fiber.Map{"cities": temps, "hottest": nil, "coldest": nil}
		if r, ok := weather.Hottest(records); ok {
			resp["hottest"] = cityTemp{City: r.City, MaxTemp: r.MaxTemp}
		}
		if r, ok := weather.Coldest(records); ok {
			resp["coldest"] = cityTemp{City: r.City, MinTemp: r.MinTemp}
		}
		return c.JSON(resp)
	})

	v1 := api.Group("/v1")

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		run, err := service.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no pipeline run recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run log")
		}
		return c.JSON(run)
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		runs, err := service.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no pipeline runs in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run log")
		}

		return c.JSON(fiber.Map{
			"from": req.From,
			"to":   req.To,
			"runs": runs,
		})
	})
}

type cityTemp struct {
	City    string `json:"city"`
	MinTemp *int   `json:"minTemp,omitempty"`
	MaxTemp *int   `json:"maxTemp,omitempty"`
}

// rangeQuery holds query parameters for the run history endpoint.
type rangeQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *rangeQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
