package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Service runs the fetch → render → publish pipeline.
type Service struct {
	fetcher   Fetcher
	publisher Publisher
	store     Store
	cities    []string
	mode      RenderMode
}

// NewService creates a new Service. store may be nil.
func NewService(fetcher Fetcher, publisher Publisher, store Store, cities []string, mode RenderMode) *Service {
	return &Service{
		fetcher:   fetcher,
		publisher: publisher,
		store:     store,
		cities:    cities,
		mode:      mode,
	}
}

// Cities returns the configured city list in order.
func (s *Service) Cities() []string {
	return append([]string(nil), s.cities...)
}

// FetchResults fetches each city in turn. Every city yields exactly one result,
// in input order; a failed fetch never stops the rest of the batch.
func (s *Service) FetchResults(ctx context.Context, cities []string) []FetchResult {
	fetcher := s.fetcher
	if b, ok := fetcher.(BatchScoper); ok {
		fetcher = b.Batch()
	}

	results := make([]FetchResult, 0, len(cities))
	for _, city := range cities {
		r, err := fetcher.FetchOne(ctx, city)
		if err != nil {
			log.Printf("ERROR: fetch failed for %s: %v", city, err)
		}
		results = append(results, FetchResult{City: city, Record: r, Err: err})
	}
	return results
}

// FetchAll fetches each city and substitutes a placeholder for every failure.
func (s *Service) FetchAll(ctx context.Context, cities []string) []Record {
	return Records(s.FetchResults(ctx, cities))
}

// Records maps results to records, replacing failures with placeholders.
func Records(results []FetchResult) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, r.RecordOrPlaceholder())
	}
	return records
}

// Run executes one pipeline run over the configured cities. Fetch failures are
// absorbed into placeholder rows; a publish failure is returned.
func (s *Service) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log.Printf("INFO: run %s started for %d cities", report.ID, len(s.cities))

	results := s.FetchResults(ctx, s.cities)
	for _, r := range results {
		if r.Err != nil {
			report.FailedCities = append(report.FailedCities, r.City)
		}
	}
	report.Records = Records(results)

	err := s.publish(ctx, Render(s.mode, report.Records))
	if err != nil {
		report.Error = err.Error()
		log.Printf("ERROR: run %s publish failed: %v", report.ID, err)
	} else {
		report.Published = true
		log.Printf("INFO: run %s published (%d/%d cities fetched)",
			report.ID, len(results)-len(report.FailedCities), len(results))
	}

	report.FinishedAt = time.Now().UTC()
	if s.store != nil {
		s.store.SaveRun(report)
	}
	return report, err
}

func (s *Service) publish(ctx context.Context, msg Message) error {
	if s.publisher == nil {
		return fmt.Errorf("%w: no publisher configured", ErrConfig)
	}
	return s.publisher.Publish(ctx, msg)
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (RunReport, error) {
	if s.store == nil {
		return RunReport{}, fmt.Errorf("%w: no run store configured", ErrConfig)
	}
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]RunReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: no run store configured", ErrConfig)
	}
	return s.store.GetRange(from, to)
}
