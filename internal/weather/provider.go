package weather

import (
	"context"
	"time"
)

// Fetcher abstracts the forecast data source (e.g. the CWA open-data API).
type Fetcher interface {
	FetchOne(ctx context.Context, city string) (Record, error)
}

// BatchScoper is implemented by fetchers that keep per-batch state. The
// service asks for a fresh fetcher at the start of every batch.
type BatchScoper interface {
	Batch() Fetcher
}

// Publisher delivers a rendered message to a chat webhook.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Store is the contract the in-memory run log must satisfy.
type Store interface {
	SaveRun(report RunReport)
	GetLatest() (RunReport, error)
	GetRange(from, to time.Time) ([]RunReport, error)
}
