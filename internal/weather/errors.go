package weather

import "errors"

var (
	// ErrConfig reports a missing credential or endpoint. Never retried.
	ErrConfig = errors.New("configuration error")
	// ErrUpstream reports a failed forecast fetch for one city.
	ErrUpstream = errors.New("upstream error")
	// ErrDelivery reports a failed webhook publish.
	ErrDelivery = errors.New("delivery error")
)
