package weather

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchOne(_ context.Context, city string) (Record, error) {
	f.calls = append(f.calls, city)
	if err := f.fail[city]; err != nil {
		return Record{}, err
	}
	n := len(f.calls)
	return Record{
		City:      city,
		Condition: "多雲",
		PoP:       intPtr(10 * n),
		MinTemp:   intPtr(20 + n),
		MaxTemp:   intPtr(28 + n),
		Start:     "2026-10-15 06:00:00",
		End:       "2026-10-15 18:00:00",
	}, nil
}

// scopedFetcher hands out a new fakeFetcher for every batch.
type scopedFetcher struct {
	fakeFetcher
	batches []*fakeFetcher
}

func (s *scopedFetcher) Batch() Fetcher {
	b := &fakeFetcher{fail: s.fail}
	s.batches = append(s.batches, b)
	return b
}

type fakePublisher struct {
	err  error
	msgs []Message
}

func (p *fakePublisher) Publish(_ context.Context, msg Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fakeStore struct {
	runs []RunReport
}

func (s *fakeStore) SaveRun(r RunReport) { s.runs = append(s.runs, r) }
func (s *fakeStore) GetLatest() (RunReport, error) {
	if len(s.runs) == 0 {
		return RunReport{}, errors.New("empty")
	}
	return s.runs[len(s.runs)-1], nil
}
func (s *fakeStore) GetRange(_, _ time.Time) ([]RunReport, error) { return s.runs, nil }

func TestFetchAllPreservesOrderAndLength(t *testing.T) {
	cities := []string{"A", "B", "C", "D", "E"}
	f := &fakeFetcher{fail: map[string]error{
		"B": fmt.Errorf("%w: boom", ErrUpstream),
		"E": fmt.Errorf("%w: missing key", ErrConfig),
	}}
	svc := NewService(f, nil, nil, cities, ModeEmbed)

	records := svc.FetchAll(context.Background(), cities)
	require.Len(t, records, len(cities))
	assert.Equal(t, cities, f.calls)
	for i, r := range records {
		assert.Equal(t, cities[i], r.City)
	}
	assert.Equal(t, Placeholder("B"), records[1])
	assert.Equal(t, Placeholder("E"), records[4])
}

func TestFetchResultsKeepErrors(t *testing.T) {
	upstream := fmt.Errorf("%w: 503", ErrUpstream)
	f := &fakeFetcher{fail: map[string]error{"B": upstream}}
	svc := NewService(f, nil, nil, nil, ModeEmbed)

	results := svc.FetchResults(context.Background(), []string{"A", "B"})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrUpstream)
	assert.Equal(t, FailedCondition, results[1].RecordOrPlaceholder().Condition)
}

// Six cities, the third one failing upstream.
func TestRunIsolatesFailedCity(t *testing.T) {
	failed := SixCities[2]
	f := &fakeFetcher{fail: map[string]error{failed: fmt.Errorf("%w: timeout", ErrUpstream)}}
	p := &fakePublisher{}
	st := &fakeStore{}
	svc := NewService(f, p, st, SixCities, ModeEmbed)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Records, 6)
	third := report.Records[2]
	assert.Equal(t, failed, third.City)
	assert.Equal(t, FailedCondition, third.Condition)
	assert.Nil(t, third.PoP)
	assert.Nil(t, third.MinTemp)
	assert.Nil(t, third.MaxTemp)
	assert.Equal(t, []string{failed}, report.FailedCities)

	hot, _ := Hottest(report.Records)
	cold, _ := Coldest(report.Records)
	wet, _, _ := Wettest(report.Records)
	assert.NotEqual(t, failed, hot.City)
	assert.NotEqual(t, failed, cold.City)
	assert.NotContains(t, wet, failed)

	assert.True(t, report.Published)
	assert.NotEmpty(t, report.ID)
	require.Len(t, p.msgs, 1)
	require.Len(t, p.msgs[0].Embeds, 1)
	assert.Equal(t, BuildEmbed(report.Records), p.msgs[0].Embeds[0])
	require.Len(t, st.runs, 1)
}

func TestRunTextMode(t *testing.T) {
	p := &fakePublisher{}
	svc := NewService(&fakeFetcher{}, p, nil, []string{"臺北市"}, ModeText)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, p.msgs, 1)
	assert.Empty(t, p.msgs[0].Embeds)
	assert.Contains(t, p.msgs[0].Content, "臺北")
}

func TestRunPropagatesDeliveryError(t *testing.T) {
	p := &fakePublisher{err: fmt.Errorf("%w: webhook returned 500", ErrDelivery)}
	st := &fakeStore{}
	svc := NewService(&fakeFetcher{}, p, st, []string{"A"}, ModeEmbed)

	report, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrDelivery)
	assert.False(t, report.Published)
	assert.NotEmpty(t, report.Error)

	// The failed run is still recorded.
	require.Len(t, st.runs, 1)
	assert.False(t, st.runs[0].Published)
}

func TestRunWithoutPublisher(t *testing.T) {
	svc := NewService(&fakeFetcher{}, nil, nil, []string{"A"}, ModeEmbed)

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestCitiesReturnsCopy(t *testing.T) {
	cities := []string{"A", "B"}
	svc := NewService(&fakeFetcher{}, nil, nil, cities, ModeEmbed)

	got := svc.Cities()
	got[0] = "Z"
	assert.Equal(t, []string{"A", "B"}, svc.Cities())
}

func TestRunLogWithoutStore(t *testing.T) {
	svc := NewService(&fakeFetcher{}, nil, nil, nil, ModeEmbed)

	_, err := svc.GetLatest()
	assert.ErrorIs(t, err, ErrConfig)
	_, err = svc.GetRange(time.Time{}, time.Now())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestFetchResultsUsesFreshBatchFetcher(t *testing.T) {
	f := &scopedFetcher{}
	svc := NewService(f, nil, nil, []string{"A", "B"}, ModeEmbed)

	svc.FetchAll(context.Background(), []string{"A", "B"})
	_, _ = svc.Run(context.Background())

	require.Len(t, f.batches, 2)
	assert.Equal(t, []string{"A", "B"}, f.batches[0].calls)
	assert.Equal(t, []string{"A", "B"}, f.batches[1].calls)
	assert.Empty(t, f.calls, "the shared fetcher is never called directly")
}
