package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
)

type stubAPI struct {
	properties []hotels.Property
	listErr    error
	details    map[string]*hotels.PropertyDetail
	detailErr  error

	lastRequest hotels.PropertiesRequest
	detailCalls []string
}

func (s *stubAPI) SearchCities(ctx context.Context, name string) ([]hotels.CityCandidate, error) {
	return nil, hotels.ErrNoCitiesFound
}

func (s *stubAPI) SearchProperties(ctx context.Context, req hotels.PropertiesRequest) ([]hotels.Property, error) {
	s.lastRequest = req
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.properties, nil
}

func (s *stubAPI) PropertyDetail(ctx context.Context, id string) (*hotels.PropertyDetail, error) {
	s.detailCalls = append(s.detailCalls, id)
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	if d, ok := s.details[id]; ok {
		return d, nil
	}
	return &hotels.PropertyDetail{}, nil
}

func baseQuery(t domain.SearchType) *domain.SearchQuery {
	return &domain.SearchQuery{
		Command:    "/" + string(t),
		Type:       t,
		City:       "London",
		RegionID:   "2114",
		CheckIn:    domain.Date{Day: 1, Month: 10, Year: 2026},
		CheckOut:   domain.Date{Day: 5, Month: 10, Year: 2026},
		HotelCount: 3,
	}
}

func window() []hotels.Property {
	return []hotels.Property{
		{ID: "a", Name: "Alpha", Price: 50, DistanceValue: 0.5, DistanceUnit: "MILE", CurrencyCode: "USD"},
		{ID: "b", Name: "Bravo", Price: 200, DistanceValue: 1.5, DistanceUnit: "MILE", CurrencyCode: "USD"},
		{ID: "c", Name: "Charlie", Price: 120, DistanceValue: 2.5, DistanceUnit: "MILE", CurrencyCode: "USD"},
		{ID: "d", Name: "Delta", Price: 80, DistanceValue: 3.5, DistanceUnit: "MILE", CurrencyCode: "USD"},
	}
}

func newTestOrchestrator(api hotels.API) *Orchestrator {
	return NewOrchestrator(api, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_CheapestKeepsAPIOrder(t *testing.T) {
	api := &stubAPI{properties: window()}
	q := baseQuery(domain.SearchCheapestFirst)

	results, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)

	assert.True(t, api.lastRequest.SortCheapestFirst)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names(results))
}

func TestRun_PriciestSortsDescending(t *testing.T) {
	api := &stubAPI{properties: window()}
	q := baseQuery(domain.SearchPriciestFirst)

	results, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)

	assert.False(t, api.lastRequest.SortCheapestFirst)
	assert.Equal(t, []string{"Bravo", "Charlie", "Delta"}, names(results))
}

func TestRun_BestDealFiltersStrictBounds(t *testing.T) {
	api := &stubAPI{properties: window()}
	q := baseQuery(domain.SearchBestDeal)
	q.DistanceMin = 1
	q.DistanceMax = 3

	results, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)

	// 0.5 is below the window, 3.5 above it; 1.5 and 2.5 survive in
	// their original order. Hotels exactly on a bound are excluded.
	assert.Equal(t, []string{"Bravo", "Charlie"}, names(results))
}

func TestRun_BestDealMayReturnEmpty(t *testing.T) {
	api := &stubAPI{properties: window()}
	q := baseQuery(domain.SearchBestDeal)
	q.DistanceMin = 10
	q.DistanceMax = 20

	results, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, api.detailCalls)
}

func TestRun_PhotosTruncatedToRequestedCount(t *testing.T) {
	api := &stubAPI{
		properties: window()[:1],
		details: map[string]*hotels.PropertyDetail{
			"a": {
				AddressLine: "1 Main St",
				ImageURLs:   []string{"u1", "u2", "u3", "u4"},
			},
		},
	}
	q := baseQuery(domain.SearchCheapestFirst)
	q.WantPhotos = true
	q.PhotoCount = 2

	results, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1 Main St", results[0].Address)
	assert.Equal(t, []string{"u1", "u2"}, results[0].Images)
}

func TestRun_NoPhotosWhenDeclined(t *testing.T) {
	api := &stubAPI{
		properties: window()[:1],
		details: map[string]*hotels.PropertyDetail{
			"a": {AddressLine: "1 Main St", ImageURLs: []string{"u1"}},
		},
	}
	q := baseQuery(domain.SearchCheapestFirst)

	results, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Images)
}

func TestRun_DetailOnlyForSurvivingHotels(t *testing.T) {
	api := &stubAPI{properties: window()}
	q := baseQuery(domain.SearchCheapestFirst)
	q.HotelCount = 2

	_, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, api.detailCalls)
}

func TestRun_PropagatesAPIFailures(t *testing.T) {
	wantErr := errors.New("boom")

	t.Run("list", func(t *testing.T) {
		api := &stubAPI{listErr: wantErr}
		_, err := newTestOrchestrator(api).Run(context.Background(), baseQuery(domain.SearchCheapestFirst))
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("detail", func(t *testing.T) {
		api := &stubAPI{properties: window(), detailErr: wantErr}
		_, err := newTestOrchestrator(api).Run(context.Background(), baseQuery(domain.SearchCheapestFirst))
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestRun_RejectsIncompleteQuery(t *testing.T) {
	api := &stubAPI{properties: window()}
	q := baseQuery(domain.SearchBestDeal) // bounds never collected

	_, err := newTestOrchestrator(api).Run(context.Background(), q)
	require.Error(t, err)
	assert.Empty(t, api.detailCalls)
}

func names(results []domain.HotelResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Name
	}
	return out
}
