package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
	"github.com/tooeasytravel/hotel-bot/pkg/metrics"
)

// Orchestrator turns a completed query into presentable hotel results. It
// fetches one raw result window, applies the per-command post-processing and
// resolves address plus photos for the hotels that survive it.
type Orchestrator struct {
	api hotels.API
	log *slog.Logger
}

func NewOrchestrator(api hotels.API, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		api: api,
		log: log.With("component", "search"),
	}
}

// Run executes the search described by q. The returned slice may be empty;
// that is a successful search with no matching hotels, not an error.
func (o *Orchestrator) Run(ctx context.Context, q *domain.SearchQuery) ([]domain.HotelResult, error) {
	if err := q.Complete(); err != nil {
		return nil, err
	}

	results, err := o.run(ctx, q)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordSearch(string(q.Type), status, len(results))
	return results, err
}

func (o *Orchestrator) run(ctx context.Context, q *domain.SearchQuery) ([]domain.HotelResult, error) {
	props, err := o.api.SearchProperties(ctx, hotels.PropertiesRequest{
		RegionID:          q.RegionID,
		CheckIn:           q.CheckIn,
		CheckOut:          q.CheckOut,
		SortCheapestFirst: q.Type == domain.SearchCheapestFirst,
	})
	if err != nil {
		return nil, err
	}

	props = postProcess(q, props)
	if len(props) > q.HotelCount {
		props = props[:q.HotelCount]
	}

	out := make([]domain.HotelResult, 0, len(props))
	for _, p := range props {
		result := domain.HotelResult{
			Name:          p.Name,
			DistanceValue: p.DistanceValue,
			DistanceUnit:  p.DistanceUnit,
			Price:         p.Price,
			CurrencyCode:  p.CurrencyCode,
		}

		detail, err := o.api.PropertyDetail(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		result.Address = detail.AddressLine
		if q.WantPhotos && q.PhotoCount > 0 {
			urls := detail.ImageURLs
			if len(urls) > q.PhotoCount {
				urls = urls[:q.PhotoCount]
			}
			result.Images = urls
		}

		out = append(out, result)
	}
	return out, nil
}

// postProcess applies the command-specific ordering and filtering to the raw
// window before it is truncated to the requested hotel count.
func postProcess(q *domain.SearchQuery, props []hotels.Property) []hotels.Property {
	switch q.Type {
	case domain.SearchCheapestFirst:
		// already sorted by the API
		return props

	case domain.SearchPriciestFirst:
		sorted := make([]hotels.Property, len(props))
		copy(sorted, props)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
		return sorted

	case domain.SearchBestDeal:
		filtered := make([]hotels.Property, 0, len(props))
		for _, p := range props {
			d := p.DistanceValue
			if d > float64(q.DistanceMin) && d < float64(q.DistanceMax) {
				filtered = append(filtered, p)
			}
		}
		return filtered
	}
	return props
}
