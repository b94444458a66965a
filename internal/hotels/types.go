package hotels

import (
	"context"
	"errors"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

// API is the hotel-search collaborator surface the conversation needs.
type API interface {
	// SearchCities resolves a free-text city name into candidate regions.
	// Returns ErrNoCitiesFound when the API answers but knows no such city.
	SearchCities(ctx context.Context, name string) ([]CityCandidate, error)
	// SearchProperties returns the raw result window for a completed query.
	SearchProperties(ctx context.Context, req PropertiesRequest) ([]Property, error)
	// PropertyDetail fetches the address and gallery for one property.
	PropertyDetail(ctx context.Context, id string) (*PropertyDetail, error)
}

// ErrNoCitiesFound indicates the city search succeeded but matched nothing.
var ErrNoCitiesFound = errors.New("hotels: no matching cities")

// CityCandidate is one region a city name may refer to. Order follows the
// API response so selection keyboards are deterministic.
type CityCandidate struct {
	Name     string
	RegionID string
}

// PropertiesRequest describes one search window request.
type PropertiesRequest struct {
	RegionID          string
	CheckIn           domain.Date
	CheckOut          domain.Date
	SortCheapestFirst bool
}

// Property is one raw search hit before detail resolution.
type Property struct {
	ID            string
	Name          string
	DistanceValue float64
	DistanceUnit  string
	Price         float64
	CurrencyCode  string
}

// PropertyDetail carries the per-property fields only the detail endpoint has.
type PropertyDetail struct {
	AddressLine string
	ImageURLs   []string
}
