package domain

// HotelResult is a fully resolved, display-ready search hit. Built once by
// the search orchestrator and never mutated afterwards.
type HotelResult struct {
	Name          string
	Address       string
	DistanceValue float64
	DistanceUnit  string
	Price         float64
	CurrencyCode  string
	Images        []string
}
