package domain

import (
	"fmt"
	"time"
)

// SearchType discriminates the three supported search commands.
type SearchType string

const (
	// SearchCheapestFirst asks the API for results pre-sorted by ascending price.
	SearchCheapestFirst SearchType = "lowprice"
	// SearchPriciestFirst sorts the result window by descending price locally.
	SearchPriciestFirst SearchType = "highprice"
	// SearchBestDeal filters the result window by distance from the city center.
	SearchBestDeal SearchType = "bestdeal"
)

// Date is a calendar date collected from user input, kept field-wise because
// the hotel API payload wants day/month/year as separate values.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Valid reports whether the fields denote an existing calendar date.
// time.Date normalizes out-of-range values (month 13 becomes January), so a
// round-trip comparison is used to reject them instead of silently wrapping.
func (d Date) Valid() bool {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && t.Month() == time.Month(d.Month) && t.Day() == d.Day
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, d.Month, d.Year)
}

// IsZero reports whether the date has not been set yet.
func (d Date) IsZero() bool {
	return d == Date{}
}

// SearchQuery is the conversation state accumulated across turns of one
// search flow. Fields are written in strict step order; DistanceMin and
// DistanceMax are meaningful only for SearchBestDeal, PhotoCount only when
// WantPhotos is true.
type SearchQuery struct {
	Command     string     `json:"command"`
	Type        SearchType `json:"type"`
	City        string     `json:"city,omitempty"`
	RegionID    string     `json:"region_id,omitempty"`
	CheckIn     Date       `json:"check_in,omitempty"`
	CheckOut    Date       `json:"check_out,omitempty"`
	HotelCount  int        `json:"hotel_count,omitempty"`
	WantPhotos  bool       `json:"want_photos,omitempty"`
	PhotoCount  int        `json:"photo_count,omitempty"`
	DistanceMin int        `json:"distance_min,omitempty"`
	DistanceMax int        `json:"distance_max,omitempty"`
}

// Complete reports whether every field required to run the search has been
// collected. It is checked once before the terminal step dispatches the
// search, guarding against a handler advancing out of order.
func (q *SearchQuery) Complete() error {
	if q == nil {
		return fmt.Errorf("query is nil")
	}

	switch q.Type {
	case SearchCheapestFirst, SearchPriciestFirst:
	case SearchBestDeal:
		if q.DistanceMin >= q.DistanceMax {
			return fmt.Errorf("distance bounds not collected: min=%d max=%d", q.DistanceMin, q.DistanceMax)
		}
	default:
		return fmt.Errorf("unknown search type %q", q.Type)
	}

	if q.RegionID == "" {
		return fmt.Errorf("destination not chosen")
	}
	if q.CheckIn.IsZero() || q.CheckOut.IsZero() {
		return fmt.Errorf("dates not collected")
	}
	if !q.CheckIn.Time().Before(q.CheckOut.Time()) {
		return fmt.Errorf("check-in %s is not before check-out %s", q.CheckIn, q.CheckOut)
	}
	if q.HotelCount < 1 || q.HotelCount > MaxHotelCount {
		return fmt.Errorf("hotel count %d out of range", q.HotelCount)
	}
	if q.WantPhotos && (q.PhotoCount < 1 || q.PhotoCount > MaxPhotoCount) {
		return fmt.Errorf("photo count %d out of range", q.PhotoCount)
	}

	return nil
}

// Bounds on the per-search quantities a user may request.
const (
	MaxHotelCount = 5
	MaxPhotoCount = 5
)
