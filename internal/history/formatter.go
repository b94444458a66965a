package history

import (
	"fmt"
	"strings"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

// FormatResults renders search results into the text block stored with a
// history record and shown back by the history command. An empty result set
// renders as an empty string.
func FormatResults(results []domain.HotelResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "#%d\n", i+1)
		b.WriteString(FormatHotel(r))
	}
	return b.String()
}

// FormatHotel renders one hotel card, the same block the bot sends per hotel
// in a search reply.
func FormatHotel(r domain.HotelResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Название: %s\n", r.Name)
	fmt.Fprintf(&b, "Адрес: %s\n", r.Address)
	fmt.Fprintf(&b, "До центра: %s\n", FormatDistance(r.DistanceValue, r.DistanceUnit))
	fmt.Fprintf(&b, "Цена: %.2f %s", r.Price, r.CurrencyCode)
	return b.String()
}

// FormatDistance renders a distance with its unit, e.g. "0.7 MILE".
func FormatDistance(value float64, unit string) string {
	s := fmt.Sprintf("%.1f", value)
	if unit == "" {
		return s
	}
	return s + " " + unit
}
