package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

func TestFormatResults_Empty(t *testing.T) {
	assert.Equal(t, "", FormatResults(nil))
	assert.Equal(t, "", FormatResults([]domain.HotelResult{}))
}

func TestFormatResults_NumbersBlocks(t *testing.T) {
	got := FormatResults([]domain.HotelResult{
		{Name: "Plaza", Address: "1 Main St", DistanceValue: 0.7, DistanceUnit: "MILE", Price: 120.5, CurrencyCode: "USD"},
		{Name: "Grand", Address: "2 High St", DistanceValue: 1.25, DistanceUnit: "MILE", Price: 99, CurrencyCode: "USD"},
	})

	want := "#1\n" +
		"Название: Plaza\n" +
		"Адрес: 1 Main St\n" +
		"До центра: 0.7 MILE\n" +
		"Цена: 120.50 USD" +
		"\n\n" +
		"#2\n" +
		"Название: Grand\n" +
		"Адрес: 2 High St\n" +
		"До центра: 1.2 MILE\n" +
		"Цена: 99.00 USD"
	assert.Equal(t, want, got)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0.7 MILE", FormatDistance(0.7, "MILE"))
	assert.Equal(t, "2.0", FormatDistance(2, ""))
}
