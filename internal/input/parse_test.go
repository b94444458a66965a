package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected domain.Date
		ok       bool
	}{
		{
			name:     "dotted format",
			text:     "01.01.2099",
			expected: domain.Date{Day: 1, Month: 1, Year: 2099},
			ok:       true,
		},
		{
			name:     "separators are ignored",
			text:     "05/01-2099",
			expected: domain.Date{Day: 5, Month: 1, Year: 2099},
			ok:       true,
		},
		{
			name:     "bare digits",
			text:     "31122030",
			expected: domain.Date{Day: 31, Month: 12, Year: 2030},
			ok:       true,
		},
		{
			name: "too few digits",
			text: "1.1.2099",
			ok:   false,
		},
		{
			name: "too many digits",
			text: "01.01.20991",
			ok:   false,
		},
		{
			name: "no digits",
			text: "tomorrow",
			ok:   false,
		},
		{
			name:     "month 13 passes the format stage",
			text:     "13.13.2025",
			expected: domain.Date{Day: 13, Month: 13, Year: 2025},
			ok:       true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			date, ok := ParseDate(tc.text)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, date)
			}
		})
	}
}

func TestDateValid_RejectsImpossibleDates(t *testing.T) {
	// Range validity is deferred to calendar construction: month 13 parses
	// but must fail here rather than wrap into January.
	date, ok := ParseDate("13.13.2025")
	assert.True(t, ok)
	assert.False(t, date.Valid())

	date, ok = ParseDate("99.01.2025")
	assert.True(t, ok)
	assert.False(t, date.Valid())

	date, ok = ParseDate("29.02.2024")
	assert.True(t, ok)
	assert.True(t, date.Valid())

	date, ok = ParseDate("29.02.2025")
	assert.True(t, ok)
	assert.False(t, date.Valid())
}

func TestParseBoundedInt(t *testing.T) {
	testCases := []struct {
		text     string
		max      int
		expected int
		ok       bool
	}{
		{text: "1", max: 5, expected: 1, ok: true},
		{text: "5", max: 5, expected: 5, ok: true},
		{text: " 3 ", max: 5, expected: 3, ok: true},
		{text: "0", max: 5, ok: false},
		{text: "6", max: 5, ok: false},
		{text: "-1", max: 5, ok: false},
		{text: "2.5", max: 5, ok: false},
		{text: "five", max: 5, ok: false},
		{text: "", max: 5, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			n, ok := ParseBoundedInt(tc.text, tc.max)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, n)
		})
	}
}

func TestParseDistance(t *testing.T) {
	n, ok := ParseDistance("0")
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = ParseDistance("12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = ParseDistance("-3")
	assert.False(t, ok)

	_, ok = ParseDistance("1km")
	assert.False(t, ok)
}

func TestParseYesNo(t *testing.T) {
	assert.Equal(t, AnswerYes, ParseYesNo("да", "да", "нет"))
	assert.Equal(t, AnswerYes, ParseYesNo("ДА", "да", "нет"))
	assert.Equal(t, AnswerNo, ParseYesNo("нет", "да", "нет"))
	assert.Equal(t, AnswerNo, ParseYesNo(" Нет ", "да", "нет"))
	assert.Equal(t, AnswerInvalid, ParseYesNo("maybe", "да", "нет"))
	assert.Equal(t, AnswerInvalid, ParseYesNo("", "да", "нет"))
	assert.Equal(t, AnswerYes, ParseYesNo("Yes", "yes", "no"))
}
