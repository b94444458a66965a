// Package input contains the pure validators applied to free-text turns of
// the search conversation.
package input

import (
	"strconv"
	"strings"

	"github.com/tooeasytravel/hotel-bot/internal/domain"
)

// Answer is the outcome of a yes/no question.
type Answer int

const (
	AnswerInvalid Answer = iota
	AnswerYes
	AnswerNo
)

// ParseDate extracts the digits from text and interprets them positionally as
// DDMMYYYY. It fails unless exactly 8 digits are present. Day and month range
// are not checked here; callers reject impossible dates via Date.Valid, which
// fails structurally instead of wrapping.
func ParseDate(text string) (domain.Date, bool) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if len(s) != 8 {
		return domain.Date{}, false
	}

	day, _ := strconv.Atoi(s[0:2])
	month, _ := strconv.Atoi(s[2:4])
	year, _ := strconv.Atoi(s[4:8])

	return domain.Date{Day: day, Month: month, Year: year}, true
}

// ParseBoundedInt accepts strings composed entirely of digits whose value
// lies in [1, max].
func ParseBoundedInt(text string, max int) (int, bool) {
	n, ok := parseDigits(text)
	if !ok || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

// ParseDistance accepts a non-negative whole number of distance units.
func ParseDistance(text string) (int, bool) {
	return parseDigits(text)
}

// ParseYesNo matches text case-insensitively against the two localized
// answer tokens.
func ParseYesNo(text, yes, no string) Answer {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(yes):
		return AnswerYes
	case strings.ToLower(no):
		return AnswerNo
	default:
		return AnswerInvalid
	}
}

func parseDigits(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}

	return n, true
}
