package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
)

type mockTranslator struct {
	translations map[string]string
	lang         string
}

func (m *mockTranslator) T(key string) string {
	if val, ok := m.translations[key]; ok {
		return val
	}
	return key
}

func (m *mockTranslator) Tf(key string, args ...any) string {
	return m.T(key)
}

func (m *mockTranslator) Lang() string {
	if m.lang == "" {
		return "ru"
	}
	return m.lang
}

func TestCityChoice_OneRowPerCandidate(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	markup, err := b.CityChoice([]hotels.CityCandidate{
		{Name: "London, England", RegionID: "2114"},
		{Name: "London, Ontario", RegionID: "8891"},
	})
	require.NoError(t, err)

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "London, England", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "city:2114", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "city:8891", markup.InlineKeyboard[1][0].Data)
}

func TestCityChoice_TruncatesLongLists(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	candidates := make([]hotels.CityCandidate, 20)
	for i := range candidates {
		candidates[i] = hotels.CityCandidate{Name: "City", RegionID: strings.Repeat("1", i+1)}
	}

	markup, err := b.CityChoice(candidates)
	require.NoError(t, err)
	assert.Len(t, markup.InlineKeyboard, 8)
}

func TestYesNo_LocalizedButtons(t *testing.T) {
	b := keyboard.NewBuilder(nil)
	translator := &mockTranslator{translations: map[string]string{
		"answer.yes": "да",
		"answer.no":  "нет",
	}}

	markup := b.YesNo(translator)

	assert.True(t, markup.ResizeKeyboard)
	assert.True(t, markup.OneTimeKeyboard)
	require.Len(t, markup.ReplyKeyboard, 1)
	require.Len(t, markup.ReplyKeyboard[0], 2)
	assert.Equal(t, "да", markup.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "нет", markup.ReplyKeyboard[0][1].Text)
}

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		builder := keyboard.NewInlineKeyboard()
		builder.AddRow(
			keyboard.InlineButton{Text: "Prev", Unique: "nav", Data: "1"},
			keyboard.InlineButton{Text: "Next", Unique: "nav", Data: "2"},
		).AddRow(
			keyboard.InlineButton{Text: "Pick", Unique: "city", Data: "2114"},
		)

		markup, err := builder.Build()
		require.NoError(t, err)

		require.Len(t, markup.InlineKeyboard, 2)
		assert.Len(t, markup.InlineKeyboard[0], 2)
		assert.Equal(t, "nav:2", markup.InlineKeyboard[0][1].Data)
		assert.Equal(t, "city:2114", markup.InlineKeyboard[1][0].Data)
	})

	t.Run("callback data overflow", func(t *testing.T) {
		builder := keyboard.NewInlineKeyboard()
		builder.AddRow(keyboard.InlineButton{
			Text:   "Too big",
			Unique: "overflow",
			Data:   strings.Repeat("x", keyboard.CallbackDataLimitBytes),
		})

		_, err := builder.Build()
		require.Error(t, err)
	})
}

func TestPaginationButtons(t *testing.T) {
	translator := &mockTranslator{translations: map[string]string{
		"pagination.prev": "◀️",
		"pagination.next": "▶️",
		"pagination.page": "%d/%d",
	}}

	testCases := []struct {
		name      string
		page      int
		total     int
		wantTexts []string
		wantData  []string
	}{
		{
			name:      "first page",
			page:      1,
			total:     5,
			wantTexts: []string{"1/5", "▶️"},
			wantData:  []string{"1", "2"},
		},
		{
			name:      "middle page",
			page:      3,
			total:     5,
			wantTexts: []string{"◀️", "3/5", "▶️"},
			wantData:  []string{"2", "3", "4"},
		},
		{
			name:      "last page",
			page:      5,
			total:     5,
			wantTexts: []string{"◀️", "5/5"},
			wantData:  []string{"4", "5"},
		},
		{
			name:      "single page",
			page:      1,
			total:     1,
			wantTexts: []string{"1/1"},
			wantData:  []string{"1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buttons := keyboard.PaginationButtons(translator, "history", tc.page, tc.total)
			require.Len(t, buttons, len(tc.wantTexts))

			for i := range tc.wantTexts {
				assert.Equal(t, tc.wantTexts[i], buttons[i].Text)
				assert.Equal(t, "history", buttons[i].Unique)
				assert.Equal(t, tc.wantData[i], buttons[i].Data)
			}
		})
	}
}
