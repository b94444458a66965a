package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

const (
	msgDateFormat     = "Не удалось распознать дату. Введите дату в формате ДД.ММ.ГГГГ."
	msgDateInvalid    = "Такой даты не существует. Попробуйте ещё раз."
	msgCheckInPast    = "Дата заезда не может быть в прошлом. Введите дату ещё раз."
	msgCheckOutOrder  = "Дата выезда должна быть позже даты заезда. Введите дату ещё раз."
	msgCountRange     = "Введите число от 1 до %d."
	msgDistanceFormat = "Нужно целое неотрицательное число. Попробуйте ещё раз."
	msgDistanceOrder  = "Максимальное расстояние должно быть больше минимального (%d). Введите его ещё раз."
	msgYesNo          = "Ответьте, пожалуйста, «да» или «нет»."
	msgCityChoice     = "Уточните, пожалуйста, какой именно город:"
)

func stepCatalog() string {
	return fmt.Sprintf(`ru:
  answer:
    yes: "да"
    no: "нет"
  error:
    date_format: %q
    date_invalid: %q
    checkin_past: %q
    checkout_before: %q
    count_range: %q
    distance_format: %q
    distance_order: %q
    yes_no: %q
  prompt:
    city_choice: %q
`,
		msgDateFormat, msgDateInvalid, msgCheckInPast, msgCheckOutOrder,
		msgCountRange, msgDistanceFormat, msgDistanceOrder,
		msgYesNo, msgCityChoice)
}

type stubContext struct {
	telebot.Context

	text string
	sent []string
}

func (s *stubContext) Text() string          { return s.text }
func (s *stubContext) Sender() *telebot.User { return &telebot.User{ID: 7, LanguageCode: "ru"} }
func (s *stubContext) Chat() *telebot.Chat   { return &telebot.Chat{ID: 7} }

func (s *stubContext) Send(what interface{}, _ ...interface{}) error {
	if msg, ok := what.(string); ok {
		s.sent = append(s.sent, msg)
	}
	return nil
}

func newStepDeps(t *testing.T) *Deps {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ru.yaml"), []byte(stepCatalog()), 0o644))
	m, err := i18n.LoadFromDir(dir, "ru")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Deps{
		I18n:     m,
		Keyboard: keyboard.NewBuilder(log),
		Log:      log,
	}
}

func runStep(t *testing.T, step Step, text string, us *state.UserState) (*StepResult, *stubContext) {
	t.Helper()

	c := &stubContext{text: text}
	res, err := step(context.Background(), c, us)
	require.NoError(t, err)
	return res, c
}

// assertRejected checks that the step stayed put and replied with the message
// matching the failure category.
func assertRejected(t *testing.T, res *StepResult, c *stubContext, want string) {
	t.Helper()

	assert.Nil(t, res)
	require.Len(t, c.sent, 1)
	assert.Equal(t, want, c.sent[0])
}

func TestStepCheckIn(t *testing.T) {
	step := stepCheckIn(newStepDeps(t))
	now := time.Now().UTC()

	tests := []struct {
		name   string
		text   string
		reject string
		next   state.State
	}{
		{name: "not a date", text: "скоро", reject: msgDateFormat},
		{name: "impossible date", text: "31.02.2030", reject: msgDateInvalid},
		{name: "past date", text: "01.01.2020", reject: msgCheckInPast},
		{name: "today is already too late", text: now.Format("02.01.2006"), reject: msgCheckInPast},
		{name: "tomorrow", text: now.AddDate(0, 0, 1).Format("02.01.2006"), next: state.StateAwaitingCheckOut},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := &state.UserState{Query: &domain.SearchQuery{}}
			res, c := runStep(t, step, tc.text, us)
			if tc.reject != "" {
				assertRejected(t, res, c, tc.reject)
				assert.True(t, us.Query.CheckIn.IsZero())
				return
			}
			require.NotNil(t, res)
			assert.Equal(t, tc.next, res.Next)
			assert.False(t, us.Query.CheckIn.IsZero())
		})
	}
}

func TestStepCheckOut(t *testing.T) {
	step := stepCheckOut(newStepDeps(t))
	checkIn := domain.Date{Day: 10, Month: 10, Year: 2030}

	tests := []struct {
		name   string
		text   string
		reject string
		next   state.State
	}{
		{name: "not a date", text: "позже", reject: msgDateFormat},
		{name: "impossible date", text: "00.13.2030", reject: msgDateInvalid},
		{name: "same day as check-in", text: "10.10.2030", reject: msgCheckOutOrder},
		{name: "before check-in", text: "09.10.2030", reject: msgCheckOutOrder},
		{name: "day after check-in", text: "11.10.2030", next: state.StateAwaitingHotelCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := &state.UserState{Query: &domain.SearchQuery{CheckIn: checkIn}}
			res, c := runStep(t, step, tc.text, us)
			if tc.reject != "" {
				assertRejected(t, res, c, tc.reject)
				assert.True(t, us.Query.CheckOut.IsZero())
				return
			}
			require.NotNil(t, res)
			assert.Equal(t, tc.next, res.Next)
		})
	}
}

func TestStepDistanceMin(t *testing.T) {
	step := stepDistanceMin(newStepDeps(t))

	us := &state.UserState{Query: &domain.SearchQuery{}}
	res, c := runStep(t, step, "близко", us)
	assertRejected(t, res, c, msgDistanceFormat)

	res, _ = runStep(t, step, "0", us)
	require.NotNil(t, res)
	assert.Equal(t, state.StateAwaitingDistanceMax, res.Next)
	assert.Equal(t, 0, us.Query.DistanceMin)
}

func TestStepDistanceMax(t *testing.T) {
	step := stepDistanceMax(newStepDeps(t))

	tests := []struct {
		name   string
		text   string
		reject string
		next   state.State
	}{
		{name: "not a number", text: "-3", reject: msgDistanceFormat},
		{name: "below minimum", text: "1", reject: fmt.Sprintf(msgDistanceOrder, 2)},
		{name: "equal to minimum", text: "2", reject: fmt.Sprintf(msgDistanceOrder, 2)},
		{name: "above minimum", text: "5", next: state.StateAwaitingCity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := &state.UserState{Query: &domain.SearchQuery{DistanceMin: 2}}
			res, c := runStep(t, step, tc.text, us)
			if tc.reject != "" {
				assertRejected(t, res, c, tc.reject)
				return
			}
			require.NotNil(t, res)
			assert.Equal(t, tc.next, res.Next)
			assert.Equal(t, 5, us.Query.DistanceMax)
		})
	}
}

func TestStepHotelCount(t *testing.T) {
	step := stepHotelCount(newStepDeps(t))
	rangeMsg := fmt.Sprintf(msgCountRange, domain.MaxHotelCount)

	tests := []struct {
		name   string
		text   string
		reject string
	}{
		{name: "zero", text: "0", reject: rangeMsg},
		{name: "above limit", text: fmt.Sprint(domain.MaxHotelCount + 1), reject: rangeMsg},
		{name: "not a number", text: "все", reject: rangeMsg},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			us := &state.UserState{Query: &domain.SearchQuery{}}
			res, c := runStep(t, step, tc.text, us)
			assertRejected(t, res, c, tc.reject)
			assert.Zero(t, us.Query.HotelCount)
		})
	}

	us := &state.UserState{Query: &domain.SearchQuery{}}
	res, _ := runStep(t, step, "3", us)
	require.NotNil(t, res)
	assert.Equal(t, state.StateAwaitingPhotoChoice, res.Next)
	assert.Equal(t, 3, us.Query.HotelCount)
}

func TestStepPhotoChoice(t *testing.T) {
	step := stepPhotoChoice(newStepDeps(t))

	t.Run("yes asks for a photo count", func(t *testing.T) {
		us := &state.UserState{Query: &domain.SearchQuery{}}
		res, _ := runStep(t, step, "Да", us)
		require.NotNil(t, res)
		assert.Equal(t, state.StateAwaitingPhotoCount, res.Next)
		assert.False(t, res.Terminal)
		assert.True(t, us.Query.WantPhotos)
	})

	t.Run("no finishes the flow without photos", func(t *testing.T) {
		us := &state.UserState{Query: &domain.SearchQuery{}}
		res, _ := runStep(t, step, "НЕТ", us)
		require.NotNil(t, res)
		assert.True(t, res.Terminal)
		assert.Empty(t, res.Next)
		assert.False(t, us.Query.WantPhotos)
		assert.Zero(t, us.Query.PhotoCount)
	})

	t.Run("anything else re-prompts", func(t *testing.T) {
		us := &state.UserState{Query: &domain.SearchQuery{}}
		res, c := runStep(t, step, "возможно", us)
		assertRejected(t, res, c, msgYesNo)
	})
}

func TestStepPhotoCount(t *testing.T) {
	step := stepPhotoCount(newStepDeps(t))

	us := &state.UserState{Query: &domain.SearchQuery{WantPhotos: true}}
	res, c := runStep(t, step, "0", us)
	assertRejected(t, res, c, fmt.Sprintf(msgCountRange, domain.MaxPhotoCount))

	res, _ = runStep(t, step, "4", us)
	require.NotNil(t, res)
	assert.True(t, res.Terminal)
	assert.Equal(t, 4, us.Query.PhotoCount)
}

func TestStepCityChoiceRepromptsOnPlainText(t *testing.T) {
	step := stepCityChoice(newStepDeps(t))

	us := &state.UserState{Query: &domain.SearchQuery{City: "Лондон"}}
	res, c := runStep(t, step, "первый", us)
	assertRejected(t, res, c, msgCityChoice)
	assert.Equal(t, "Лондон", us.Query.City)
}
