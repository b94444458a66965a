package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/hotels"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
)

// CallbackCity identifies city choice buttons. Callback data carries the
// region identifier, the label carries the display name.
const CallbackCity = "city"

// maxCityButtons caps the city disambiguation keyboard.
const maxCityButtons = 8

// Builder creates the conversation keyboards.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// CityChoice builds one button per candidate region, one row each, preserving
// the candidate order. Candidates past the button cap are dropped.
func (b *Builder) CityChoice(candidates []hotels.CityCandidate) (*telebot.ReplyMarkup, error) {
	kb := NewInlineKeyboard()
	for i, c := range candidates {
		if i == maxCityButtons {
			if b.log != nil {
				b.log.Debug("truncating city choice keyboard", slog.Int("candidates", len(candidates)))
			}
			break
		}
		kb.AddRow(InlineButton{
			Text:   c.Name,
			Unique: CallbackCity,
			Data:   c.RegionID,
		})
	}
	return kb.Build()
}

// YesNo builds a localized one-time reply keyboard with yes and no buttons.
func (b *Builder) YesNo(t i18n.Translator) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	yes := markup.Text(translated(t, "answer.yes", "да"))
	no := markup.Text(translated(t, "answer.no", "нет"))
	markup.Reply(markup.Row(yes, no))

	return markup
}

// Remove clears any reply keyboard left on the user's screen.
func (b *Builder) Remove() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}
