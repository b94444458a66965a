package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
)

// CallbackLanguage identifies language choice buttons.
const CallbackLanguage = "lang"

// NewLanguageHandler offers one button per loaded locale.
func NewLanguageHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		t := d.Translator(c)

		kb := keyboard.NewInlineKeyboard()
		for _, lang := range d.I18n.Languages() {
			kb.AddRow(keyboard.InlineButton{
				Text:   strings.ToUpper(lang),
				Unique: CallbackLanguage,
				Data:   lang,
			})
		}
		markup, err := kb.Build()
		if err != nil {
			return err
		}

		return c.Send(t.T("prompt.language"), markup)
	}
}

// LanguageChosen stores the picked reply language for the user.
func LanguageChosen(d *Deps) CallbackHandler {
	return func(c telebot.Context) error {
		userID, _, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		cb := c.Callback()
		if cb == nil {
			return nil
		}

		_, lang, err := keyboard.DecodeCallback(cb.Data)
		if err != nil || lang == "" {
			return c.Respond()
		}

		ctx := context.Background()
		if d.Users != nil {
			if err := d.Users.SetLanguage(ctx, userID, lang); err != nil {
				d.Log.ErrorContext(ctx, "failed to set language", slog.Int64("user_id", userID), slog.Any("error", err))
				return c.Respond()
			}
		}

		if err := c.Respond(); err != nil {
			d.Log.Warn("failed to ack language callback", slog.Any("error", err))
		}

		t := d.I18n.Translator(lang)
		return c.Send(t.T("language.changed"))
	}
}
