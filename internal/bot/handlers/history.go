package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/domain"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
)

// CallbackHistoryPage identifies history pagination buttons.
const CallbackHistoryPage = "history"

const historyPageSize = 5

// NewHistoryHandler shows the user's past searches, oldest first, paginated
// once they no longer fit one message comfortably.
func NewHistoryHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		userID, _, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		ctx := context.Background()
		t := d.Translator(c)

		records, err := d.History.List(ctx, userID)
		if err != nil {
			d.Log.ErrorContext(ctx, "failed to load history", slog.Int64("user_id", userID), slog.Any("error", err))
			return c.Send(t.T("history.load_failed"))
		}
		if len(records) == 0 {
			return c.Send(t.T("history.empty"))
		}

		text, markup := renderHistoryPage(t, records, 1)
		if markup == nil {
			return c.Send(text)
		}
		return c.Send(text, markup)
	}
}

// HistoryPageChanged re-renders the history message for the requested page.
func HistoryPageChanged(d *Deps) CallbackHandler {
	return func(c telebot.Context) error {
		userID, _, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		cb := c.Callback()
		if cb == nil {
			return nil
		}

		_, data, err := keyboard.DecodeCallback(cb.Data)
		if err != nil {
			return c.Respond()
		}
		page, err := strconv.Atoi(data)
		if err != nil || page < 1 {
			return c.Respond()
		}

		ctx := context.Background()
		t := d.Translator(c)

		records, listErr := d.History.List(ctx, userID)
		if listErr != nil {
			d.Log.ErrorContext(ctx, "failed to load history page", slog.Int64("user_id", userID), slog.Any("error", listErr))
			return c.Respond()
		}
		if len(records) == 0 {
			if err := c.Respond(); err != nil {
				return err
			}
			return c.Edit(t.T("history.empty"))
		}

		text, markup := renderHistoryPage(t, records, page)
		if err := c.Respond(); err != nil {
			d.Log.Warn("failed to ack history callback", slog.Any("error", err))
		}
		if markup == nil {
			return c.Edit(text)
		}
		return c.Edit(text, markup)
	}
}

// NewDeleteHandler wipes the user's search history. An already empty history
// deletes successfully.
func NewDeleteHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		userID, _, ok := conversationIDs(c)
		if !ok {
			return nil
		}

		ctx := context.Background()
		t := d.Translator(c)

		if _, err := d.History.Clear(ctx, userID); err != nil {
			d.Log.ErrorContext(ctx, "failed to clear history", slog.Int64("user_id", userID), slog.Any("error", err))
			return c.Send(t.T("history.clear_failed"))
		}
		return c.Send(t.T("history.cleared"))
	}
}

func renderHistoryPage(t i18n.Translator, records []domain.HistoryRecord, page int) (string, *telebot.ReplyMarkup) {
	totalPages := (len(records) + historyPageSize - 1) / historyPageSize
	if page > totalPages {
		page = totalPages
	}

	from := (page - 1) * historyPageSize
	to := from + historyPageSize
	if to > len(records) {
		to = len(records)
	}

	blocks := make([]string, 0, to-from)
	for _, rec := range records[from:to] {
		var b strings.Builder
		b.WriteString(t.Tf("history.entry_header", rec.Command, rec.CreatedAt.Format("02.01.2006 15:04")))
		b.WriteString("\n")
		if rec.Value == "" {
			b.WriteString(t.T("history.entry_empty"))
		} else {
			b.WriteString(rec.Value)
		}
		blocks = append(blocks, b.String())
	}
	text := strings.Join(blocks, "\n\n")

	if totalPages <= 1 {
		return text, nil
	}

	kb := keyboard.NewInlineKeyboard()
	kb.AddRow(keyboard.PaginationButtons(t, CallbackHistoryPage, page, totalPages)...)
	markup, err := kb.Build()
	if err != nil {
		return text, nil
	}
	return text, markup
}
