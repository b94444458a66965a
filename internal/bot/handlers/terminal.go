package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/history"
	"github.com/tooeasytravel/hotel-bot/internal/state"
)

// RunSearch executes the accumulated query, reports the results and closes
// the conversation. The history record is written for every finished search,
// including ones that found nothing; only the reply can fail.
func RunSearch(ctx context.Context, c telebot.Context, d *Deps, us *state.UserState) error {
	t := d.Translator(c)

	if err := c.Send(t.T("search.in_progress"), d.Keyboard.Remove()); err != nil {
		return err
	}

	results, err := d.Search.Run(ctx, us.Query)
	if err != nil {
		d.Log.ErrorContext(ctx, "search failed",
			slog.Int64("user_id", us.UserID),
			slog.String("command", us.Query.Command),
			slog.Any("error", err),
		)
		if clearErr := d.FSM.ClearState(ctx, us.UserID, us.ChatID); clearErr != nil {
			d.Log.ErrorContext(ctx, "failed to clear state after search failure", slog.Any("error", clearErr))
		}
		return c.Send(t.T("search.failed"))
	}

	d.History.Record(ctx, us.UserID, us.Query.Command, results)

	if err := d.FSM.ClearState(ctx, us.UserID, us.ChatID); err != nil {
		d.Log.ErrorContext(ctx, "failed to clear state after search", slog.Any("error", err))
	}

	if len(results) == 0 {
		return c.Send(t.T("search.nothing_found"))
	}

	for _, r := range results {
		card := history.FormatHotel(r)

		if len(r.Images) == 0 {
			if err := c.Send(card); err != nil {
				return err
			}
			continue
		}

		// the hotel card rides as the caption of the first photo
		album := make(telebot.Album, 0, len(r.Images))
		for i, url := range r.Images {
			photo := &telebot.Photo{File: telebot.FromURL(url)}
			if i == 0 {
				photo.Caption = card
			}
			album = append(album, photo)
		}
		if err := c.SendAlbum(album); err != nil {
			// a broken image URL should not sink the whole reply
			d.Log.WarnContext(ctx, "failed to send photo album",
				slog.Int64("user_id", us.UserID),
				slog.Any("error", err),
			)
			if err := c.Send(card); err != nil {
				return err
			}
		}
	}

	return c.Send(t.T("cmd.help"))
}
