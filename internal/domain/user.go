package domain

import "time"

// User represents an application user stored in the database.
// A row exists for every Telegram account that has ever talked to the bot.
type User struct {
	ID           int64
	TelegramID   int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
	CreatedAt    time.Time
	LastActiveAt time.Time
}
