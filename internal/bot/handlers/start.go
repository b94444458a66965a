package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// NewStartHandler greets the user and lists the available commands.
func NewStartHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}
		t := d.Translator(c)
		return c.Send(t.Tf("cmd.start", c.Sender().FirstName))
	}
}

// NewHelpHandler lists the available commands.
func NewHelpHandler(d *Deps) Handler {
	return func(c telebot.Context) error {
		t := d.Translator(c)
		return c.Send(t.T("cmd.help"))
	}
}
