package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/tooeasytravel/hotel-bot/internal/bot/handlers"
	"github.com/tooeasytravel/hotel-bot/internal/bot/keyboard"
	"github.com/tooeasytravel/hotel-bot/internal/domain"
	errors "github.com/tooeasytravel/hotel-bot/internal/errors"
	"github.com/tooeasytravel/hotel-bot/internal/history"
	"github.com/tooeasytravel/hotel-bot/internal/hotels"
	"github.com/tooeasytravel/hotel-bot/internal/i18n"
	"github.com/tooeasytravel/hotel-bot/internal/idempotency"
	"github.com/tooeasytravel/hotel-bot/internal/middleware"
	"github.com/tooeasytravel/hotel-bot/internal/search"
	"github.com/tooeasytravel/hotel-bot/internal/state"
	"github.com/tooeasytravel/hotel-bot/internal/user"
	"github.com/tooeasytravel/hotel-bot/pkg/config"
)

// Options carries the collaborators the bot needs beyond configuration.
type Options struct {
	FSM                state.Machine
	Hotels             hotels.API
	Search             *search.Orchestrator
	History            *history.Service
	Users              *user.Service
	I18n               *i18n.Manager
	IdempotencyManager idempotency.Manager
	RateLimitMw        *middleware.RateLimitMiddleware
}

// Bot wraps telebot.Bot with the application dependencies required for
// handling updates.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        config.Config
	deps       *handlers.Deps
	router     *Router
	dispatcher *Dispatcher
	errHandler *errors.Handler
	opts       Options
}

// New builds a telegram bot instance configured according to the application
// settings.
func New(cfg config.Config, log *slog.Logger, opts Options) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	deps := &handlers.Deps{
		FSM:      opts.FSM,
		Hotels:   opts.Hotels,
		Search:   opts.Search,
		History:  opts.History,
		Users:    opts.Users,
		Keyboard: keyboard.NewBuilder(log),
		I18n:     opts.I18n,
		Log:      log,
	}

	dispatcher := NewDispatcher(deps, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		deps:       deps,
		router:     router,
		dispatcher: dispatcher,
		errHandler: errHandler,
		opts:       opts,
	}

	b.setupRouter()

	if opts.RateLimitMw != nil {
		b.telebot.Use(opts.RateLimitMw.Handle)
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such
// as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	internalMsg := func(c telebot.Context) string {
		return b.deps.Translator(c).T("error.internal")
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler, internalMsg))
	b.router.Use(middleware.Idempotency(b.opts.IdempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler, internalMsg))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(b.opts.Users, b.log))
	b.router.Use(LastActiveMiddleware(b.opts.Users))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.deps))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler(b.deps))
	b.router.RegisterCommand(CommandLowPrice, handlers.NewSearchCommand(b.deps, domain.SearchCheapestFirst))
	b.router.RegisterCommand(CommandHighPrice, handlers.NewSearchCommand(b.deps, domain.SearchPriciestFirst))
	b.router.RegisterCommand(CommandBestDeal, handlers.NewSearchCommand(b.deps, domain.SearchBestDeal))
	b.router.RegisterCommand(CommandHistory, handlers.NewHistoryHandler(b.deps))
	b.router.RegisterCommand(CommandDelete, handlers.NewDeleteHandler(b.deps))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.deps))
	b.router.RegisterCommand(CommandLanguage, handlers.NewLanguageHandler(b.deps))

	b.router.RegisterCallback(keyboard.CallbackCity+keyboard.CallbackDataSeparator, handlers.CityChosen(b.deps))
	b.router.RegisterCallback(handlers.CallbackHistoryPage+keyboard.CallbackDataSeparator, handlers.HistoryPageChanged(b.deps))
	b.router.RegisterCallback(handlers.CallbackLanguage+keyboard.CallbackDataSeparator, handlers.LanguageChosen(b.deps))

	b.router.SetDefault(func(c telebot.Context) error {
		return c.Send(b.deps.Translator(c).T("error.no_active_search"))
	})

	b.registerStateSteps()
}

func (b *Bot) registerStateSteps() {
	for s, step := range handlers.NewSteps(b.deps) {
		b.dispatcher.RegisterStep(s, step)
	}
}
