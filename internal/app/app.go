package app

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/sanad-aid/sanadbot/core/bootstrap"
	"github.com/sanad-aid/sanadbot/core/buildinfo"
	coretelegram "github.com/sanad-aid/sanadbot/core/telegram"
	"github.com/sanad-aid/sanadbot/core/telegram/callbacks"
	"github.com/sanad-aid/sanadbot/core/telegram/commands"
	tghelpers "github.com/sanad-aid/sanadbot/core/telegram/helpers"
	"github.com/sanad-aid/sanadbot/core/telegram/keyboard"
	"github.com/sanad-aid/sanadbot/core/telegram/middleware"
	"github.com/sanad-aid/sanadbot/core/telegram/router"
	"github.com/sanad-aid/sanadbot/core/telegram/sender"
	"github.com/sanad-aid/sanadbot/core/telegram/state"
	"github.com/sanad-aid/sanadbot/internal/catalog"
	"github.com/sanad-aid/sanadbot/internal/dataset"
	"github.com/sanad-aid/sanadbot/internal/dialog"
	"github.com/sanad-aid/sanadbot/internal/history"
	"github.com/sanad-aid/sanadbot/internal/match"
)

// App is the composed bot: dialogue flow, dataset source, and transport wiring.
type App struct {
	cfg      *Config
	sessions state.Manager
	flow     *dialog.Flow
	source   dataset.Source
	db       *sqlx.DB

	dispatcher *sender.Dispatcher
	startedAt  time.Time
}

// Bootstrap initializes infrastructure and builds the application graph.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	opts := bootstrap.Options{Config: cfg.CoreConfig()}
	if cfg.History.Enabled {
		database := cfg.History.Database
		opts.Database = &database
	}
	res, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	src, err := dataset.NewSheetSource(dataset.SheetOptions{
		URL:          cfg.Dataset.CSVURL,
		Columns:      cfg.Dataset.Columns,
		FetchTimeout: cfg.FetchTimeout(),
	})
	if err != nil {
		return nil, err
	}
	source := dataset.WithCache(src, cfg.CacheTTL())

	var recorder history.Recorder
	if res.DB != nil {
		recorder = history.NewStore(res.DB)
	}

	sessions := state.NewMemoryManager()
	flow, err := dialog.New(dialog.Options{
		Sessions: sessions,
		Catalog:  catalog.New(cfg.Catalog.Services, cfg.Catalog.Governorates),
		Source:   source,
		Matcher:  match.Matcher{CountryCode: cfg.Match.CountryCode},
		History:  recorder,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		sessions:  sessions,
		flow:      flow,
		source:    source,
		db:        res.DB,
		startedAt: time.Now(),
	}, nil
}

// TelegramRunOptions wires commands, callbacks, and routes for RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.dispatcher = sender.NewDispatcher(sender.Options{})

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "بدء البحث عن الخدمات",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "طريقة الاستخدام",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Runtime statistics",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(dialog.MenuService, a.selectHandler(dialog.MenuService)); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(dialog.MenuGovernorate, a.selectHandler(dialog.MenuGovernorate)); err != nil {
		return coretelegram.RunOptions{}, err
	}

	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, dialog.MsgUnknownText)
	})

	state.RegisterHandler(dialog.StageAwaitingName,
		middleware.State(a.sessions, dialog.StageAwaitingName)(a.handleNameText))

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(a.sessions, reg, router.TextOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Dispatcher:  a.dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
	}, nil
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.render(c, a.flow.HandleStart(ctx, c.Sender().ID))
}

func (a *App) handleNameText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.render(c, a.flow.HandleText(ctx, c.Sender().ID, c.Text()))
}

func (a *App) selectHandler(menu string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		value := callbacks.CallbackPayload(c)
		return a.render(c, a.flow.HandleSelect(ctx, c.Sender().ID, menu, value))
	}
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, dialog.MsgHelp)
}

func (a *App) handleStats(c tele.Context) error {
	text := fmt.Sprintf(
		"version: %s\nuptime: %s\nactive sessions: %d\nsend errors: %d",
		buildinfo.Version,
		time.Since(a.startedAt).Round(time.Second),
		a.flow.ActiveSessions(),
		a.senderErrors(),
	)
	if info, ok := a.source.(dataset.InfoProvider); ok {
		s := info.Info()
		if s.Cached {
			text += fmt.Sprintf("\nsnapshot cache: %d rows, age %s", s.Rows, s.Age.Round(time.Second))
		} else {
			text += "\nsnapshot cache: empty"
		}
	}
	if a.db != nil {
		text += "\nhistory: enabled"
	}
	return tghelpers.SendText(c, text)
}

func (a *App) senderErrors() uint64 {
	if a.dispatcher == nil {
		return 0
	}
	return a.dispatcher.ErrorCount()
}

// render turns a dialogue action into outbound Telegram messages.
func (a *App) render(c tele.Context, act dialog.Action) error {
	switch v := act.(type) {
	case dialog.Prompt:
		return tghelpers.SendText(c, v.Text)

	case dialog.MenuPrompt:
		btns := make([]keyboard.InlineBtn, len(v.Options))
		for i, o := range v.Options {
			btns[i] = keyboard.InlineBtn{Text: o.Label, Unique: v.Menu, Data: o.Value}
		}
		markup := keyboard.InlineButtons(btns)
		if c.Callback() != nil {
			return tghelpers.EditOrSendMenu(c, v.Text, markup)
		}
		return tghelpers.SendMenu(c, v.Text, markup)

	case dialog.Notice:
		if c.Callback() != nil {
			return tghelpers.EditOrSendMenu(c, v.Text, nil)
		}
		return tghelpers.SendText(c, v.Text)

	case dialog.Results:
		var firstErr error
		for _, r := range v.Matches {
			text := dialog.RenderResult(v.Name, v.Governorate, v.Service, r)
			var markup *tele.ReplyMarkup
			if r.ContactLink != "" {
				markup = keyboard.LinkMarkup(dialog.MsgWhatsAppButton, r.ContactLink)
			}
			if err := tghelpers.SendMD(c, text, markup); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return nil
}
