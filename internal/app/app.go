package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/bridge"
	"github.com/Carveion/JUNKFU-V2/internal/config"
	"github.com/Carveion/JUNKFU-V2/internal/httpapi"
	"github.com/Carveion/JUNKFU-V2/internal/scheduler"
	"github.com/Carveion/JUNKFU-V2/internal/service"
	"github.com/Carveion/JUNKFU-V2/internal/telegram"
)

const foregroundBuffer = 16

// App is the long-running daemon: reminders, the click bridge, the
// Telegram surface and the status API.
type App struct {
	cfg   config.Config
	log   *zap.Logger
	clock clockwork.Clock
	bot   *tgbotapi.BotAPI
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, clock: clockwork.NewRealClock()}
	if cfg.BotToken == "" {
		log.Warn("BOT_TOKEN not set, reminders stay idle")
		return a, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	a.bot = bot
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting junkfu",
		zap.String("db", a.cfg.DBPath),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Bool("telegram", a.bot != nil),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := OpenCore(ctx, a.cfg, a.log, a.clock)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	defer func() { _ = core.Close() }()
	a.log.Info("sqlite ready")

	// The router lists the scheduler's slots, and the scheduler notifies
	// through the router.
	var (
		sched    *scheduler.Scheduler
		router   *telegram.Router
		notifier scheduler.Notifier
		prompter service.CustomEntryPrompter
	)
	if a.bot != nil {
		router = telegram.NewRouter(a.bot, a.log.Named("telegram"), core.Repo, core.Logbook,
			telegram.PendingFunc(func() map[string]time.Time { return sched.Pending() }), a.cfg.ChatID)
		notifier = router
		prompter = router
	}
	sched = scheduler.New(a.clock, notifier, a.log.Named("scheduler"))

	if scheduler.RequestPermission(ctx, notifier) {
		a.log.Info("notifications granted")
	} else {
		a.log.Warn("notifications not available, send /start to the bot to enable them")
	}

	var wg sync.WaitGroup
	handler := &service.ForegroundHandler{Logbook: core.Logbook, Prompter: prompter, Log: a.log}
	startForeground := func(id string) *bridge.Foreground {
		fg := bridge.NewForeground(id, foregroundBuffer, a.log.Named("foreground"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			fg.Run(ctx, handler)
		}()
		return fg
	}
	hub := bridge.NewHub(func(context.Context) (bridge.Client, error) {
		return startForeground("foreground-" + a.clock.Now().Format("150405.000")), nil
	})
	hub.Add(startForeground("main"))
	br := bridge.New(hub, core.Catalog,
		bridge.WithClock(a.clock),
		bridge.WithGrace(a.cfg.BridgeGrace),
		bridge.WithLogger(a.log.Named("bridge")),
	)
	if router != nil {
		router.SetDispatcher(br)
	}

	watcher := scheduler.NewProfileWatcher(core.Repo, sched, a.cfg.ProfilePoll, a.log.Named("watcher"))
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	if a.cfg.HTTPAddr != "" {
		api := httpapi.NewHandler(core.Logbook, sched, a.log.Named("http"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpapi.Serve(ctx, a.cfg.HTTPAddr, api.Router(), a.log); err != nil {
				a.log.Error("http server error", zap.Error(err))
			}
		}()
	}

	var updCh tgbotapi.UpdatesChannel
	if a.bot != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updCh = a.bot.GetUpdatesChan(u)
	}

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			if a.bot != nil {
				a.bot.StopReceivingUpdates()
			}
			wg.Wait()
			return nil

		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}
