package control

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/statusrelay/internal/api"
	"github.com/vietddude/statusrelay/internal/api/auth"
	"github.com/vietddude/statusrelay/internal/core/config"
	"github.com/vietddude/statusrelay/internal/inbound"
	redisclient "github.com/vietddude/statusrelay/internal/infra/redis"
	"github.com/vietddude/statusrelay/internal/infra/storage"
	"github.com/vietddude/statusrelay/internal/infra/storage/memory"
	"github.com/vietddude/statusrelay/internal/infra/storage/postgres"
	"github.com/vietddude/statusrelay/internal/messages"
	"github.com/vietddude/statusrelay/internal/monitor"
	"github.com/vietddude/statusrelay/internal/notify"
	"github.com/vietddude/statusrelay/internal/statuspage"
)

// App owns every long-lived component of the relay service.
type App struct {
	cfg         *config.AppConfig
	store       *messages.Store
	blocks      storage.BlockHistoryRepository
	relay       *notify.Relay
	statusPage  *statuspage.Client
	monitor     *monitor.Service
	scheduler   *monitor.Scheduler
	limiter     *auth.LoginLimiter
	server      *api.Server
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// backend is the storage selected at startup.
type backend struct {
	messages storage.MessageRepository
	blocks   storage.BlockHistoryRepository
	ping     api.Pinger
	db       *postgres.DB
	redis    *redisclient.Client
}

// NewApp creates the application with all dependencies initialized.
func NewApp(cfg *config.AppConfig) (*App, error) {
	log := slog.Default().With("component", "app")

	// 1. Initialize Storage
	be, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	// 2. Initialize Relay
	loc := notify.LoadLocation(cfg.Webhooks.Timezone)
	var notifiers []notify.Notifier
	if cfg.Webhooks.DiscordURL != "" {
		d, err := notify.NewDiscordNotifier(cfg.Webhooks.DiscordURL, cfg.Webhooks.Timeout, loc)
		if err != nil {
			be.close()
			return nil, err
		}
		notifiers = append(notifiers, d)
	}
	if cfg.Webhooks.SlackURL != "" {
		s, err := notify.NewSlackNotifier(cfg.Webhooks.SlackURL, cfg.Webhooks.Timeout, loc)
		if err != nil {
			be.close()
			return nil, err
		}
		notifiers = append(notifiers, s)
	}
	relay := notify.NewRelay(notifiers...)
	if len(relay.Configured()) == 0 {
		log.Warn("No webhook configured, alerts will not be relayed")
	}

	// 3. Initialize Domain Services
	store := messages.NewStore(be.messages)
	statusPage := statuspage.NewClient(cfg.StatusPage.BaseURL, cfg.StatusPage.BlockURL, cfg.StatusPage.Timeout)
	checker := monitor.NewChecker(statusPage, be.blocks, cfg.Monitor.Network, cfg.Monitor.ExplorerURL)
	monitorSvc := monitor.NewService(checker, relay, store)
	processor := inbound.NewProcessor(relay, store, cfg.StatusPage.PageURL, loc)

	// 4. Initialize Auth
	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			be.close()
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		log.Warn("auth.jwt_secret not set, tokens will not survive a restart")
	}
	credentials := auth.NewCredentials(cfg.Auth.Username, cfg.Auth.PasswordHash)
	if !credentials.Configured() {
		log.Warn("Operator account not configured, login is disabled")
	}
	limiter := auth.NewLoginLimiter(cfg.Auth.LoginPerMin)

	// 5. Initialize HTTP Server
	router := api.NewRouter(api.Deps{
		Processor:   processor,
		Relay:       relay,
		Store:       store,
		StatusPage:  statusPage,
		Monitor:     monitorSvc,
		JWT:         auth.NewJWTService(secret, cfg.Auth.TokenTTL),
		Credentials: credentials,
		Limiter:     limiter,
		CronSecret:  cfg.Monitor.CronSecret,
		Network:     cfg.Monitor.Network,
		Ping:        be.ping,
	})

	return &App{
		cfg:         cfg,
		store:       store,
		blocks:      be.blocks,
		relay:       relay,
		statusPage:  statusPage,
		monitor:     monitorSvc,
		scheduler:   monitor.NewScheduler(monitorSvc, cfg.Monitor.Interval),
		limiter:     limiter,
		server:      api.NewServer(router, cfg.Server.Port),
		db:          be.db,
		redisClient: be.redis,
		log:         log,
	}, nil
}

func openBackend(cfg *config.AppConfig) (*backend, error) {
	ctx := context.Background()

	switch {
	case cfg.Redis.URL != "":
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		slog.Info("Using Redis storage", "prefix", cfg.Redis.Prefix)
		return &backend{
			messages: redisclient.NewMessageRepo(client),
			blocks:   redisclient.NewBlockHistoryRepo(client, cfg.Monitor.Network),
			ping:     client.Ping,
			redis:    client,
		}, nil

	case cfg.Database.URL != "":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("Using PostgreSQL storage")
		return &backend{
			messages: postgres.NewMessageRepo(db),
			blocks:   postgres.NewBlockHistoryRepo(db, cfg.Monitor.Network),
			ping:     db.Health,
			db:       db,
		}, nil

	default:
		store := memory.NewMemoryStorage()
		slog.Info("Using Memory storage")
		return &backend{
			messages: memory.NewMessageRepo(store),
			blocks:   memory.NewBlockHistoryRepo(store),
		}, nil
	}
}

func (b *backend) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

// Store returns the message history.
func (a *App) Store() *messages.Store { return a.store }

// BlockHistory returns the recorded block heights.
func (a *App) BlockHistory() storage.BlockHistoryRepository { return a.blocks }

// StatusPage returns the upstream status page client.
func (a *App) StatusPage() *statuspage.Client { return a.statusPage }

// Monitor returns the block monitoring service.
func (a *App) Monitor() *monitor.Service { return a.monitor }

// Relay returns the webhook relay.
func (a *App) Relay() *notify.Relay { return a.relay }

// Start starts the HTTP server and background workers.
func (a *App) Start(ctx context.Context) error {
	// Start HTTP Server
	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()
	a.log.Info("HTTP server listening", "addr", a.server.Addr())

	// Start DB Metrics Collector
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	// Start Block Monitor
	if a.cfg.Monitor.Interval > 0 {
		a.log.Info("Starting block monitor", "network", a.cfg.Monitor.Network, "interval", a.cfg.Monitor.Interval)
		go a.scheduler.Start(ctx)
	}

	go a.runLimiterCleanup(ctx)

	return nil
}

// Stop stops the app.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping statusrelay...")

	err := a.server.Stop(ctx)
	a.Close()
	return err
}

// Close releases storage connections without touching the HTTP server.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}

func (a *App) runLimiterCleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.limiter.Cleanup(30 * time.Minute)
		}
	}
}
