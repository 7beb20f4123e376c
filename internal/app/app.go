package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/common"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/handlers"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/providers/dolby"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/providers/elevenlabs"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/providers/twelvelabs"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/providers/youtube"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/queue"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/events"
	jobsvc "github.com/jaiswar203/CreatorEvolve-Server/internal/services/jobs"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/mailer"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/media"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/reports"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/scheduler"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/services/summary"
	storagebadger "github.com/jaiswar203/CreatorEvolve-Server/internal/storage/badger"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/storage/objects"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	Objects        interfaces.ObjectStorage
	Notifier       *events.Notifier

	// Job execution
	Queue      *queue.Manager
	WorkerPool *queue.WorkerPool
	JobService *jobsvc.Service

	// Provider clients
	ElevenLabs *elevenlabs.Client
	Dolby      *dolby.Client
	TwelveLabs *twelvelabs.Client
	YouTube    *youtube.Client

	// Domain services
	MediaService     *media.Service
	SummaryService   *summary.ClaudeService
	ReportsService   *reports.Service
	MailerService    *mailer.Service
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	MediaHandler   *handlers.MediaHandler
	VoiceHandler   *handlers.VoiceHandler
	JobsHandler    *handlers.JobsHandler
	EventsHandler  *handlers.EventsHandler
	FilesHandler   *handlers.FilesHandler
	WebhookHandler *handlers.WebhookHandler
	WSHandler      *handlers.WebSocketHandler
	LogWriter      *handlers.WebSocketWriter

	storage *storagebadger.Manager
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// Start workers after handlers exist so job events have somewhere to go
	if err := app.WorkerPool.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	app.Logger.Debug().Int("concurrency", cfg.Queue.Concurrency).Msg("Worker pool started")

	app.SchedulerService.Start()

	// Point the Dolby callback at our public webhook endpoint. Registration
	// is an overwrite on the provider side, so a failed attempt here is
	// retried by the scheduler.
	if cfg.Server.PublicBaseURL != "" && cfg.Providers.Dolby.AppKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Dolby.RegisterWebhook(ctx, app.dolbyWebhookURL()); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to register Dolby webhook, scheduler will retry")
		}
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the document store and the object store
func (a *App) initStorage() error {
	storageManager, err := storagebadger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.storage = storageManager
	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	objectStore, err := objects.NewLocalStore(a.Logger, &a.Config.Storage.Objects)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}
	a.Objects = objectStore
	a.Logger.Debug().
		Str("dir", a.Config.Storage.Objects.Dir).
		Msg("Object store initialized")

	return nil
}

// initServices initializes business services in dependency order
func (a *App) initServices() error {
	cfg := a.Config

	a.Notifier = events.NewNotifier(a.Logger)

	// Provider clients. API keys may be absent in development; the clients
	// return upstream errors on use rather than failing startup.
	a.ElevenLabs = elevenlabs.NewClient(
		cfg.Providers.ElevenLabs.APIKey,
		elevenlabs.WithBaseURL(cfg.Providers.ElevenLabs.BaseURL),
		elevenlabs.WithRateLimit(parseDuration(cfg.Providers.ElevenLabs.RateLimit, 500*time.Millisecond)),
		elevenlabs.WithLogger(a.Logger),
	)
	a.Dolby = dolby.NewClient(
		cfg.Providers.Dolby.AppKey,
		cfg.Providers.Dolby.AppSecret,
		dolby.WithBaseURL(cfg.Providers.Dolby.BaseURL),
		dolby.WithRateLimit(parseDuration(cfg.Providers.Dolby.RateLimit, 500*time.Millisecond)),
		dolby.WithLogger(a.Logger),
	)
	a.TwelveLabs = twelvelabs.NewClient(
		cfg.Providers.TwelveLabs.APIKey,
		cfg.Providers.TwelveLabs.IndexID,
		twelvelabs.WithBaseURL(cfg.Providers.TwelveLabs.BaseURL),
		twelvelabs.WithRateLimit(parseDuration(cfg.Providers.TwelveLabs.RateLimit, time.Second)),
		twelvelabs.WithLogger(a.Logger),
	)
	if cfg.Providers.YouTube.ClientID != "" {
		a.YouTube = youtube.NewClient(
			cfg.Providers.YouTube.ClientID,
			cfg.Providers.YouTube.ClientSecret,
			cfg.Providers.YouTube.RedirectURL,
			a.Logger,
		)
	} else {
		a.Logger.Debug().Msg("YouTube OAuth not configured, import endpoints disabled")
	}

	// Queue manager shares the Badger instance with the document store
	queueMgr, err := queue.NewManager(
		a.storage.Badger(),
		cfg.Queue.QueueName,
		cfg.Queue.VisibilityTimeoutDuration(),
		cfg.Queue.MaxReceive,
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize queue manager: %w", err)
	}
	a.Queue = queueMgr
	a.Logger.Debug().Str("queue_name", cfg.Queue.QueueName).Msg("Queue manager initialized")

	a.JobService = jobsvc.NewService(
		a.StorageManager,
		queueMgr,
		a.Objects,
		a.Notifier,
		a.ElevenLabs,
		a.Dolby,
		cfg.Queue,
		a.Logger,
	)
	queueMgr.OnDeadLetter(a.JobService.HandleDeadLetter)

	a.WorkerPool = queue.NewWorkerPool(queueMgr, cfg.Queue.Concurrency, cfg.Queue.PollIntervalDuration(), a.Logger)
	a.JobService.RegisterHandlers(a.WorkerPool)
	a.Logger.Debug().Msg("Job service initialized")

	a.MailerService = mailer.NewService(cfg.SMTP, a.Logger)
	var mail interfaces.Mailer
	if a.MailerService.IsConfigured() {
		mail = a.MailerService
	} else {
		a.Logger.Debug().Msg("SMTP not configured, inquiry notifications disabled")
	}

	a.MediaService = media.NewService(
		a.StorageManager,
		a.Objects,
		a.ElevenLabs,
		a.TwelveLabs,
		a.YouTube,
		mail,
		cfg.SMTP.To,
		a.Logger,
	)
	a.Logger.Debug().Msg("Media service initialized")

	// Summary service is optional: reports fall back to score tables only
	summarySvc, err := summary.NewClaudeService(&cfg.Providers.Anthropic, a.Logger)
	var summaryClient interfaces.SummaryClient
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Summary service unavailable, reports will omit narrative summaries")
	} else {
		a.SummaryService = summarySvc
		summaryClient = summarySvc
	}

	a.ReportsService = reports.NewService(a.Objects, a.StorageManager.DiagnoseStorage(), summaryClient, a.Logger)
	a.Logger.Debug().Msg("Reports service initialized")

	a.SchedulerService = scheduler.NewService(
		cfg.Scheduler,
		a.Dolby,
		a.JobService,
		a.dolbyWebhookURL(),
		a.Logger,
	)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.MediaHandler = handlers.NewMediaHandler(a.MediaService, a.Logger)
	a.VoiceHandler = handlers.NewVoiceHandler(a.MediaService, a.Logger)
	a.JobsHandler = handlers.NewJobsHandler(a.JobService, a.StorageManager, a.ReportsService, a.Logger)
	a.EventsHandler = handlers.NewEventsHandler(a.Notifier, a.Logger)
	a.FilesHandler = handlers.NewFilesHandler(a.Objects, a.Logger)
	a.WebhookHandler = handlers.NewWebhookHandler(a.JobService, a.MediaService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.Logger)

	// Mirror job notifications onto the websocket hub
	a.Notifier.SetBroadcast(a.WSHandler.BroadcastJobEvent)

	// Filtered log stream for the dashboard
	logWriter, err := handlers.NewWebSocketWriter(a.WSHandler, arbormodels.WriterConfiguration{
		TimeFormat: "15:04:05",
	}, &a.Config.WebSocket)
	if err != nil {
		return fmt.Errorf("failed to create websocket log writer: %w", err)
	}
	a.LogWriter = logWriter

	return nil
}

// dolbyWebhookURL is the externally reachable Dolby callback endpoint.
func (a *App) dolbyWebhookURL() string {
	if a.Config.Server.PublicBaseURL == "" {
		return ""
	}
	return a.Config.Server.PublicBaseURL + "/v1/public/dolby-job-status"
}

// Close closes all application resources
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.WorkerPool != nil {
		if err := a.WorkerPool.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop worker pool")
		} else {
			a.Logger.Info().Msg("Worker pool stopped")
		}
	}

	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close queue manager")
		}
	}

	if a.Notifier != nil {
		if err := a.Notifier.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close notifier")
		}
	}

	if a.LogWriter != nil {
		if err := a.LogWriter.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close websocket log writer")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
