package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/maccam912/vikunja-ai/internal/assistant"
	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
	identitySettings "github.com/maccam912/vikunja-ai/internal/identity/application/settings"
	identityDomain "github.com/maccam912/vikunja-ai/internal/identity/domain"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/services"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
	"github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/cache"
	"github.com/maccam912/vikunja-ai/internal/productivity/infrastructure/vikunja"
	sharedApplication "github.com/maccam912/vikunja-ai/internal/shared/application"
	"github.com/maccam912/vikunja-ai/internal/shared/domain"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database"
	_ "github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database/postgres"
	_ "github.com/maccam912/vikunja-ai/internal/shared/infrastructure/database/sqlite"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/eventbus"
	"github.com/maccam912/vikunja-ai/internal/shared/infrastructure/migrations"
	"github.com/maccam912/vikunja-ai/pkg/config"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// ProjectLister lists the projects visible to the assistant.
type ProjectLister interface {
	Projects(ctx context.Context) ([]vikunja.Project, error)
}

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	UserID  uuid.UUID

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Remote tasks
	VikunjaClient *vikunja.Client
	Projects      ProjectLister

	// Repositories
	TaskRepo     task.Repository
	ScoreRepo    task.PriorityScoreRepository
	SettingsRepo identityDomain.SettingsRepository

	// Events
	Publisher      eventbus.Publisher
	EventBus       *eventbus.InProcessBus
	EventEmitter   *commands.EventEmitter
	UnitOfWork     sharedApplication.UnitOfWork
	PriorityEngine *services.PriorityEngine

	// Task Command Handlers
	CreateTaskHandler            *commands.CreateTaskHandler
	UpdateTaskHandler            *commands.UpdateTaskHandler
	CompleteTaskHandler          *commands.CompleteTaskHandler
	DeleteTaskHandler            *commands.DeleteTaskHandler
	RelateTasksHandler           *commands.RelateTasksHandler
	RecalculatePrioritiesHandler *commands.RecalculatePrioritiesHandler

	// Task Query Handlers
	ListRankedTasksHandler *queries.ListRankedTasksHandler
	GetTopPriorityHandler  *queries.GetTopPriorityHandler
	ExplainTaskHandler     *queries.ExplainTaskHandler

	// Settings
	SettingsService *identitySettings.Service

	// Assistant. Agent is nil when no LLM is configured.
	LLMProvider  llm.Provider
	ToolExecutor *assistant.ToolExecutor
	Agent        *assistant.Agent

	Health *observability.HealthRegistry
}

// Option customizes a container before it wires itself.
type Option func(*options)

type options struct {
	taskRepo task.Repository
	projects ProjectLister
	provider llm.Provider
	metrics  observability.Metrics
}

// WithTaskRepository replaces the Vikunja-backed repository.
func WithTaskRepository(repo task.Repository) Option {
	return func(o *options) { o.taskRepo = repo }
}

// WithProjects replaces the Vikunja project lister.
func WithProjects(projects ProjectLister) Option {
	return func(o *options) { o.projects = projects }
}

// WithLLMProvider replaces the configured OpenAI-compatible provider.
func WithLLMProvider(provider llm.Provider) Option {
	return func(o *options) { o.provider = provider }
}

// WithMetrics sets the metrics sink. The default is an in-memory collector.
func WithMetrics(metrics observability.Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// NewContainer creates a new application container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = observability.NewInMemoryMetrics()
	}

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid USER_ID: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: o.metrics,
		UserID:  userID,
		Health:  observability.NewHealthRegistry(),
	}

	engineCfg := services.DefaultPriorityEngineConfig()
	if err := config.LoadYAMLOverrides(cfg.ScoringConfigPath, &engineCfg); err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	if err := engineCfg.Validate(); err != nil {
		return nil, err
	}
	c.PriorityEngine = services.NewPriorityEngine(engineCfg)

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initTaskSource(o); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	c.wireHandlers()

	if err := c.initAssistant(o.provider); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("container initialized",
		"database", c.DBDriver,
		"cache", c.RedisClient != nil,
		"assistant", c.Agent != nil,
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	conn, err := database.NewConnection(ctx, database.Config{
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Logger.Info("connected to database", "driver", c.DBDriver)

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		c.Logger.Info("migrations applied", "versions", applied)
	}

	factory := NewRepositoryFactory(conn)
	if c.ScoreRepo, err = factory.PriorityScoreRepository(); err != nil {
		_ = conn.Close()
		return err
	}
	if c.SettingsRepo, err = factory.SettingsRepository(); err != nil {
		_ = conn.Close()
		return err
	}
	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))
	return nil
}

// initRedis connects the optional cache. Outside development an unreachable
// Redis is fatal; in development the cache is skipped.
func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, task cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, task cache disabled", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initTaskSource(o options) error {
	repo := o.taskRepo
	c.Projects = o.projects
	if repo == nil {
		if err := c.Config.Validate(); err != nil {
			return err
		}
		client, err := vikunja.NewClient(vikunja.Config{
			BaseURL: c.Config.VikunjaURL,
			Token:   c.Config.VikunjaToken,
			Timeout: c.Config.VikunjaTimeout,
		}, c.Logger)
		if err != nil {
			return err
		}
		vikunjaRepo := vikunja.NewRepository(client, 0)
		c.VikunjaClient = client
		if c.Projects == nil {
			c.Projects = vikunjaRepo
		}
		c.Health.Register("vikunja", observability.PingChecker("vikunja", observability.HealthStatusUnhealthy, client.Ping))
		repo = vikunjaRepo
	}

	if c.RedisClient != nil {
		repo = cache.NewCachedRepository(repo, c.RedisClient, c.Config.CacheTTL, c.Metrics, c.Logger)
	}
	c.TaskRepo = repo
	return nil
}

// initEvents publishes to RabbitMQ when configured; otherwise events go to
// an in-process bus that logs them. An unreachable broker is only tolerated
// in development.
func (c *Container) initEvents() error {
	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Config.EventExchange, c.Logger)
		switch {
		case err == nil:
			c.Publisher = publisher
		case c.Config.IsDevelopment():
			c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			c.Publisher = eventbus.NewNoopPublisher(c.Logger)
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	} else {
		bus := eventbus.NewInProcessBus(c.Logger)
		bus.Subscribe("#", func(ctx context.Context, envelope domain.Envelope) error {
			c.Logger.DebugContext(ctx, "domain event",
				"routing_key", envelope.RoutingKey,
				"aggregate_id", envelope.AggregateID,
			)
			return nil
		})
		c.EventBus = bus
		c.Publisher = bus
	}

	publisher := eventbus.NewEventPublisher(c.Publisher, c.Metrics, c.Logger)
	c.EventEmitter = commands.NewEventEmitter(publisher, c.UserID, c.Logger)
	return nil
}

func (c *Container) wireHandlers() {
	repo, engine, events, logger := c.TaskRepo, c.PriorityEngine, c.EventEmitter, c.Logger

	c.SettingsService = identitySettings.NewService(c.SettingsRepo, identitySettings.Defaults{
		DefaultProjectID: c.Config.DefaultProjectID,
		Model:            c.Config.LLMModel,
	}, logger)

	c.CreateTaskHandler = commands.NewCreateTaskHandler(repo, events, c.Config.DefaultProjectID, c.Metrics, logger)
	c.CreateTaskHandler.SetDefaultProjectSource(func(ctx context.Context) (int64, error) {
		settings, err := c.SettingsService.Get(ctx, c.UserID)
		if err != nil {
			return 0, err
		}
		return settings.DefaultProjectID, nil
	})
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(repo, events, logger)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(repo, events, c.Metrics, logger)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(repo, events, logger)
	c.RelateTasksHandler = commands.NewRelateTasksHandler(repo, events, logger)
	c.RecalculatePrioritiesHandler = commands.NewRecalculatePrioritiesHandler(
		repo, c.ScoreRepo, engine, c.UnitOfWork, events, c.Metrics, logger,
	)

	c.ListRankedTasksHandler = queries.NewListRankedTasksHandler(repo, engine, logger)
	c.GetTopPriorityHandler = queries.NewGetTopPriorityHandler(repo, engine)
	c.ExplainTaskHandler = queries.NewExplainTaskHandler(repo, engine)

	c.ToolExecutor = assistant.NewToolExecutor(assistant.Handlers{
		ListRanked:  c.ListRankedTasksHandler,
		TopPriority: c.GetTopPriorityHandler,
		Explain:     c.ExplainTaskHandler,
		Create:      c.CreateTaskHandler,
		Update:      c.UpdateTaskHandler,
		Complete:    c.CompleteTaskHandler,
		Delete:      c.DeleteTaskHandler,
		Relate:      c.RelateTasksHandler,
	}, logger)
}

func (c *Container) initAssistant(provider llm.Provider) error {
	if provider == nil && c.Config.LLMEnabled() {
		openai, err := llm.NewOpenAIProvider(llm.OpenAIConfig{
			BaseURL: c.Config.LLMBaseURL,
			APIKey:  c.Config.LLMAPIKey,
			Model:   c.Config.LLMModel,
			Timeout: c.Config.LLMTimeout,
		}, c.Logger)
		if err != nil {
			return err
		}
		provider = openai
	}
	if provider == nil {
		c.Logger.Info("no LLM configured, assistant disabled")
		return nil
	}

	agent, err := assistant.NewAgent(assistant.AgentConfig{
		Provider:          provider,
		Tools:             c.ToolExecutor,
		Ranked:            c.ListRankedTasksHandler,
		Settings:          c.SettingsService,
		UserID:            c.UserID,
		MaxToolIterations: c.Config.LLMMaxToolIterations,
		Metrics:           c.Metrics,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.LLMProvider = provider
	c.Agent = agent
	return nil
}

// Close releases resources.
func (c *Container) Close() {
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
