package bootstrap

import (
	"context"
	"log"
	"time"

	"brdgenius-be/internal/config"
	"brdgenius-be/internal/controller"
	"brdgenius-be/internal/handler"
	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/internal/pkg/metrics"
	"brdgenius-be/internal/pkg/serverutils"
	"brdgenius-be/internal/repository"
	"brdgenius-be/internal/repository/contract"
	"brdgenius-be/internal/repository/implementation"
	"brdgenius-be/internal/repository/memory"
	"brdgenius-be/internal/service"
	"brdgenius-be/internal/websocket"
	"brdgenius-be/pkg/ai/brd"
	"brdgenius-be/pkg/llm/factory"
	pktNats "brdgenius-be/pkg/nats"
	"brdgenius-be/pkg/wizard"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WizardController controller.IWizardController

	// Background Services (run by main.go)
	ActivityConsumer service.IActivityConsumerService

	// WebSockets & Notices
	NoticeHandler *handler.NoticeHandler
	WebSocketHub  *websocket.Hub

	closers []func()
}

// NewContainer wires the application. db is only used by the postgres state store and may be nil otherwise.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	recorder := metrics.NewPrometheusRecorder(nil)
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour

	prompts, err := brd.LoadPrompts()
	if err != nil {
		log.Fatalf("[FATAL] Failed to load BRD prompts: %v", err)
	}
	flow := wizard.Flow{
		TemplateStep:    cfg.Wizard.TemplateStep,
		TechStackMode:   wizard.TechStackSplit,
		DefaultTemplate: prompts.DefaultTemplate(),
	}
	if cfg.Wizard.TechStackMode == string(wizard.TechStackCombined) {
		flow.TechStackMode = wizard.TechStackCombined
	}
	log.Printf("[INFO] Wizard flow: %d steps, tech stack %s", len(flow.Kinds()), flow.TechStackMode)

	// 2. Infrastructure
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. State store
	store := newSnapshotStore(cfg.Storage.Driver, rdb, db, sessionTTL)
	stateRepo := repository.NewWizardStateRepository(store, flow, cfg.Storage.KeyPrefix, sysLogger)

	// 4. AI
	llmProvider, err := factory.NewLLMProvider(ctx, factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   llmAPIKey(cfg),
		Timeout:  time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	brdClient := brd.NewClient(llmProvider, prompts)

	// 5. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	eventPublisher := service.NewEventPublisherService(service.WizardEventsTopic, pubSub)

	var forwarder service.EventForwarder
	if natsPub != nil {
		forwarder = natsPub
	}
	c.ActivityConsumer = service.NewActivityConsumerService(pubSub, service.WizardEventsTopic, forwarder, sysLogger)

	// 6. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.NoticeLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	go c.WebSocketHub.Run(ctx)

	// 7. Services
	wizardService := service.NewWizardService(
		service.WizardServiceConfig{
			Flow:         flow,
			DocumentName: cfg.Wizard.DocumentName,
			AITimeout:    time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
			SessionIdle:  sessionTTL,
		},
		stateRepo,
		brdClient,
		brdClient,
		eventPublisher,
		c.WebSocketHub,
		recorder,
		sysLogger,
	)

	// 8. Controllers & Handlers
	sessions := serverutils.NewSessionManager(cfg.Session.Secret, sessionTTL, cfg.App.IsProduction())
	c.WizardController = controller.NewWizardController(wizardService, sessions)
	c.NoticeHandler = handler.NewNoticeHandler(c.WebSocketHub, sessions, wsLogger)

	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })
	return c
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newSnapshotStore(driver string, rdb *redis.Client, db *gorm.DB, ttl time.Duration) contract.SnapshotStore {
	switch driver {
	case "redis":
		if rdb == nil {
			log.Fatal("[FATAL] STATE_STORE=redis requires REDIS_URL")
		}
		log.Println("[INFO] Using state store: REDIS")
		return implementation.NewRedisSnapshotStore(rdb, ttl)
	case "postgres":
		if db == nil {
			log.Fatal("[FATAL] STATE_STORE=postgres requires DB_CONNECTION_STRING")
		}
		log.Println("[INFO] Using state store: POSTGRES")
		return implementation.NewGormSnapshotStore(db)
	case "", "memory":
		log.Println("[INFO] Using state store: MEMORY")
		return memory.NewSnapshotStore(ttl)
	default:
		log.Fatalf("[FATAL] Unknown STATE_STORE %q (use memory, redis or postgres)", driver)
		return nil
	}
}

func llmAPIKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "gemini":
		return cfg.Keys.GoogleGemini
	case "openai":
		return cfg.Keys.OpenAI
	case "anthropic":
		return cfg.Keys.Anthropic
	case "huggingface":
		return cfg.Keys.HuggingFace
	}
	return ""
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return ""
}
