package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ragify-be/internal/config"
	"ragify-be/internal/controller"
	"ragify-be/internal/handler"
	"ragify-be/internal/pkg/logger"
	"ragify-be/internal/pkg/serverutils"
	"ragify-be/internal/repository/memory"
	"ragify-be/internal/repository/unitofwork"
	"ragify-be/internal/service"
	"ragify-be/internal/websocket"
	"ragify-be/pkg/chat"
	"ragify-be/pkg/events"
	"ragify-be/pkg/intent"
	"ragify-be/pkg/llm/factory"
	"ragify-be/pkg/notebook"

	pktNats "ragify-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ConversationController controller.IConversationController
	NotebookController     controller.INotebookController
	IntentController       controller.IIntentController

	// Background services, started by main
	ConsumerService service.IConsumerService // nil without a database
	FeedService     service.IFeedService
	NatsSubscriber  *pktNats.Subscriber // nil when NATS is unreachable

	// WebSockets
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)

	c := &Container{Logger: sysLogger}

	// 2. Event bus for the transcript archive
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
		natsPub = nil
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		c.NatsSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	var eventPublisher events.Publisher = events.NopPublisher{}
	if natsPub != nil {
		eventPublisher = events.MultiPublisher{natsPub}
	}

	// 4. Domain collaborators
	store := newNotebookStore(cfg.Router, rdb, sysLogger)

	llmProvider, err := factory.NewLLMProvider(factory.Params{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   cfg.APIKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	chatService := chat.NewService(llmProvider, sysLogger, chat.Options{ExtractNewPTKB: cfg.Ai.ExtractNewPTKB})
	classifier := intent.NewClassifier(intent.WithSelectionWeight(cfg.Router.SelectionWeight))
	resolver := intent.NewDefaultResolver()
	extractor := intent.NewExtractor()

	// 5. WebSocket feed
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	c.FeedService = service.NewFeedService(c.WebSocketHub, wsLogger)

	// 6. Services
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		c.ConsumerService = service.NewConsumerService(pubSub, service.TopicConversationTurns, uowFactory, sysLogger)
	} else {
		sysLogger.Warn("BOOTSTRAP", "No database configured, transcript archive disabled", nil)
	}

	registry := memory.NewRegistry[*service.Conversation](cfg.Router.ConversationTTL)
	registry.OnEvicted(func(id string, _ *service.Conversation) {
		sysLogger.Info("BOOTSTRAP", "Conversation released", map[string]interface{}{"conversation_id": id})
	})

	conversationService := service.NewConversationService(service.ConversationServiceParams{
		Registry:   registry,
		Store:      store,
		LLM:        llmProvider,
		Chat:       chatService,
		Classifier: classifier,
		Resolver:   resolver,
		Extractor:  extractor,
		Publisher:  service.NewPublisherService(service.TopicConversationTurns, pubSub),
		Events:     eventPublisher,
		Feed:       c.FeedService,
		UowFactory: uowFactory,
		Logger:     sysLogger,
	})
	notebookService := service.NewNotebookService(conversationService, eventPublisher, c.FeedService, sysLogger)
	intentService := service.NewIntentService(classifier, resolver, extractor)

	// 7. Controllers
	var auth fiber.Handler
	if cfg.App.JwtSecret != "" {
		auth = serverutils.JwtMiddleware(cfg.App.JwtSecret)
	}
	c.ConversationController = controller.NewConversationController(conversationService, auth)
	c.NotebookController = controller.NewNotebookController(notebookService, auth)
	c.IntentController = controller.NewIntentController(intentService)
	c.FeedHandler = handler.NewFeedHandler(conversationService, eventPublisher, c.WebSocketHub, cfg.App.JwtSecret, wsLogger)

	c.closers = append(c.closers, func() {
		_ = wsLogger.Sync()
		_ = sysLogger.Sync()
	})
	return c, nil
}

// Close releases bus connections and flushes the loggers, newest first
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func connectRedis(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newNotebookStore(cfg config.RouterConfig, rdb *redis.Client, log logger.ILogger) notebook.Store {
	if cfg.NotebookStore == "redis" && rdb != nil {
		return notebook.NewRedisStore(rdb, cfg.NotebookTTL)
	}
	if cfg.NotebookStore == "redis" {
		log.Warn("BOOTSTRAP", "Redis unavailable, notebooks are kept in memory", nil)
	}
	return notebook.NewMemoryStore(cfg.NotebookTTL)
}
