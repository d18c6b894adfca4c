package bootstrap

import (
	"context"
	"log"

	"resume-optimizer/internal/config"
	"resume-optimizer/internal/controller"
	"resume-optimizer/internal/pkg/logger"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/internal/repository/implementation"
	"resume-optimizer/internal/repository/memory"
	"resume-optimizer/internal/repository/unitofwork"
	"resume-optimizer/internal/service"
	"resume-optimizer/pkg/llm/factory"
	"resume-optimizer/pkg/taskevents"

	pktNats "resume-optimizer/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ResumeController controller.IResumeController

	// Background Services (Exposed for main.go to run)
	WorkerService  service.IWorkerService
	HistoryService service.IHistoryService

	// InProcessWorkers is set when the queue lives in this process, so the
	// REST binary must run the workers itself.
	InProcessWorkers bool

	Logger  logger.ILogger
	closers []func()
}

// NewContainer builds every dependency. db may be nil, which disables the
// evaluation history.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	// 2. LLM Provider
	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  providerBaseURL(cfg.Ai),
		APIKey:   providerAPIKey(cfg.Ai),
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Queue and task state
	queue, states := c.newQueue(cfg)

	// 4. Evaluation history
	var history service.IHistoryService
	var sink taskevents.Sink

	natsPub := c.newNatsPublisher(cfg)
	if natsPub != nil {
		sink = natsPub
	}

	if db != nil {
		uowFactory := unitofwork.NewRepositoryFactory(db)

		var subscriber service.EventSubscriber
		if natsPub != nil {
			natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			} else {
				subscriber = natsSub
				c.closers = append(c.closers, natsSub.Close)
			}
		}

		history = service.NewHistoryService(uowFactory, subscriber, sysLogger)
		if subscriber == nil {
			// Without a bus the history is fed directly.
			sink = taskevents.SinkFunc(history.HandleEvent)
			log.Printf("[INFO] Evaluation history fed in process")
		}
		c.HistoryService = history
	}

	events := taskevents.NewBusPublisher(sink, sysLogger)

	// 5. Services
	resumeService := service.NewResumeService(queue, states, llmProvider, events, sysLogger)
	c.WorkerService = service.NewWorkerService(queue, states, llmProvider, events, sysLogger)

	// 6. Controllers
	c.ResumeController = controller.NewResumeController(resumeService, history)

	return c
}

func (c *Container) newQueue(cfg *config.Config) (contract.TaskQueue, contract.TaskStateRepository) {
	if cfg.Queue.Backend == "redis" {
		opt, err := redis.ParseURL(cfg.Queue.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.Queue.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })

		log.Printf("[INFO] Using Redis queue %s", cfg.Queue.Name)
		queue := implementation.NewRedisTaskQueue(rdb, cfg.Queue.Name)
		states := memory.NewCachedTaskStateRepository(
			implementation.NewRedisTaskStateRepository(rdb, cfg.Queue.ResultTTL),
			cfg.Queue.ResultTTL,
		)
		return queue, states
	}

	queue, err := memory.NewChannelTaskQueue(64)
	if err != nil {
		log.Fatalf("[FATAL] Failed to create in-process queue: %v", err)
	}
	c.closers = append(c.closers, func() { _ = queue.Close() })
	c.InProcessWorkers = true

	log.Printf("[INFO] Using in-process queue")
	return queue, memory.NewTaskStateRepository(cfg.Queue.ResultTTL)
}

func (c *Container) newNatsPublisher(cfg *config.Config) *pktNats.Publisher {
	if cfg.App.NatsURL == "" {
		return nil
	}
	pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		return nil
	}
	c.closers = append(c.closers, pub.Close)
	return pub
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func providerBaseURL(ai config.AIConfig) string {
	switch ai.LLMProvider {
	case "moonshot", "kimi":
		return ai.MoonshotBaseURL
	default:
		return ai.OllamaBaseURL
	}
}

func providerAPIKey(ai config.AIConfig) string {
	switch ai.LLMProvider {
	case "moonshot", "kimi":
		return ai.MoonshotAPIKey
	default:
		return ai.DeepSeekAPIKey
	}
}
