package bootstrap

import (
	"context"
	"log"
	"time"

	"query-workbench-be/internal/config"
	"query-workbench-be/internal/controller"
	"query-workbench-be/internal/pkg/logger"
	"query-workbench-be/internal/repository/memory"
	"query-workbench-be/internal/repository/unitofwork"
	"query-workbench-be/internal/service"
	"query-workbench-be/internal/websocket"
	"query-workbench-be/pkg/llm/factory"
	"query-workbench-be/pkg/queryengine"
	"query-workbench-be/pkg/queryengine/graphqlengine"
	"query-workbench-be/pkg/queryengine/nlengine"
	"query-workbench-be/pkg/queryengine/sqlengine"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const runEventsTopic = "cell_run_events"

type Container struct {
	// Controllers
	NotebookController controller.INotebookController
	CellController     controller.ICellController
	DatasetController  controller.IDatasetController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	ExecutionService service.IExecutionService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Query Backends
	sqlEngine, err := sqlengine.New(sqlengine.Config{
		Path:           cfg.Engine.DuckDBPath,
		DatasetStorage: cfg.Engine.DatasetStorage,
		MaxResultRows:  cfg.Engine.MaxResultRows,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize SQL engine: %v", err)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Llm.Provider,
		cfg.Llm.Model,
		cfg.Llm.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Llm.Provider, cfg.Llm.Model)

	datasetCache := gocache.New(30*time.Second, time.Minute)
	datasetService := service.NewDatasetService(uowFactory, datasetCache)

	dispatcher := queryengine.NewDispatcher(datasetService)
	dispatcher.Register("SQL", sqlEngine)
	dispatcher.Register("GraphQL", graphqlengine.New(sqlEngine, cfg.Engine.GraphQLMaxRows))
	dispatcher.Register("NaturalLanguage", nlengine.New(llmProvider, sqlEngine))

	// 4. Redis (optional, cross-instance websocket fanout)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis, running single-instance: %v", err)
			rdb = nil
		}
	}

	// 5. WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 6. Services
	publisherService := service.NewPublisherService(runEventsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, runEventsTopic, wsHub, sysLogger)

	notebookLocks := memory.NewNotebookLocks()
	runRegistry := memory.NewRunRegistry()

	notebookService := service.NewNotebookService(uowFactory)
	cellService := service.NewCellService(uowFactory, notebookLocks)
	executionService := service.NewExecutionService(
		uowFactory,
		dispatcher,
		runRegistry,
		publisherService,
		sysLogger,
		cfg.Execution.Timeout,
	)

	// 7. Controllers
	return &Container{
		NotebookController: controller.NewNotebookController(notebookService),
		CellController:     controller.NewCellController(cellService, executionService),
		DatasetController:  controller.NewDatasetController(datasetService),

		ConsumerService:  consumerService,
		ExecutionService: executionService,

		WebSocketHub: wsHub,
	}
}
