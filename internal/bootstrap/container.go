package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"notesquest-be/internal/config"
	"notesquest-be/internal/controller"
	"notesquest-be/internal/pkg/logger"
	"notesquest-be/internal/repository/memory"
	"notesquest-be/internal/repository/unitofwork"
	"notesquest-be/internal/service"
	"notesquest-be/pkg/extractor"
	"notesquest-be/pkg/llm/chain"
	"notesquest-be/pkg/llm/factory"
	pkgNats "notesquest-be/pkg/nats"
	"notesquest-be/pkg/storage"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	DocumentController   controller.IDocumentController
	GenerationController controller.IGenerationController
	ChatController       controller.IChatController
	HealthController     controller.IHealthController

	// Background services, run from main
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// In-process event bus for async persistence.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	publisherService := service.NewPublisherService(pubSub)

	// External event bus. Optional: the app degrades to local-only
	// events when NATS is off or unreachable.
	var natsPub *pkgNats.Publisher
	if cfg.App.NatsEnabled {
		pub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// Object storage. Optional: uploads are kept in the database
	// either way, the object store is a mirror of the raw files.
	var objectStorage storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewMinioStorage(storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Printf("[WARN] Failed to connect to object storage: %v", err)
		} else {
			objectStorage = store
		}
	}

	// Provider fallback chain, in priority order. Unconfigured
	// providers are dropped by the factory.
	generationChain, err := factory.NewChain(
		[]factory.ProviderConfig{
			{Type: "ai-service", BaseURL: cfg.Ai.ServiceBaseURL},
			{Type: "mistral", APIKey: cfg.Ai.MistralAPIKey, Model: cfg.Ai.MistralModel},
			{Type: "openai", APIKey: cfg.Ai.OpenAIAPIKey, Model: cfg.Ai.OpenAIModel},
		},
		chain.WithAttemptTimeout(cfg.Ai.AttemptTimeout),
		chain.WithCacheTTL(cfg.Ai.CacheTTL),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize provider chain: %v", err)
	}

	streamRegistry := memory.NewStreamRegistry()

	documentService := service.NewDocumentService(uowFactory, extractor.New(), objectStorage, natsPub, sysLogger)
	generationService := service.NewGenerationService(uowFactory, generationChain, publisherService, sysLogger)
	chatService := service.NewChatService(uowFactory, generationChain, publisherService, streamRegistry, sysLogger)
	consumerService := service.NewConsumerService(pubSub, uowFactory, natsPub, sysLogger)

	return &Container{
		Logger:               sysLogger,
		DocumentController:   controller.NewDocumentController(documentService, cfg.App.MaxUploadBytes),
		GenerationController: controller.NewGenerationController(generationService),
		ChatController:       controller.NewChatController(chatService, generationChain, sysLogger),
		HealthController:     controller.NewHealthController(generationService),
		ConsumerService:      consumerService,
	}
}
