package bootstrap

import (
	"log"

	"edu-chatbot-be/internal/config"
	"edu-chatbot-be/internal/controller"
	"edu-chatbot-be/internal/pkg/logger"
	"edu-chatbot-be/internal/repository/memory"
	"edu-chatbot-be/internal/repository/unitofwork"
	"edu-chatbot-be/internal/service"
	"edu-chatbot-be/pkg/llm/factory"
	pktNats "edu-chatbot-be/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ProjectController controller.IProjectController
	ChatbotController controller.IChatbotController

	// Infrastructure (exposed for shutdown)
	Logger    logger.ILogger
	Publisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("bootstrap", "LLM provider initialized", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 3. NATS (optional; services skip publishing without a bus)
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{
			"url":   cfg.App.NatsURL,
			"error": err.Error(),
		})
		natsPub = nil
	} else {
		eventPublisher = natsPub
	}

	// 4. In-memory classification cache
	classCache := memory.NewClassificationCache()

	// 5. Services
	authService := service.NewAuthService(uowFactory, eventPublisher, sysLogger, cfg.Auth)
	projectService := service.NewProjectService(uowFactory, sysLogger)
	chatbotService := service.NewChatbotService(uowFactory, llmProvider, classCache, eventPublisher, sysLogger, cfg.Ai.RequestTimeout)

	// 6. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		ProjectController: controller.NewProjectController(projectService),
		ChatbotController: controller.NewChatbotController(chatbotService),
		Logger:            sysLogger,
		Publisher:         natsPub,
	}
}
