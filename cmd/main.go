package main

import (
  "fmt"
  "os"

  "github.com/joho/godotenv"

  "github.com/pagecraft-org/pagecraft-backend/internal/db"
  "github.com/pagecraft-org/pagecraft-backend/internal/handlers"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/middleware"
  "github.com/pagecraft-org/pagecraft-backend/internal/repos"
  "github.com/pagecraft-org/pagecraft-backend/internal/server"
  "github.com/pagecraft-org/pagecraft-backend/internal/services"
  "github.com/pagecraft-org/pagecraft-backend/internal/stream"
  "github.com/pagecraft-org/pagecraft-backend/internal/utils"
)

func main() {
  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  if err := godotenv.Load(); err != nil {
    log.Debug("No .env file found, relying on process environment")
  }
  log.Info("Attempting to load environment variables for Main now...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  corsOrigins := utils.GetEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000"}, log)
  log.Info("Environment variables loaded for Main :)")

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("DB init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  chatRepo := repos.NewChatRepo(thePG, log)
  messageRepo := repos.NewMessageRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Services Setup
  log.Info("Setting up Services from Main now...")
  authService := services.NewAuthService(log, jwtSecretKey)
  sessionService := services.NewSessionService(thePG, log, chatRepo, messageRepo)
  historyService := services.NewHistoryService(thePG, log, chatRepo, messageRepo)
  provider, err := services.NewOpenAIProvider(log)
  if err != nil {
    log.Error("Fatal error: Cannot init OpenAIProvider", "error", err)
    os.Exit(1)
  }
  relay := stream.NewRelay(log)
  chatService := services.NewChatService(log, sessionService, provider, relay)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  chatHandler := handlers.NewChatHandler(log, chatService, sessionService, historyService)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  log.Info("Setting Up Middleware from Main now...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)
  log.Info("Middleware Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    ChatHandler:    chatHandler,
    AuthMiddleware: authMiddleware,
    AllowedOrigins: corsOrigins,
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
