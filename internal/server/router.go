package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/pagecraft-org/pagecraft-backend/internal/handlers"
  "github.com/pagecraft-org/pagecraft-backend/internal/middleware"
)

type RouterConfig struct {
  ChatHandler    *handlers.ChatHandler
  AuthMiddleware *middleware.AuthMiddleware
  AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowedOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    ExposeHeaders:    []string{"X-Chat-Id"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  api := router.Group("/api")
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())

  //Chats
  protected.POST("/chats/turn", cfg.ChatHandler.Turn)
  protected.GET("/chats", cfg.ChatHandler.List)
  protected.GET("/chats/:chatID", cfg.ChatHandler.Get)
  protected.DELETE("/chats/:chatID", cfg.ChatHandler.Delete)
  protected.GET("/chats/:chatID/page", cfg.ChatHandler.Page)

  return router
}
