package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"taxbuddy-backend/internal/auth"
	"taxbuddy-backend/internal/config"
	"taxbuddy-backend/internal/engine"
	"taxbuddy-backend/internal/handler"
	"taxbuddy-backend/internal/responder"
	"taxbuddy-backend/internal/service"
	"taxbuddy-backend/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 环境变量覆盖来自 .env，没有也不报错
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config file, using defaults: %v", err)
		cfg = config.Default()
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 初始化服务
	chatService := service.NewChatService(cfg)
	authService := auth.NewService()
	generator := responder.New(time.Now().UnixNano())
	manager := engine.NewManager(chatService, generator, engine.NewScheduler(), cfg)
	hub := handler.NewHub()

	// 初始化处理器
	chatHandler := handler.NewChatHandler(chatService, authService, manager, hub)
	interactHandler := handler.NewInteractHandler(manager, hub)
	voiceHandler := handler.NewVoiceHandler(manager)
	authHandler := handler.NewAuthHandler(authService)
	referenceHandler := handler.NewReferenceHandler()

	// 创建路由
	router := setupRouter(cfg, chatHandler, interactHandler, voiceHandler, authHandler, referenceHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	manager.Close()
	chatService.Stop()
	if err := server.Close(); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

func setupRouter(cfg *config.Config, chatHandler *handler.ChatHandler, interactHandler *handler.InteractHandler, voiceHandler *handler.VoiceHandler, authHandler *handler.AuthHandler, referenceHandler *handler.ReferenceHandler) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// API路由
	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/guest", authHandler.Guest)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login-as", authHandler.LoginAs)
			authGroup.POST("/logout", authHandler.Logout)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/session", chatHandler.CreateSession)
			chat.POST("/session/list", chatHandler.GetSessionList)
			chat.GET("/session/del/:session_id", chatHandler.DeleteSession)
			chat.POST("/session/clear", chatHandler.ClearAllSessions)
			chat.GET("/session/:session_id", chatHandler.GetSession)
			chat.GET("/messages/:session_id", chatHandler.GetMessages)
		}

		interact := api.Group("/interact")
		{
			interact.POST("/:session_id/mode", interactHandler.SelectMode)
			interact.POST("/:session_id/message", interactHandler.Message)
			interact.GET("/:session_id/events", interactHandler.Events)
			interact.GET("/:session_id/state", interactHandler.State)
			interact.POST("/:session_id/home", interactHandler.Home)
			interact.POST("/:session_id/clear", interactHandler.Clear)
			interact.POST("/:session_id/voice/end", interactHandler.EndVoice)
			interact.POST("/:session_id/voice/language", interactHandler.Language)
			interact.POST("/:session_id/speak", interactHandler.Speak)
			interact.POST("/:session_id/upload", interactHandler.Upload)
			interact.GET("/:session_id/export", interactHandler.Export)
		}

		voiceGroup := api.Group("/voice")
		{
			voiceGroup.GET("/ws/:session_id", voiceHandler.Serve)
		}

		reference := api.Group("/reference")
		{
			reference.GET("/scenarios", referenceHandler.Scenarios)
			reference.GET("/faq", referenceHandler.FAQ)
			reference.GET("/deductions", referenceHandler.Deductions)
			reference.GET("/deadlines", referenceHandler.Deadlines)
		}
	}

	return router
}
