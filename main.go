package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tamaralmogy/message-app/internal/config"
	"github.com/tamaralmogy/message-app/internal/delivery"
	"github.com/tamaralmogy/message-app/internal/directory"
	"github.com/tamaralmogy/message-app/internal/handlers"
	"github.com/tamaralmogy/message-app/internal/messagestore"
	"github.com/tamaralmogy/message-app/internal/middleware"
	"github.com/tamaralmogy/message-app/internal/observability"
	"github.com/tamaralmogy/message-app/internal/rabbitmq"
	"github.com/tamaralmogy/message-app/internal/storage"
	"github.com/tamaralmogy/message-app/internal/telemetry"
	"github.com/tamaralmogy/message-app/internal/ws"
)

const serviceName = "message-app"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()
	log.Printf("storage driver=%s", cfg.StorageDriver)

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	if cfg.AMQPURL != "" {
		if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRouting, serviceName, cfg.Environment)

	users := directory.NewUserDir(store)
	groups := directory.NewGroupDir(store)
	messages := messagestore.NewStore(store)
	engine := delivery.NewEngine(users, groups, messages)

	hub := ws.NewHub()

	userHandler := handlers.NewUserHandler(users, audit)
	groupHandler := handlers.NewGroupHandler(groups, audit)
	messageHandler := handlers.NewMessageHandler(engine, messages, hub, audit)
	feedHandler := ws.NewFeedHandler(hub)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/users", userHandler.Register)
	router.DELETE("/users/:user_id", userHandler.Delete)
	router.POST("/users/block", userHandler.Block)

	router.POST("/groups", groupHandler.Create)
	router.GET("/groups/:group_id/members", groupHandler.GetMembers)
	router.POST("/groups/:group_id/members", groupHandler.AddMember)
	router.DELETE("/groups/:group_id/members/:user_id", groupHandler.RemoveMember)

	router.POST("/messages", messageHandler.SendDirect)
	router.POST("/groups/:group_id/messages", messageHandler.SendGroup)
	router.GET("/messages/:user_id", messageHandler.List)

	router.GET("/ws/messages/:user_id", feedHandler.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openStore(cfg config.Config) (storage.KV, error) {
	switch cfg.StorageDriver {
	case "postgres":
		return storage.ConnectPostgres(cfg.PostgresDSN)
	case "redis":
		return storage.ConnectRedis(cfg.RedisURL)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
