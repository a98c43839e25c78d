package main

import (
	"context"
	"log"

	"event-rsvp-service/config"
	"event-rsvp-service/internal/cache"
	"event-rsvp-service/internal/database"
	"event-rsvp-service/internal/handler"
	"event-rsvp-service/internal/queue"
	"event-rsvp-service/internal/repository"
	"event-rsvp-service/internal/service"
	"event-rsvp-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// repositories
	guestRepo := repository.NewGuestRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	emailLogRepo := repository.NewEmailLogRepository(pool)

	// infra
	capacityCache := cache.NewRedisCapacityCache(rdb)
	notificationQueue, err := queue.NewRedisStreamNotificationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize notification queue: %v", err)
	}

	// services
	registrationService := service.NewRegistrationService(
		pool, guestRepo, eventRepo, registrationRepo, capacityCache, notificationQueue,
	)
	eventService := service.NewEventService(eventRepo, registrationRepo, emailLogRepo, capacityCache)
	guestService := service.NewGuestService(guestRepo)

	// notification worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationWorker := worker.NewNotificationWorker(emailLogRepo, notificationQueue)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewRSVPHandler(registrationService).RegisterRoutes(router)
	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewGuestHandler(guestService).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
