package main

import (
	"context"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/config"
	"github.com/Ross1116/sitespace-app-sub000/internal/consumer"
	"github.com/Ross1116/sitespace-app-sub000/internal/handler"
	"github.com/Ross1116/sitespace-app-sub000/internal/logger"
	"github.com/Ross1116/sitespace-app-sub000/internal/middleware"
	"github.com/Ross1116/sitespace-app-sub000/internal/repository"
	"github.com/Ross1116/sitespace-app-sub000/internal/service"
	"github.com/Ross1116/sitespace-app-sub000/pkg/backend"
	"github.com/Ross1116/sitespace-app-sub000/pkg/database"
	"github.com/Ross1116/sitespace-app-sub000/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()
	log := logger.Get(cfg.LogLevel)

	db := database.NewPostgresDB(cfg.DSN())
	snapshotRepo := repository.NewSnapshotRepository(db)

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	svc := service.NewScheduleService(client, snapshotRepo, cfg.LayoutConfig(), cfg.DragConfig(), log)
	defer svc.Close()

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.BackendTimeout)
		defer cancel()
		if err := svc.RefreshDay(ctx, cfg.ProjectKey, time.Now()); err != nil {
			log.Warnf("schedule refresh failed: %v", err)
		}
	}
	refresh()

	// RabbitMQ consumer: booking change events from the backend
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}
	consumer.NewBookingConsumer(snapshotRepo, cfg.ProjectKey, refresh, log).Start(msgs)

	// Periodic refresh keeps the day view warm between change events
	cr := cron.New()
	if _, err := cr.AddFunc(cfg.RefreshCron, refresh); err != nil {
		log.Fatalf("invalid refresh cron %q: %v", cfg.RefreshCron, err)
	}
	cr.Start()
	defer cr.Stop()

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Infow("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "scheduling-service"})
	})

	handler.NewScheduleHandler(svc, cfg.StartHour, cfg.EndHour).RegisterRoutes(e)

	log.Infof("Scheduling Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
