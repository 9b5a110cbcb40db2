package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/adapter/notify"
	"github.com/olyamironova/exchange-engine/internal/adapter/pg"
	"github.com/olyamironova/exchange-engine/internal/adapter/projection"
	"github.com/olyamironova/exchange-engine/internal/adapter/realtime"
	"github.com/olyamironova/exchange-engine/internal/adapter/redis"
	httpapi "github.com/olyamironova/exchange-engine/internal/api/http"
	"github.com/olyamironova/exchange-engine/internal/config"
	"github.com/olyamironova/exchange-engine/internal/engine"
	"github.com/olyamironova/exchange-engine/internal/logging"
)

func main() {
	cfg := config.MustLoad()

	logger, err := logging.New(cfg.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := pg.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer repo.Close()

	kv := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	hub := realtime.NewHub(logger)
	secondary := notify.New(notify.Config{
		SMTPHost:    cfg.SMTP.Host,
		SMTPPort:    cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromAddress: cfg.SMTP.From,
	}, logger)
	proj := projection.New(cfg.Projection.BaseURL, logger)

	eng := engine.New(engine.Config{
		TickInterval:               cfg.Engine.TickInterval,
		StartupGrace:               cfg.Engine.StartupGrace,
		NegotiationResponseWindow:  cfg.Engine.NegotiationResponseWindow,
		ConfirmationResponseWindow: cfg.Engine.ConfirmationResponseWindow,
		HeartbeatTTL:               cfg.Engine.HeartbeatTTL,
		ActiveOrdersFlagTTL:        cfg.Engine.ActiveOrdersFlagTTL,
		AdvisoryMaxSpreadPct:       cfg.Engine.AdvisoryMaxSpreadPct,
	}, repo, kv, hub, secondary, proj, logger)

	eng.Start(ctx)
	defer eng.Stop()

	server := httpapi.NewServer(eng, logger)
	r := server.Router()
	r.GET("/ws", func(c *gin.Context) {
		userID := c.Query("user_id")
		if err := hub.ServeWS(c.Writer, c.Request, userID); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
		}
	})

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}
