package types

import (
	"context"
	"net/http"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/redis"
	"github.com/canopy-network/flightsurety/pkg/store"
	"github.com/canopy-network/flightsurety/pkg/surety"
)

// App holds the running surety service and the processes around it.
type App struct {
	// Protocol façade and the relay directory it consults
	Service   *surety.Service
	Directory *identity.RelayDirectory

	// Bus receives every notification; Feed serves WebSocket subscribers.
	// Feed is the Redis stream when Redis is enabled and the bus otherwise.
	Bus  *notify.Bus
	Feed notify.Feed

	// Redis Client (optional, nil when REDIS_ENABLED is false)
	RedisClient *redis.Client

	// Cron runs the stale request report every CronSpec tick.
	Cron     *cron.Cron
	CronSpec string
	// StaleAge is how long a request may stay open before it is reported.
	StaleAge time.Duration

	// Sessions tracks connected WebSocket clients by connection id.
	Sessions *xsync.Map[uint64, string]

	// Zap Logger
	Logger *zap.Logger

	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// SetupScheduler registers the stale request report.
func (a *App) SetupScheduler(logger cron.Logger) error {
	a.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger)))

	_, err := a.Cron.AddFunc(a.CronSpec, func() {
		a.ReportStaleRequests(time.Now())
	})
	return err
}

// ReportStaleRequests logs every oracle request that has been open longer
// than StaleAge. Requests are only observed, never closed.
func (a *App) ReportStaleRequests(now time.Time) []store.PendingRequest {
	stale := a.Service.Store().OpenRequestsBefore(now.Add(-a.StaleAge))
	for _, req := range stale {
		a.Logger.Warn("Oracle request still open",
			zap.Stringer("key", req.Key),
			zap.Uint8("index", req.Record.Index),
			zap.Stringer("airline", req.Record.Airline),
			zap.String("flight", req.Record.Flight),
			zap.Uint64("timestamp", req.Record.Timestamp),
			zap.Int("reports", req.Reports),
			zap.Duration("age", now.Sub(req.OpenedAt)))
	}
	if len(stale) > 0 {
		a.Logger.Info("Stale request report", zap.Int("open", len(stale)))
	}
	return stale
}

// Start starts the application.
func (a *App) Start(ctx context.Context) {
	if a.Cron != nil {
		a.Cron.Start()
		a.Logger.Info("Cron started", zap.String("cronSpec", a.CronSpec))
	}

	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = a.Server.Shutdown(shutdownCtx)

	if a.Cron != nil {
		<-a.Cron.Stop().Done()
	}

	// flush pending sink deliveries before the Redis connection goes away
	a.Bus.Close()

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
