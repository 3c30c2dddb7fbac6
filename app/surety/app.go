package surety

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/app/surety/types"
	"github.com/canopy-network/flightsurety/pkg/entropy"
	"github.com/canopy-network/flightsurety/pkg/gate"
	"github.com/canopy-network/flightsurety/pkg/identity"
	"github.com/canopy-network/flightsurety/pkg/logging"
	"github.com/canopy-network/flightsurety/pkg/notify"
	"github.com/canopy-network/flightsurety/pkg/redis"
	"github.com/canopy-network/flightsurety/pkg/store"
	"github.com/canopy-network/flightsurety/pkg/surety"
	"github.com/canopy-network/flightsurety/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New("surety")
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	owner := utils.EnvAddress("OWNER_ADDRESS", "owner")
	genesis := utils.EnvAddress("GENESIS_AIRLINE", "AIR1")
	self := utils.EnvAddress("SERVICE_ADDRESS", "flightsurety-app")

	g := gate.New(owner)
	if err := g.Authorize(owner, self); err != nil {
		logger.Fatal("Unable to authorize service identity", zap.Error(err))
	}
	st := store.New(g, genesis)

	// Initialize Redis client for cross-process notifications (optional)
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - notifications stay in process",
				zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Redis client initialized for notifications")
		}
	} else {
		logger.Info("Redis disabled - notifications stay in process")
	}

	busOpts := []notify.BusOption{notify.WithWorkers(utils.EnvInt("NOTIFY_WORKERS", 4))}
	if redisClient != nil {
		busOpts = append(busOpts, notify.WithSink(notify.NewRedisSink(redisClient)))
	}
	bus := notify.NewBus(logger, busOpts...)

	var feed notify.Feed = bus
	if redisClient != nil {
		feed = notify.NewRedisFeed(redisClient, logger)
	}

	directory := identity.NewRelayDirectory()
	svc, err := surety.New(surety.Config{
		Store:     st,
		Self:      self,
		Directory: directory,
		Entropy:   entropy.NewDeterministic(utils.Env("ENTROPY_SEED", "flightsurety")),
		Treasury:  surety.NewMemoryTreasury(0),
		Publisher: bus,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Unable to initialize protocol service", zap.Error(err))
	}

	app := &types.App{
		Service:     svc,
		Directory:   directory,
		Bus:         bus,
		Feed:        feed,
		RedisClient: redisClient,
		CronSpec:    utils.Env("STALE_REQUEST_CRON", "0 */5 * * * *"),
		StaleAge:    utils.EnvDuration("STALE_REQUEST_AGE", 30*time.Minute),
		Sessions:    xsync.NewMap[uint64, string](),
		Logger:      logger,
	}

	if err := app.SetupScheduler(cron.DefaultLogger); err != nil {
		logger.Fatal("Unable to schedule stale request report", zap.Error(err))
	}

	logger.Info("Protocol initialized",
		zap.Stringer("owner", owner),
		zap.Stringer("genesis", genesis),
		zap.Stringer("service", self))

	return app
}
