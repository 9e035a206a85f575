package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"marmitaria/internal/catalog"
	"marmitaria/internal/config"
	"marmitaria/internal/database"
	"marmitaria/internal/handlers"
	"marmitaria/internal/middleware"
	"marmitaria/internal/notify"
	"marmitaria/internal/order"
)

// dispatcher is what the session registry and the notification endpoint
// need from a notification backend.
type dispatcher interface {
	order.Dispatcher
	handlers.NotificationStatus
}

func main() {
	config.Load()
	if err := config.AppEnv.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(config.AppEnv.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	handlers.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live := catalog.NewLive(catalog.MustNew(catalog.Defaults()))

	var db *mongo.Database
	if config.AppEnv.MongoEnabled() {
		db = connectDatabase(ctx, logger, live)
		defer func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("MONGO_URI not set: catalog is in memory, orders are not persisted, admin API disabled")
	}

	notifier, shutdownNotify := startNotifications(ctx, logger, live)
	defer shutdownNotify()

	opts := order.Options{Dispatcher: notifier, Logger: logger}
	if db != nil {
		opts.Store = order.NewRepository(db)
	}
	sessions := order.NewRegistry(live, opts)
	go sessions.Run(ctx, time.Minute, config.AppEnv.SessionIdleTTL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.Health(live))
	r.GET("/catalog", handlers.GetCatalog(live))
	r.GET("/categories", handlers.GetCategories())

	r.POST("/sessions", handlers.CreateSession(sessions))
	s := r.Group("/sessions/:id")
	{
		s.GET("", handlers.GetSession(sessions))
		s.PUT("/size", handlers.SelectSize(sessions))
		s.POST("/ingredients/:ingredientId/toggle", handlers.ToggleSessionIngredient(sessions))
		s.POST("/extras/:extraId/toggle", handlers.ToggleSessionExtra(sessions))
		s.PUT("/observation", handlers.SetObservation(sessions))
		s.POST("/marmitas", handlers.AddMarmita(sessions))
		s.DELETE("/marmitas/:marmitaId", handlers.RemoveMarmita(sessions))
		s.POST("/checkout", handlers.ProceedToCheckout(sessions))
		s.POST("/back", handlers.BackToBuilder(sessions))
		s.GET("/quote", handlers.GetQuote(sessions))
		s.POST("/complete", handlers.CompleteOrder(sessions))
		s.POST("/new-order", handlers.NewOrder(sessions))
		s.GET("/notification", handlers.GetNotification(sessions, notifier))
	}

	if db != nil {
		r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

		admin := r.Group("/admin/api")
		admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
		{
			admin.GET("/me", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			admin.GET("/ingredients", handlers.GetAllIngredients(live))
			admin.POST("/ingredients", handlers.CreateIngredient(db, live))
			admin.PUT("/ingredients/:id", handlers.UpdateIngredient(db, live))
			admin.POST("/ingredients/:id/toggle", handlers.ToggleIngredient(db, live))
			admin.DELETE("/ingredients/:id", handlers.DeleteIngredient(db, live))

			admin.GET("/extras", handlers.GetAllExtras(live))
			admin.PUT("/extras/:id", handlers.UpdateExtra(db, live))

			admin.GET("/orders", handlers.GetOrders(db))
			admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
		}
	}

	srv := &http.Server{
		Addr:              ":" + config.AppEnv.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// connectDatabase seeds an empty catalog, loads it into live and makes sure
// the bootstrap admin exists. Any failure here is fatal.
func connectDatabase(ctx context.Context, logger *zap.Logger, live *catalog.Live) *mongo.Database {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := database.Connect(connectCtx, config.AppEnv.MongoURI)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	db := client.Database(config.AppEnv.DBName)
	logger.Info("mongo connected", zap.String("db", db.Name()))

	if err := database.EnsureCatalogIndexes(db, logger); err != nil {
		logger.Warn("catalog index warning", zap.Error(err))
	}
	if err := database.EnsureOrderIndexes(db, logger); err != nil {
		logger.Warn("order index warning", zap.Error(err))
	}
	if err := database.EnsureAdminIndexes(db, logger); err != nil {
		logger.Warn("admin index warning", zap.Error(err))
	}

	store := catalog.NewStore(db)
	seeded, err := store.Seed(connectCtx, catalog.Defaults())
	if err != nil {
		logger.Fatal("catalog seed", zap.Error(err))
	}
	if seeded > 0 {
		logger.Info("catalog seeded", zap.Int("documents", seeded))
	}
	loaded, err := store.Load(connectCtx)
	if err != nil {
		logger.Fatal("catalog load", zap.Error(err))
	}
	live.Replace(loaded)

	if config.AppEnv.AdminEmail != "" {
		created, err := database.EnsureAdmin(connectCtx, db, config.AppEnv.AdminEmail, config.AppEnv.AdminPassword)
		if err != nil {
			logger.Fatal("admin bootstrap", zap.Error(err))
		}
		if created {
			logger.Info("admin created", zap.String("email", config.AppEnv.AdminEmail))
		}
	}
	return db
}

// startNotifications picks the notification backend. With TEMPORAL_HOST the
// workflow runs on an in-process worker; otherwise the in-memory queue does.
func startNotifications(ctx context.Context, logger *zap.Logger, live *catalog.Live) (dispatcher, func()) {
	var sender notify.Sender = notify.LogSender{Logger: logger}
	if config.AppEnv.EvolutionEnabled() {
		sender = notify.NewEvolutionSender(
			config.AppEnv.EvolutionAPIURL,
			config.AppEnv.EvolutionInstance,
			config.AppEnv.EvolutionAPIKey,
		)
	} else {
		logger.Warn("EVOLUTION_API_URL not set: order messages are only logged")
	}

	files, err := notify.NewFilePrinter(config.AppEnv.ReceiptDir)
	if err != nil {
		logger.Fatal("receipt dir", zap.Error(err))
	}
	printers := notify.MultiPrinter{files}
	if config.AppEnv.R2Enabled() {
		archive, err := notify.NewReceiptArchive(ctx, notify.ArchiveConfig{
			Endpoint:  config.AppEnv.R2Endpoint,
			AccessKey: config.AppEnv.R2AccessKey,
			SecretKey: config.AppEnv.R2SecretKey,
			Bucket:    config.AppEnv.R2Bucket,
			Prefix:    config.AppEnv.R2Prefix,
		})
		if err != nil {
			logger.Fatal("receipt archive", zap.Error(err))
		}
		printers = append(printers, archive)
	}

	if !config.AppEnv.TemporalEnabled() {
		q := notify.NewQueue(sender, printers, live, logger, notify.QueueConfig{})
		q.Start(ctx)
		go q.Run(ctx, time.Minute, config.AppEnv.SessionIdleTTL)
		return q, q.Close
	}

	c, err := client.Dial(client.Options{HostPort: config.AppEnv.TemporalHost})
	if err != nil {
		logger.Fatal("temporal dial", zap.Error(err))
	}
	w := worker.New(c, config.AppEnv.NotifyTaskQueue, worker.Options{})
	notify.RegisterWorker(w, &notify.Activities{Sender: sender, Printer: printers})
	if err := w.Start(); err != nil {
		logger.Fatal("temporal worker", zap.Error(err))
	}
	logger.Info("temporal worker started", zap.String("taskQueue", config.AppEnv.NotifyTaskQueue))

	return notify.NewTemporalDispatcher(c, config.AppEnv.NotifyTaskQueue, live, logger), func() {
		w.Stop()
		c.Close()
	}
}
