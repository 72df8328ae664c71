package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"goshapes/internal/adapters"
	"goshapes/internal/bootstrap"
	gameDelivery "goshapes/internal/delivery/game"
	"goshapes/internal/domain/shape"
	ownMiddleware "goshapes/internal/middleware"
	repo "goshapes/internal/repository"
	gameuc "goshapes/internal/usecase/game"
)

type mainDeliveryHandler struct {
	game *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	library, err := loadLibrary(cfg.ShapesPath)
	if err != nil {
		logger.Fatal("Failed to load shape library", zap.Error(err))
	}
	logger.Infof("Shape library loaded: %d shapes", library.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(context.Background())
	defer databaseAdapters.redisAdapter.Close(context.Background())

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, library, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server is running on port %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return server.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func loadLibrary(path string) (*shape.Library, error) {
	if path == "" {
		return shape.Default()
	}
	return shape.Load(path)
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.game.Routes(r)
}

// initDatabaseAdapters поднимает только настроенные хранилища: без REDIS_URL партии живут в памяти процесса.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if mongoAdapter.Enabled() {
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Fatal("Не удалось инициализировать MongoDB", zap.Error(err))
		}
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if redisAdapter.Enabled() {
		if err := redisAdapter.Init(ctx); err != nil {
			log.Fatal("Не удалось инициализировать Redis", zap.Error(err))
		}
	}

	log.Info("Адаптеры баз данных инициализированы")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	library *shape.Library,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	var store gameuc.GameStore
	if databaseAdapters.redisAdapter.Enabled() {
		archive := databaseAdapters.mongoAdapter.Database
		store = repo.NewGameRepository(cfg, log, databaseAdapters.redisAdapter.GetClient(), archive)
	} else {
		log.Warn("REDIS_URL is not set, games are kept in memory")
		store = repo.NewMemoryGameStore()
	}

	gameUseCase := gameuc.NewGameUseCase(cfg, log, store, library)
	return &mainDeliveryHandler{
		game: gameDelivery.NewGameHandler(log, gameUseCase),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
