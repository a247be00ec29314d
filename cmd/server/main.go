package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-edit/internal/api"
	"github.com/annel0/voxel-edit/internal/auth"
	"github.com/annel0/voxel-edit/internal/config"
	"github.com/annel0/voxel-edit/internal/eventbus"
	"github.com/annel0/voxel-edit/internal/history"
	"github.com/annel0/voxel-edit/internal/logging"
	"github.com/annel0/voxel-edit/internal/observability"
	"github.com/annel0/voxel-edit/internal/storage"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world"
	_ "github.com/annel0/voxel-edit/internal/world/block/implementations"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.SetDefaultLevel(logging.ParseLevel(cfg.Logging.Level))

	logging.Info("🧱 Запуск сервера правок мира...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

func run(ctx context.Context, cfg *config.Config) error {
	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("телеметрия: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	editMetrics := observability.NewEditMetrics(reg)

	// === ШИНА СОБЫТИЙ ===
	bus, err := openEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	eventbus.Init(bus)
	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.Start()
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Логирование событий недоступно: %v", err)
	}

	// === МИР ===
	worlds, err := buildWorlds(cfg.World)
	if err != nil {
		return err
	}
	loop := world.NewTickLoop(worlds, time.Duration(cfg.Server.TickMillis)*time.Millisecond)
	loop.Start()
	logging.Info("🌍 Измерения: %v, тик %dмс", worlds.Dimensions(), cfg.Server.TickMillis)

	// === ИСТОРИЯ ===
	histOpts := []history.Option{
		history.WithMaxActions(cfg.Limits.ActionsPerActor),
		history.WithObserver(editMetrics),
	}
	if cfg.History.Persist {
		store, err := openHistoryStore(cfg.History)
		if err != nil {
			return fmt.Errorf("хранилище истории %s: %w", cfg.History.Backend, err)
		}
		histOpts = append(histOpts, history.WithStore(store))
		logging.Info("💾 История сохраняется в %s", cfg.History.Backend)
	}
	hist := history.NewService(histOpts...)

	executor := voxel.NewExecutor(
		voxel.WithLimits(voxel.Limits{MaxW: cfg.Limits.MaxW, MaxH: cfg.Limits.MaxH, MaxD: cfg.Limits.MaxD}),
		voxel.WithObserver(editMetrics),
	)

	// === АУТЕНТИФИКАЦИЯ ===
	operators, err := buildOperators(cfg.Auth)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		logging.Warn("auth.jwt_secret не задан: токены не переживут перезапуск")
	}
	issuer, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Minute)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	// === REST API ===
	rest, err := api.NewRestServer(api.Config{
		Port:         fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Operators:    operators,
		Issuer:       issuer,
		Executor:     executor,
		History:      hist,
		Worlds:       worlds,
		Loop:         loop,
		Registerer:   reg,
		Gatherer:     reg,
		HistoryLines: cfg.Limits.HistoryLines,
	})
	if err != nil {
		return err
	}

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()),
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() { errCh <- rest.Start() }()
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	logging.Info("✅ Сервисы запущены: REST :%d, метрики :%d", cfg.Server.GetRESTPort(), cfg.Server.GetMetricsPort())
	logging.Info("💡 curl -X POST http://localhost:%d/api/auth/login -d '{\"username\":\"...\",\"password\":\"...\"}'", cfg.Server.GetRESTPort())

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал, завершение работы...")
	case runErr = <-errCh:
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки REST API: %v", err)
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
	loop.Stop()
	if err := hist.Close(shutdownCtx); err != nil {
		logging.Error("Ошибка сохранения истории: %v", err)
	}
	exporter.Stop()
	if err := bus.Close(); err != nil {
		logging.Warn("Ошибка закрытия шины событий: %v", err)
	}
	eventbus.Init(nil)
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки телеметрии: %v", err)
	}
	return runErr
}

// openEventBus JetStream при заданном url, иначе шина в памяти
func openEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(1024), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("jetstream %s: %w", cfg.URL, err)
	}
	logging.Info("📨 События публикуются в JetStream %s (stream %s)", cfg.URL, cfg.Stream)
	return bus, nil
}

func openHistoryStore(cfg config.HistoryConfig) (storage.HistoryStore, error) {
	redisCfg := storage.DefaultRedisConfig()
	if cfg.RedisAddr != "" {
		redisCfg.Addr = cfg.RedisAddr
	}
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB

	return storage.Open(storage.Options{
		Backend: cfg.Backend,
		Dir:     cfg.Directory,
		DSN:     cfg.MariaDSN,
		Redis:   redisCfg,
		Mongo: storage.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		},
	})
}

func buildWorlds(cfg config.WorldConfig) (*world.Manager, error) {
	m := world.NewManager()
	for i, d := range cfg.Dimensions {
		var gen world.Generator
		switch d.Generator {
		case "", "perlin":
			gen = world.NewPerlinGenerator(cfg.Seed + int64(i))
		case "flat":
			gen = world.DefaultFlatGenerator()
		}
		w := world.New(world.Options{
			Dimension: d.ID,
			MinY:      d.MinY,
			MaxY:      d.MaxY,
			ReadOnly:  d.ReadOnly,
			Generator: gen,
		})
		if err := m.Add(w); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func buildOperators(cfg config.AuthConfig) (*auth.MemoryOperatorRepo, error) {
	repo := auth.NewMemoryOperatorRepo()
	for _, op := range cfg.Operators {
		hash := op.PasswordHash
		if hash == "" {
			if op.Password == "" {
				return nil, fmt.Errorf("оператор %s: нет пароля", op.Username)
			}
			logging.Warn("Оператор %s задан открытым паролем", op.Username)
			h, err := auth.HashPassword(op.Password)
			if err != nil {
				return nil, err
			}
			hash = h
		} else if err := auth.ValidatePasswordHash(hash); err != nil {
			return nil, fmt.Errorf("оператор %s: %w", op.Username, err)
		}

		actor := auth.ActorIDFor(op.Username)
		if op.ActorID != "" {
			parsed, err := uuid.Parse(op.ActorID)
			if err != nil {
				return nil, fmt.Errorf("оператор %s: actor_id: %w", op.Username, err)
			}
			actor = parsed
		}
		if _, err := repo.Create(op.Username, hash, actor); err != nil {
			return nil, fmt.Errorf("оператор %s: %w", op.Username, err)
		}
	}
	if repo.Len() == 0 {
		logging.Warn("Операторы не заданы: вход через REST невозможен")
	}
	return repo, nil
}
