package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/auth"
	"github.com/annel0/voxel-edit/internal/config"
	"github.com/annel0/voxel-edit/internal/eventbus"
	"github.com/annel0/voxel-edit/internal/history"
	"github.com/annel0/voxel-edit/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML конфигурация сервера (по умолчанию VOXEL_CONFIG)")
		command    = flag.String("cmd", "actors", "Команда: actors, show, delete, tail")
		backend    = flag.String("backend", "", "Хранилище истории (перекрывает конфигурацию)")
		dir        = flag.String("dir", "", "Каталог file/badger/sqlite (перекрывает конфигурацию)")
		actorArg   = flag.String("actor", "", "UUID актора или имя оператора")
		count      = flag.Int("count", history.DefaultListCount, "Сколько записей показать (1..20)")
		types      = flag.String("types", "", "Фильтр типов событий для tail (через запятую)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if *backend != "" {
		cfg.History.Backend = *backend
	}
	if *dir != "" {
		cfg.History.Directory = *dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *command == "tail" {
		if err := tailEvents(ctx, cfg.EventBus, parseStringList(*types)); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}
		return
	}

	redisCfg := storage.DefaultRedisConfig()
	if cfg.History.RedisAddr != "" {
		redisCfg.Addr = cfg.History.RedisAddr
	}
	redisCfg.Password = cfg.History.RedisPassword
	redisCfg.DB = cfg.History.RedisDB

	store, err := storage.Open(storage.Options{
		Backend: cfg.History.Backend,
		Dir:     cfg.History.Directory,
		DSN:     cfg.History.MariaDSN,
		Redis:   redisCfg,
		Mongo: storage.MongoConfig{
			URI:        cfg.History.MongoURI,
			Database:   cfg.History.MongoDatabase,
			Collection: cfg.History.MongoCollection,
		},
	})
	if err != nil {
		log.Fatalf("❌ Failed to open %s store: %v", cfg.History.Backend, err)
	}
	defer store.Close()

	switch *command {
	case "actors":
		err = listActors(ctx, store)
	case "show":
		err = showActor(ctx, store, *actorArg, *count)
	case "delete":
		err = deleteActor(ctx, store, *actorArg)
	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: actors, show, delete, tail")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// parseActor принимает UUID или имя оператора
func parseActor(arg string) (uuid.UUID, error) {
	if arg == "" {
		return uuid.Nil, fmt.Errorf("нужен -actor")
	}
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	return auth.ActorIDFor(arg), nil
}

func listActors(ctx context.Context, store storage.HistoryStore) error {
	actors, err := store.Actors(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Actors with history: %d\n", len(actors))
	for _, actor := range actors {
		rec, err := store.Load(ctx, actor)
		if err != nil {
			fmt.Printf("   %s  (ошибка чтения: %v)\n", actor, err)
			continue
		}
		fmt.Printf("   %s  undo=%d redo=%d\n", actor, len(rec.Undo), len(rec.Redo))
	}
	return nil
}

func showActor(ctx context.Context, store storage.HistoryStore, arg string, count int) error {
	actor, err := parseActor(arg)
	if err != nil {
		return err
	}
	if count < 1 || count > history.MaxHistoryLines {
		return fmt.Errorf("count должен быть от 1 до %d", history.MaxHistoryLines)
	}

	// сервис только читает: Close не вызывается, чтобы не переписывать запись
	svc := history.NewService(history.WithStore(store))
	listing := svc.List(ctx, actor, count)
	undo, redo := svc.Sizes(ctx, actor)

	fmt.Printf("👤 %s  undo=%d redo=%d\n", actor, undo, redo)
	for _, line := range listing.Lines() {
		fmt.Println("   " + line)
	}
	return nil
}

func deleteActor(ctx context.Context, store storage.HistoryStore, arg string) error {
	actor, err := parseActor(arg)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, actor); err != nil {
		return err
	}
	fmt.Printf("🗑  History of %s deleted\n", actor)
	return nil
}

// tailEvents выводит события правок из JetStream до Ctrl+C
func tailEvents(ctx context.Context, cfg config.EventBusConfig, types []string) error {
	if cfg.URL == "" {
		return fmt.Errorf("eventbus.url не задан")
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return err
	}
	defer bus.Close()

	fmt.Printf("🎬 Tailing %s (stream %s)\n", cfg.URL, cfg.Stream)
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: types}, func(_ context.Context, ev *eventbus.Envelope) {
		fmt.Println(formatEvent(ev))
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return nil
}

func formatEvent(ev *eventbus.Envelope) string {
	ts := ev.Timestamp.UTC().Format(history.TimestampLayout)
	switch ev.EventType {
	case eventbus.TypeVoxelEdit:
		var p eventbus.VoxelEditEvent
		if err := ev.Decode(&p); err == nil {
			return fmt.Sprintf("%s %-9s actor=%s op=%s dim=%s changed=%d", ts, ev.EventType, p.Actor, p.Op, p.Dimension, p.Changed)
		}
	case eventbus.TypeVoxelUndo, eventbus.TypeVoxelRedo:
		var p eventbus.VoxelReplayEvent
		if err := ev.Decode(&p); err == nil {
			return fmt.Sprintf("%s %-9s actor=%s dim=%s restored=%d", ts, ev.EventType, p.Actor, p.Dimension, p.Restored)
		}
	}
	return fmt.Sprintf("%s %-9s %s", ts, ev.EventType, string(ev.Payload))
}

// parseStringList разбирает строку через запятую в слайс
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
