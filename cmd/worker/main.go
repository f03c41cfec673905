package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qrattend/internal/attendance"
	"qrattend/internal/capture"
	"qrattend/internal/config"
	"qrattend/internal/logging"
	"qrattend/internal/model"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

// Worker runs one scanning station: it consumes decoded QR strings and
// records attendance for a single session, one scan at a time.
func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	log := logging.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	attStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer closeStore()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		// a keyboard-wedge scanner types one payload per line
		mem := queue.NewInMemory(64)
		go feedLines(ctx, os.Stdin, mem)
		q = mem
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	}

	svc := attendance.NewService(attStore, cfg.LateCutoff, cfg.Location)
	opts := []attendance.StationOption{attendance.WithLogger(log)}
	if cfg.CueEnabled {
		opts = append(opts, attendance.WithCue(attendance.BellCue{W: os.Stdout}))
	}
	meta := model.SessionMeta{
		College:    cfg.SessionCollege,
		Instructor: cfg.SessionInstructor,
		Section:    cfg.SessionSection,
		Course:     cfg.SessionCourse,
	}
	station := attendance.NewStation(svc, meta, cfg.SessionID, opts...)
	if !meta.Complete() && cfg.SessionID == "" {
		log.Warn("session metadata incomplete; scans will be rejected until SESSION_* is set")
	}

	handle, err := capture.Start(ctx, q,
		func(ctx context.Context, payload string) {
			n := station.Handle(ctx, payload)
			log.WithField("notice", n.Level).Infof("%s: %s", n.Title, n.Message)
		},
		func(err error) {
			log.WithError(err).Warn("capture event ignored")
		},
	)
	if err != nil {
		n := station.Fail(err)
		log.Fatalf("%s: %s", n.Title, n.Message)
	}
	log.WithField("session_id", station.SessionID()).Info("station started, waiting for scans")

	select {
	case <-sigCh:
		log.Info("shutdown signal received")
	case <-handle.Done():
	}
	handle.Destroy()
	log.WithField("session_id", station.SessionID()).Info("station stopped")
}

func openStore(ctx context.Context, cfg config.App) (attendance.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return attendance.NewMemoryStore(), func() {}, nil
	case "sqlite":
		db, err := store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return attendance.NewRepository(db.Client, attendance.SQLite), func() { db.Close() }, nil
	default:
		db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return attendance.NewRepository(db.Client, attendance.Postgres), func() { db.Close() }, nil
	}
}

// feedLines publishes every non-empty line of r as a scan event.
func feedLines(ctx context.Context, r io.Reader, q queue.Queue) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := q.Publish(ctx, queue.Scan(line, time.Now())); err != nil {
			return
		}
	}
}
