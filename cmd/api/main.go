package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/argus-sec/argus/internal/api/routes"
	"github.com/argus-sec/argus/internal/audit"
	"github.com/argus-sec/argus/internal/blocklist"
	"github.com/argus-sec/argus/internal/config"
	"github.com/argus-sec/argus/internal/correlate"
	"github.com/argus-sec/argus/internal/database"
	"github.com/argus-sec/argus/internal/logger"
	"github.com/argus-sec/argus/internal/pipeline"
	"github.com/argus-sec/argus/internal/ratelimit"
	"github.com/argus-sec/argus/internal/server"
	"github.com/argus-sec/argus/internal/services"
	"github.com/argus-sec/argus/internal/sweeper"
	"github.com/argus-sec/argus/internal/threat"
	"github.com/argus-sec/argus/internal/version"
	"github.com/argus-sec/argus/internal/waf"
)

func main() {
	// Setup logging with rotation
	logDir := "/app/data/logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Fallback to local directory if /app/data fails (e.g. local dev)
		logDir = "data/logs"
		_ = os.MkdirAll(logDir, 0755)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "argus.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and file
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))
	logger.Log().Infof("starting %s on version %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	encryptor, err := audit.NewAEADEncryptor(cfg.AuditKey)
	if err != nil {
		log.Fatalf("init audit encryptor: %v", err)
	}
	trail, err := audit.NewTrail(audit.NewGormStore(db), encryptor)
	if err != nil {
		log.Fatalf("init audit trail: %v", err)
	}

	sec := cfg.Security
	tracker := ratelimit.NewTracker(sec.MaxRequests, sec.Window)
	blocks := blocklist.New()
	decisions := services.NewDecisionService(db)

	var rules []waf.Rule
	if len(sec.Patterns) > 0 {
		rules = waf.ParseRules(sec.Patterns)
	}

	pipe := pipeline.New(sec, pipeline.Deps{
		Tracker:    tracker,
		Blocks:     blocks,
		Matcher:    waf.NewMatcher(rules),
		Trail:      trail,
		Scorer:     threat.NewScorer(sec.SignalWeights, sec.ThreatThreshold),
		Correlator: correlate.New(sec.CorrelationWindow),
		Decisions:  decisions,
		Notifier:   services.NewNotificationService(cfg.NotifyURLs),
	})

	sw := sweeper.New(tracker, blocks, sec.BlockTTL)
	if err := sw.Start(); err != nil {
		log.Fatalf("start sweeper: %v", err)
	}

	srv, err := server.New(db, cfg, routes.Deps{
		Pipeline:  pipe,
		Blocks:    blocks,
		Decisions: decisions,
	})
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log().Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}

	sw.Stop()
	pipe.Close()
}
