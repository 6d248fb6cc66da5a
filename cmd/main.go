package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/risk_analysis_bot/config"
	"github.com/KotFed0t/risk_analysis_bot/data"
	"github.com/KotFed0t/risk_analysis_bot/data/repository/postgres"
	"github.com/KotFed0t/risk_analysis_bot/data/session"
	"github.com/KotFed0t/risk_analysis_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/risk_analysis_bot/internal/portfolio"
	"github.com/KotFed0t/risk_analysis_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/risk_analysis_bot/internal/scheduler"
	"github.com/KotFed0t/risk_analysis_bot/internal/service/riskAnalysisService"
	"github.com/KotFed0t/risk_analysis_bot/internal/tgbot"
	"github.com/KotFed0t/risk_analysis_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.String("sessionStore", cfg.SessionStore), slog.Any("catalog", cfg.CatalogTickers))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the bot runs without the chat registry when postgres is unavailable
	var registry riskAnalysisService.Repository
	pgClient, err := data.NewPostgresClient(ctx, cfg)
	if err != nil {
		slog.Warn("starting without chat registry", slog.String("err", err.Error()))
	} else {
		defer pgClient.Close()
		registry = postgres.NewPostgres(pgClient)
	}

	sched := scheduler.New()

	var sessionStore riskAnalysisService.Session
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		memorySession := session.NewMemorySession(cfg.SessionExpiration)
		sched.NewIntervalJob("evict expired sessions", memorySession.EvictExpired, cfg.Jobs.EvictSessionsInterval, false)
		sessionStore = memorySession
	default:
		redisClient := data.NewRedisClient(cfg)
		defer redisClient.Close()
		sessionStore = session.NewRedisSession(redisClient, cfg.SessionExpiration)
	}

	sched.Start()
	defer sched.Stop()

	catalog := portfolio.NewCatalog(buttonTickers(cfg.CatalogTickers))

	reportGenerator := xlsxGenerator.New()

	riskAnalysisSrv := riskAnalysisService.New(catalog, registry, sessionStore, reportGenerator)

	tgController := telegram.NewController(riskAnalysisSrv)

	tgBot := tgbot.New(cfg, tgController)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

// buttonTickers drops configured catalog entries that cannot be put on a button.
func buttonTickers(tickers []string) []string {
	res := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !tgCallback.ValidTicker(t) {
			slog.Warn("catalog ticker skipped", slog.String("ticker", t))
			continue
		}
		res = append(res, t)
	}
	return res
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
