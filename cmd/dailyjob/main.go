package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Amulyanrao7777/MorningGlow/internal/affirmation"
	"github.com/Amulyanrao7777/MorningGlow/internal/app"
	"github.com/Amulyanrao7777/MorningGlow/internal/config"
	"github.com/Amulyanrao7777/MorningGlow/internal/email"
	"github.com/Amulyanrao7777/MorningGlow/internal/filter"
	"github.com/Amulyanrao7777/MorningGlow/internal/formatter"
	"github.com/Amulyanrao7777/MorningGlow/internal/gemini"
	"github.com/Amulyanrao7777/MorningGlow/internal/guarantee"
	"github.com/Amulyanrao7777/MorningGlow/internal/logging"
	"github.com/Amulyanrao7777/MorningGlow/internal/sources"
	"github.com/Amulyanrao7777/MorningGlow/internal/state"
	"github.com/Amulyanrao7777/MorningGlow/internal/summary"
	"github.com/Amulyanrao7777/MorningGlow/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		slog.Error("dailyjob failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env необязателен: в проде переменные приходят из окружения
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	logger := logging.New(envCfg.LogLevel)
	slog.SetDefault(logger)

	path := config.DefaultPath
	if envCfg.ConfigPath != "" {
		path = envCfg.ConfigPath
	}
	rootCfg, err := config.Load(path, envCfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, closeStore, err := state.Open(rootCfg.History.Backend, rootCfg.History.Path, time.Now, logging.Component(logger, "history"))
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer closeStore()

	p, err := buildPipeline(ctx, envCfg, rootCfg, store, logger)
	if err != nil {
		return err
	}

	if rootCfg.Schedule.Cron == "" {
		report, err := p.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("digest sent", "run_id", report.RunID, "stories", len(report.Stories), "delivered", report.Delivery.Delivered())
		return nil
	}
	return schedule(ctx, rootCfg.Schedule, p, logger)
}

func buildPipeline(ctx context.Context, envCfg *config.EnvConfig, rootCfg config.Root, store state.Store, logger *slog.Logger) (*app.Pipeline, error) {
	httpClient := &http.Client{Timeout: time.Duration(rootCfg.Sources.HTTPTimeoutSeconds) * time.Second}

	// Источники
	validator := sources.NewURLValidator(httpClient, rootCfg.Sources.ProbeEvery,
		time.Duration(rootCfg.Sources.ProbeTimeoutSeconds)*time.Second, logging.Component(logger, "validator"))
	collector := sources.NewMultiCollector(validator, logging.Component(logger, "sources"),
		sources.NewNewsAPICollector(envCfg.NewsAPIKey, rootCfg.Sources.NewsAPIBaseURL, rootCfg.Pipeline.Recency(),
			httpClient, time.Now, logging.Component(logger, "newsapi")),
		sources.NewFeedCollector(sources.FeedOptions{
			GoogleNews:    rootCfg.Sources.GoogleNews,
			GoogleNewsMax: rootCfg.Sources.GoogleNewsMaxItems,
			Feeds:         rootCfg.Sources.Feeds,
			Recency:       rootCfg.Pipeline.Recency(),
			Client:        httpClient,
			Clock:         time.Now,
			Logger:        logging.Component(logger, "rss"),
		}),
	)

	// Классификаторы
	accuracyRules := filter.DefaultAccuracyRules()
	accuracyRules.SpeculationThreshold = rootCfg.Pipeline.SpeculationThreshold
	filterLogger := logging.Component(logger, "filter")
	stages := []app.FilterStage{
		filter.NewStage("accuracy", filter.NewAccuracyClassifier(accuracyRules), filterLogger),
		filter.NewStage("safety", filter.NewSafetyClassifier(filter.DefaultSafetyRules()), filterLogger),
	}

	// Суммаризация: Gemini, при отказе экстрактивная
	var primary summary.Summarizer
	if !envCfg.SkipGemini {
		policy := gemini.DefaultRetryPolicy()
		policy.AttemptTimeout = rootCfg.Gemini.Timeout()
		client, err := gemini.NewClient(ctx, envCfg.GeminiAPIKey, policy, logging.Component(logger, "gemini"))
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		primary = gemini.NewSummarizer(client, rootCfg.Gemini, logging.Component(logger, "gemini"))
	}
	enricher := summary.NewEnricher(primary,
		summary.NewExtractive(rootCfg.Pipeline.SummaryWords, rootCfg.Pipeline.SummarySentences),
		logging.Component(logger, "summary"))

	g, err := guarantee.New(store, guarantee.DefaultFallbackStories(), guarantee.Options{
		Window: rootCfg.Pipeline.DedupeWindow(),
		Clock:  time.Now,
		Logger: logging.Component(logger, "guarantee"),
	})
	if err != nil {
		return nil, err
	}
	if err := g.CheckBounds(rootCfg.Pipeline.MinStories, rootCfg.Pipeline.MaxStories); err != nil {
		return nil, err
	}

	// Доставка
	renderer, err := formatter.NewEmailRenderer(rootCfg.Email.Subject)
	if err != nil {
		return nil, fmt.Errorf("email template: %w", err)
	}
	owner := email.Owner{Email: envCfg.OwnerEmail, Name: envCfg.OwnerName}

	var deliverers []app.Deliverer
	if envCfg.SMTPConfigured() {
		transport := email.NewSMTPTransport(email.SMTPConfig{
			Host:     envCfg.SMTPHost,
			Port:     envCfg.SMTPPort,
			Username: envCfg.SMTPUser,
			Password: envCfg.SMTPPassword,
		})
		deliverers = append(deliverers, email.NewSender(transport, renderer, envCfg.EmailFrom, envCfg.Recipients, owner, logging.Component(logger, "email")))
	} else {
		logger.Warn("smtp not configured, email delivery disabled")
	}
	if envCfg.TelegramConfigured() {
		tgClient := telegram.NewClient(envCfg.TelegramBotToken, "", httpClient)
		msgFormatter := formatter.NewMessageFormatter(rootCfg.Telegram.MaxMessageLength)
		deliverers = append(deliverers, telegram.NewSender(tgClient, msgFormatter, envCfg.TelegramChatIDs, logging.Component(logger, "telegram")))
	}

	seed := uint64(time.Now().UnixNano())
	return app.NewPipeline(app.PipelineDeps{
		Collector:    collector,
		Stages:       stages,
		Enricher:     enricher,
		Guarantee:    g,
		Affirmations: affirmation.Default(),
		Deliverers:   deliverers,
		Preview:      email.NewPreviewWriter(rootCfg.Email.PreviewDir, renderer, owner, logging.Component(logger, "preview")),
		Clock:        time.Now,
		Rand:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Logger:       logging.Component(logger, "pipeline"),
		Queries:      rootCfg.Pipeline.Queries,
		MinStories:   rootCfg.Pipeline.MinStories,
		MaxStories:   rootCfg.Pipeline.MaxStories,
		PreviewMode:  envCfg.PreviewMode,
	}), nil
}

// schedule запускает пайплайн по cron до сигнала завершения. Пересекающиеся запуски пропускаются.
func schedule(ctx context.Context, cfg config.Schedule, p *app.Pipeline, logger *slog.Logger) error {
	var running sync.Mutex
	c := cron.New(cron.WithLocation(cfg.Location()))

	_, err := c.AddFunc(cfg.Cron, func() {
		if !running.TryLock() {
			logger.Warn("previous run still in progress, skipping")
			return
		}
		defer running.Unlock()

		report, err := p.Run(ctx)
		if err != nil {
			var pe *app.PipelineError
			if errors.As(err, &pe) {
				logger.Error("scheduled run failed", "stage", pe.Stage, "err", pe.Err, "run_id", report.RunID)
				return
			}
			logger.Error("scheduled run failed", "err", err)
			return
		}
		logger.Info("scheduled run finished", "run_id", report.RunID, "stories", len(report.Stories))
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cfg.Cron, err)
	}

	c.Start()
	logger.Info("scheduler started", "cron", cfg.Cron, "timezone", cfg.Location().String())

	<-ctx.Done()
	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}
