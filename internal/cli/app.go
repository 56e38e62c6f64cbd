package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"fintrack/internal/advisor"
	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/log"
	promcollector "fintrack/internal/metrics/prometheus"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
	gsheets "fintrack/internal/sheets/google"
	"fintrack/internal/store"
)

const metricsNamespace = "fintrack"

// App bundles everything a command needs.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Store    *store.Store
	Reporter *report.Reporter
	Labels   core.Labels

	registry  *prometheus.Registry
	publisher *amqp.Client
	cleanups  []func() error
}

// Bootstrap opens the configured backend and loads the store. AMQP is
// optional: a connection failure is logged and the app runs without events.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Labels:   core.DefaultLabels(),
		registry: prometheus.NewRegistry(),
	}
	if res.Cleanup != nil {
		app.cleanups = append(app.cleanups, res.Cleanup)
	}

	collector := promcollector.NewCollector(metricsNamespace)
	if err := collector.Register(app.registry); err != nil {
		app.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := store.Options{
		Backend:       res.Backend,
		Logger:        logger,
		Metrics:       collector,
		RetryInterval: cfg.StorageRetryInterval,
	}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			app.publisher = client
			app.cleanups = append(app.cleanups, client.Close)
			opts.Publisher = client
		}
	}

	app.Store = store.Open(ctx, opts)
	app.Reporter = report.NewReporter(app.Store, report.Options{
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
		Labels:    app.Labels,
		Metrics:   collector,
		Logger:    logger,
	})
	return app, nil
}

// Criteria returns filter criteria carrying the configured week start.
func (a *App) Criteria() filter.Criteria {
	return filter.Criteria{WeekStart: a.Config.FirstDayOfWeek()}
}

// Publisher returns the AMQP client, or nil when events are disabled.
func (a *App) Publisher() *amqp.Client {
	return a.publisher
}

// SheetsWriter connects to the configured spreadsheet.
func (a *App) SheetsWriter(ctx context.Context) (sheets.RowWriter, error) {
	return gsheets.New(ctx, gsheets.Config{
		SpreadsheetID:   a.Config.GoogleSpreadsheetID,
		SheetName:       a.Config.GoogleSheetName,
		CredentialsJSON: a.Config.GoogleServiceAccountJSON,
		CredentialsFile: a.Config.GoogleServiceAccountFile,
	}, a.Logger)
}

// Advisor builds a Gemini-backed advisor.
func (a *App) Advisor(ctx context.Context) (*advisor.Advisor, error) {
	gen, err := advisor.NewGemini(ctx, a.Config.GeminiModel)
	if err != nil {
		return nil, err
	}
	return advisor.New(gen, a.Logger), nil
}

// Close dumps metrics when METRICS_FILE is set, then releases resources in
// reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	if a.Config != nil && a.Config.MetricsFile != "" {
		if err := promcollector.WriteTextfile(a.registry, a.Config.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}
