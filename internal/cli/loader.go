package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/virmuran/ProcessDesignPro/internal/balance"
	"github.com/virmuran/ProcessDesignPro/internal/config"
	"github.com/virmuran/ProcessDesignPro/internal/engine"
	"github.com/virmuran/ProcessDesignPro/internal/logger"
	"github.com/virmuran/ProcessDesignPro/internal/notify"
	"github.com/virmuran/ProcessDesignPro/internal/store"
)

// session is an open project: its configuration, database and the
// calculator and engine working on it.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	calc   *balance.Calculator
	engine *engine.Engine
}

// loadConfig reads the configuration named by the global flags and applies
// the --db and --verbose overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile, "")
	if err != nil {
		return nil, err
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.Verbose {
		cfg.Debug = true
	}
	return cfg, nil
}

// openSession opens the project database and wires the calculator and
// engine to it. Every event is echoed to f in verbose mode.
func openSession(ctx context.Context, opts *RootOptions, f *OutputFormatter) (*session, *CLIError) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, &CLIError{Code: ErrCodeConfig, Message: err.Error()}
	}

	log, err := logger.New(logger.Config{
		Debug:       cfg.Debug,
		OutputPaths: []string{"stderr"},
		Fields:      map[string]string{"db": cfg.Database.Path},
	})
	if err != nil {
		return nil, &CLIError{Code: ErrCodeConfig, Message: fmt.Sprintf("failed to build logger: %v", err)}
	}

	so := cfg.StoreOptions()
	so.Logger = log
	s, err := store.OpenContext(ctx, cfg.Database.Path, so)
	if err != nil {
		_ = log.Sync()
		return nil, &CLIError{
			Code:    ErrCodeDatabase,
			Message: fmt.Sprintf("failed to open database: %v", err),
			Details: map[string]string{"path": cfg.Database.Path},
		}
	}

	bus := notify.NewBus(notify.Func(func(e notify.Event) {
		f.VerboseLog("event: %s", e.Line())
	}))

	calcOpts := []balance.Option{
		balance.WithParams(cfg.BalanceParams()),
		balance.WithLogger(log.Named("balance")),
		balance.WithNotifier(bus),
	}
	if cfg.CalcCache.Enabled {
		calcOpts = append(calcOpts, balance.WithCache(balance.NewCache()))
	}
	calc := balance.NewCalculator(s, calcOpts...)

	eng := engine.New(s, calc,
		engine.WithLogger(log.Named("engine")),
		engine.WithNotifier(bus),
		engine.WithChangedBy("cli"),
	)

	return &session{cfg: cfg, logger: log, store: s, calc: calc, engine: eng}, nil
}

// Close releases the database and flushes the logger.
func (s *session) Close() error {
	err := s.store.Close()
	_ = s.logger.Sync()
	return err
}
