package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"repolens/internal/agent"
	"repolens/internal/cli"
	"repolens/internal/config"
	"repolens/internal/eventbus"
	"repolens/internal/gateway"
	"repolens/internal/history"
	"repolens/internal/llm"
	"repolens/internal/security"
	"repolens/internal/tool"
)

// envVaultPassphrase unlocks the encrypted vault used when no OS keychain
// is available.
const envVaultPassphrase = "REPOLENS_VAULT_PASSPHRASE"

// App holds the wired application and implements cli.Backend.
type App struct {
	cfg       *config.Config
	cfgLoader *config.Loader
	logger    *zap.Logger
	bus       *eventbus.Bus
	keyStore  *security.KeyStore
	gateway   *gateway.Client
	registry  *tool.Registry
	agent     *agent.Agent
	history   history.Store
}

// NewApp loads configuration and builds every component.
func NewApp(opts cli.Options) (*App, error) {
	loader, err := config.NewLoader(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	if err := validateBaseURL(cfg.Gateway.BaseURL); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if cfg.LLM.BaseURL != "" {
		if err := validateBaseURL(cfg.LLM.BaseURL); err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
	}

	a := &App{
		cfg:       cfg,
		cfgLoader: loader,
		logger:    logger,
		bus:       eventbus.New(),
	}

	ks, err := security.NewKeyStore(filepath.Dir(loader.FilePath()), os.Getenv(envVaultPassphrase))
	if err != nil {
		logger.Warn("key store unavailable, secrets must come from config or environment", zap.Error(err))
	} else {
		a.keyStore = ks
	}
	a.resolveSecrets()

	if err := a.initAgent(); err != nil {
		return nil, err
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			logger.Warn("query history disabled", zap.String("path", cfg.History.DBPath), zap.Error(err))
		} else {
			a.history = store
		}
	}

	a.subscribeEvents()
	return a, nil
}

func (a *App) initAgent() error {
	if a.cfg.LLM.APIKey == "" && a.cfg.LLM.BaseURL == "" {
		a.logger.Warn("LLM API key not configured; completions will fail until one is set")
	}

	provider, err := llm.NewProvider(a.cfg.LLM)
	if err != nil {
		return err
	}
	if fb := a.cfg.FallbackLLM; fb != nil && fb.APIKey != "" {
		fallback, err := llm.NewProvider(*fb)
		if err != nil {
			a.logger.Warn("fallback provider ignored", zap.Error(err))
		} else {
			provider = llm.NewFallbackProvider(a.logger, provider, fallback)
		}
	}

	a.gateway = gateway.New(gateway.Config{
		BaseURL: a.cfg.Gateway.BaseURL,
		Token:   a.cfg.Gateway.Token,
		Timeout: a.cfg.Gateway.Timeout(),
	}, a.logger)
	a.registry = tool.DefaultRegistry()

	a.agent = agent.New(
		agent.NewPlanner(provider, a.registry.List(), a.cfg.Agent, a.logger),
		agent.NewExecutor(a.gateway, a.registry, a.bus, a.cfg.Gateway.Concurrency, a.logger),
		agent.NewSynthesizer(provider, security.NewRedactor(a.cfg.Security.Redaction), a.cfg.Agent, a.logger),
		a.bus,
		a.logger,
	)
	return nil
}

// resolveSecrets replaces [keyring] placeholders with stored secrets. A
// placeholder that cannot be resolved, or any placeholder when there is no
// key store, is cleared and falls back to the environment.
func (a *App) resolveSecrets() {
	resolve := func(name string, field *string) {
		if *field != security.KeyringPlaceholder {
			return
		}
		if a.keyStore == nil {
			*field = ""
			return
		}
		val, err := a.keyStore.Get(name)
		if err != nil {
			a.logger.Warn("failed to read secret", zap.String("name", name), zap.Error(err))
			*field = ""
			return
		}
		*field = val
	}

	resolve(security.SecretLLMKey, &a.cfg.LLM.APIKey)
	if a.cfg.FallbackLLM != nil {
		resolve(security.SecretFallbackLLMKey, &a.cfg.FallbackLLM.APIKey)
	}
	resolve(security.SecretGatewayToken, &a.cfg.Gateway.Token)
	config.ApplyEnv(a.cfg)
}

func (a *App) subscribeEvents() {
	log := a.logger.Named("events")
	a.bus.Subscribe(eventbus.TopicToolStarting, func(e eventbus.Event) {
		p := e.Payload.(eventbus.ToolProgress)
		log.Debug("tool starting", zap.String("query_id", p.QueryID), zap.Int("index", p.Index), zap.String("tool", p.Tool))
	})
	a.bus.Subscribe(eventbus.TopicToolSucceeded, func(e eventbus.Event) {
		p := e.Payload.(eventbus.ToolProgress)
		log.Debug("tool succeeded", zap.String("query_id", p.QueryID), zap.Int("index", p.Index), zap.String("tool", p.Tool))
	})
	a.bus.Subscribe(eventbus.TopicToolFailed, func(e eventbus.Event) {
		p := e.Payload.(eventbus.ToolProgress)
		log.Info("tool failed", zap.String("query_id", p.QueryID), zap.Int("index", p.Index), zap.String("tool", p.Tool), zap.String("error", p.Error))
	})
	a.bus.Subscribe(eventbus.TopicError, func(e eventbus.Event) {
		log.Warn("agent error", zap.Any("payload", e.Payload))
	})
}

// Ask answers query and records it in history. The record is returned
// even when saving it fails.
func (a *App) Ask(ctx context.Context, query string) (*history.Record, error) {
	out := a.agent.Run(ctx, query)
	rec := &history.Record{
		ID:          out.QueryID,
		Query:       out.Query,
		Strategy:    out.Plan.Strategy,
		Invocations: out.Plan.Invocations,
		Results:     out.Results,
		Answer:      out.Answer,
		Degraded:    out.Degraded,
		CreatedAt:   time.Now(),
	}
	if a.history == nil {
		return rec, nil
	}
	if err := a.history.Save(ctx, *rec); err != nil {
		return rec, fmt.Errorf("save history: %w", err)
	}
	return rec, nil
}

// Tools returns the local tool catalog.
func (a *App) Tools() []tool.Spec {
	return a.registry.List()
}

// RemoteTools asks the gateway for its tool list.
func (a *App) RemoteTools(ctx context.Context) gateway.Result {
	return a.gateway.ListTools(ctx)
}

func (a *App) History(ctx context.Context, limit int) ([]history.Record, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.List(ctx, limit)
}

func (a *App) Lookup(ctx context.Context, id string) (*history.Record, error) {
	if a.history == nil {
		return nil, history.ErrNotFound
	}
	return a.history.Get(ctx, id)
}

func (a *App) Health(ctx context.Context) error {
	return a.gateway.Health(ctx)
}

// SetSecret stores a secret and points the config file at it.
func (a *App) SetSecret(name, value string) error {
	if a.keyStore == nil {
		return errors.New("key store unavailable")
	}
	if err := a.keyStore.Set(name, value); err != nil {
		return err
	}
	return a.cfgLoader.Update(func(c *config.Config) {
		switch name {
		case security.SecretLLMKey:
			c.LLM.APIKey = security.KeyringPlaceholder
		case security.SecretFallbackLLMKey:
			if c.FallbackLLM != nil {
				c.FallbackLLM.APIKey = security.KeyringPlaceholder
			}
		case security.SecretGatewayToken:
			c.Gateway.Token = security.KeyringPlaceholder
		}
	})
}

// DeleteSecret removes a stored secret. The config file is left as is.
func (a *App) DeleteSecret(name string) error {
	if a.keyStore == nil {
		return errors.New("key store unavailable")
	}
	return a.keyStore.Delete(name)
}

// WriteConfig saves the built-in defaults to the config file.
func (a *App) WriteConfig(force bool) (string, error) {
	path := a.cfgLoader.FilePath()
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := a.cfgLoader.Save(config.Defaults()); err != nil {
		return "", err
	}
	return path, nil
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Logger() *zap.Logger    { return a.logger }

// Close releases the history database and flushes logs.
func (a *App) Close() error {
	var err error
	if a.history != nil {
		err = a.history.Close()
	}
	_ = a.logger.Sync()
	return err
}

// newLogger builds a stderr logger so command output on stdout stays clean.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// validateBaseURL checks that a base URL is valid and uses http/https scheme.
func validateBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("base URL must use http or https scheme, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must have a host")
	}
	return nil
}
