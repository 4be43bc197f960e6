package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"byebye/internal/batch"
	"byebye/internal/catalog"
	"byebye/internal/config"
	"byebye/internal/discogs"
	"byebye/internal/inventory"
	"byebye/internal/logging"
	"byebye/internal/notifications"
	"byebye/internal/pricing"
)

type commandContext struct {
	configFlag  *string
	formatFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *inventory.Store
}

func newCommandContext(configFlag, formatFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		formatFlag:  formatFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// log returns the invocation logger. Logs go to the dated file in the log
// directory, and to stderr as well with --verbose.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil || cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		outputs := []string{logging.LogFilePath(cfg.Paths.LogDir, time.Now())}
		if c.verboseFlag != nil && *c.verboseFlag {
			outputs = append(outputs, "stderr")
		}
		logger, err := logging.New(logging.Options{
			Level:            cfg.Logging.Level,
			Format:           cfg.Logging.Format,
			OutputPaths:      outputs,
			ErrorOutputPaths: outputs,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, time.Now())
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openStore() (*inventory.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := inventory.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	c.store = store
	return store, nil
}

// withStore runs fn against the inventory and closes it afterwards, since
// cobra skips post-run hooks when a command fails.
func (c *commandContext) withStore(fn func(*inventory.Store) error) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer c.close()
	return fn(store)
}

func (c *commandContext) discogsClient() (*discogs.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return discogs.New(discogs.OptionsFromConfig(cfg))
}

func (c *commandContext) resolver() (*catalog.Resolver, error) {
	client, err := c.discogsClient()
	if err != nil {
		return nil, err
	}
	return catalog.NewResolver(client, c.log()), nil
}

func (c *commandContext) aggregator() (*pricing.Aggregator, error) {
	client, err := c.discogsClient()
	if err != nil {
		return nil, err
	}
	return pricing.NewAggregator(client, c.log()), nil
}

func (c *commandContext) runner(store *inventory.Store, opts ...batch.Option) (*batch.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	resolver, err := c.resolver()
	if err != nil {
		return nil, err
	}
	base := []batch.Option{
		batch.WithDelay(cfg.BatchDelay()),
		batch.WithAutoApply(cfg.Batch.AutoApply),
		batch.WithNotifier(notifications.NewService(cfg)),
		batch.WithLogger(c.log()),
	}
	return batch.NewRunner(resolver, store, store, append(base, opts...)...), nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
