package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"jobdesk/internal/backend"
	"jobdesk/internal/config"
	"jobdesk/internal/logging"
	"jobdesk/internal/session"
)

const (
	annotationSkipConfig = "skipConfigLoad"
	annotationPublic     = "public"
)

type globalFlags struct {
	configPath string
	apiURL     string
	verbose    bool
	json       bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger

	guardOnce sync.Once
	store     *session.FileTokenStore
	guard     *session.Guard

	clientOnce sync.Once
	client     *backend.Client
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		if override := strings.TrimSpace(c.flags.apiURL); override != "" {
			cfg.API.BaseURL = strings.TrimRight(override, "/")
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("--api-url: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

// logger writes to the configured log file. A logger that cannot be opened
// degrades to a no-op rather than failing the command.
func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue(), c.flags.verbose)
		if err != nil {
			logger = logging.NewNop()
		}
		c.log = logger
	})
	return c.log
}

func (c *commandContext) sessionGuard() (*session.Guard, *session.FileTokenStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	c.guardOnce.Do(func() {
		c.store = session.NewFileTokenStore(cfg.Session.TokenPath)
		c.guard = session.NewGuard(c.store, c.logger())
	})
	return c.guard, c.store, nil
}

func (c *commandContext) requireSession() error {
	guard, _, err := c.sessionGuard()
	if err != nil {
		return err
	}
	return guard.Require()
}

func (c *commandContext) backendClient() (*backend.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	guard, _, err := c.sessionGuard()
	if err != nil {
		return nil, err
	}
	c.clientOnce.Do(func() {
		c.client = backend.NewFromConfig(cfg, guard, c.logger())
	})
	return c.client, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	return hasAnnotation(cmd, annotationSkipConfig)
}

// isPublic reports whether cmd may run without an admin session. The root
// command and cobra's help are always public.
func isPublic(cmd *cobra.Command) bool {
	if !cmd.HasParent() || cmd.Name() == "help" {
		return true
	}
	return hasAnnotation(cmd, annotationPublic)
}

func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[key] == "true" {
			return true
		}
	}
	return false
}

func publicAnnotations() map[string]string {
	return map[string]string{annotationPublic: "true"}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
