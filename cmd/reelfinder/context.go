package main

import (
	"strings"
	"sync"

	"github.com/reelfinder/reelfinder/internal/config"
)

type commandContext struct {
	configFlag   *string
	fixturesFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, fixturesFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		fixturesFlag: fixturesFlag,
	}
}

// ensureConfig loads the configuration once. The --fixtures flag overrides
// catalog.fixture_path.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.fixturesFlag != nil {
			if fixtures := strings.TrimSpace(*c.fixturesFlag); fixtures != "" {
				cfg.Catalog.FixturePath = fixtures
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}
