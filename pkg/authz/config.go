package authz

import (
	_ "embed"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/pkg/configuration"
)

//go:embed assets/model.conf
var defaultModel string

//go:embed assets/policy.csv
var defaultPolicy string

// Config captures all inputs necessary to initialize the Casbin enforcer.
// Empty paths fall back to the embedded model and policy.
type Config struct {
	ModelPath    string
	PolicyPath   string
	Logger       *logrus.Logger
	FlagProvider FlagProvider
}

func (c Config) normalized() Config {
	if c.ModelPath != "" {
		c.ModelPath = filepath.Clean(c.ModelPath)
	}
	if c.PolicyPath != "" {
		c.PolicyPath = filepath.Clean(c.PolicyPath)
	}
	if c.FlagProvider == nil {
		c.FlagProvider = StaticMode(ModeEnforce)
	}
	return c
}

// DefaultConfig builds a Config using the global configuration singleton.
func DefaultConfig() Config {
	cfg := configuration.Use()
	var flags FlagProvider = StaticMode(ParseMode(cfg.Authz.Mode))
	if cfg.Authz.FlagFile != "" {
		flags = NewFileFlagProvider(cfg.Authz.FlagFile, ParseMode(cfg.Authz.Mode))
	}
	return Config{
		ModelPath:    cfg.Authz.ModelPath,
		PolicyPath:   cfg.Authz.PolicyPath,
		Logger:       cfg.Logger(),
		FlagProvider: flags,
	}
}
