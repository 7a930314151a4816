package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgKeyServer = "server"
	cfgKeyToken  = "token"
	cfgKeyLang   = "lang"
	cfgKeySecret = "jwt_secret"
	cfgKeyIssuer = "jwt_issuer"

	defaultServer = "http://localhost:3200"
)

// loadConfig reads config.yaml from dir, then HRMCTL_* environment
// variables. A missing file is not an error.
func loadConfig(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServer, defaultServer)
	v.SetDefault(cfgKeyLang, "en")
	v.SetDefault(cfgKeyIssuer, "hrdesk")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("hrmctl")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "hrmctl")
}

// settings is filled before any subcommand runs.
type settings struct {
	v       *viper.Viper
	verbose bool
	timeout time.Duration
}

func (s *settings) String(key string) string {
	return s.v.GetString(key)
}

func newRootCmd() *cobra.Command {
	var configDir string
	cfg := &settings{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "hrmctl",
		Short:         "HR records from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			for _, key := range []string{cfgKeyServer, cfgKeyToken, cfgKeyLang} {
				if f := cmd.Flags().Lookup(key); f != nil && f.Changed {
					loaded.Set(key, f.Value.String())
				}
			}
			cfg.v = loaded
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultConfigDir(), "directory holding config.yaml")
	cmd.PersistentFlags().String(cfgKeyServer, defaultServer, "base URL of the HR server")
	cmd.PersistentFlags().String(cfgKeyToken, "", "bearer token")
	cmd.PersistentFlags().String(cfgKeyLang, "en", "language of headers and messages")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	cmd.PersistentFlags().BoolVarP(&cfg.verbose, "verbose", "v", false, "log HTTP requests to stderr")

	cmd.AddCommand(newListCmd(cfg))
	cmd.AddCommand(newDeleteCmd(cfg))
	cmd.AddCommand(newTokenCmd(cfg))
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
