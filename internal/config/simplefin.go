package config

import (
	"fmt"
	"os"

	"github.com/Veraticus/payee-flow/internal/common"
	"github.com/spf13/viper"
)

// SimpleFINConfig holds the bridge credentials.
type SimpleFINConfig struct {
	// Token is the one-time setup token; only needed until it has been claimed.
	Token string
	// AccessURL skips claiming entirely when set.
	AccessURL string
	StateFile string
}

// LoadSimpleFINConfig reads simplefin.* settings, falling back to SIMPLEFIN_*
// environment variables.
func LoadSimpleFINConfig() (*SimpleFINConfig, error) {
	cfg := SimpleFINConfig{
		Token:     viper.GetString("simplefin.token"),
		AccessURL: viper.GetString("simplefin.access_url"),
		StateFile: ExpandPath(viper.GetString("simplefin.state_file")),
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("SIMPLEFIN_TOKEN")
	}
	if cfg.AccessURL == "" {
		cfg.AccessURL = os.Getenv("SIMPLEFIN_ACCESS_URL")
	}
	if cfg.StateFile == "" {
		cfg.StateFile = DefaultDataDir() + "/simplefin_auth.json"
	}

	if cfg.AccessURL == "" && cfg.Token == "" {
		if _, err := os.Stat(cfg.StateFile); err != nil {
			return nil, fmt.Errorf("%w: simplefin.token or simplefin.access_url is required", common.ErrMissingConfig)
		}
	}
	return &cfg, nil
}
