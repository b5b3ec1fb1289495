package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lintang-b-s/Multicutx/pkg"
	"github.com/spf13/viper"
)

func SetConfigDefaults() {
	viper.SetDefault("ENGINE", pkg.ENGINE_BRANCH_AND_BOUND)
	viper.SetDefault("WORKERS", pkg.DEFAULT_WORKERS)
	viper.SetDefault("TIME_LIMIT", "0s")
	viper.SetDefault("ALLOW_INCUMBENT", false)
	viper.SetDefault("COST_SCALE", pkg.DEFAULT_COST_SCALE)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "60s")
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("SOLUTION_CACHE_SIZE", 256)

	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", 10*time.Second)
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", 10*time.Second)
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", 5*time.Second)
}

// ReadConfig loads config.{yaml,json,toml} from configPath. a missing file is not an error:
// defaults and MULTICUT_* environment variables still apply.
func ReadConfig(configPath string) error {
	SetConfigDefaults()

	viper.SetEnvPrefix("MULTICUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.AddConfigPath(configPath)

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
