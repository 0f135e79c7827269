package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	// 允许环境变量覆盖, 如 IM_TRANSPORT=local
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("jwt.issuer", "Volunteer")
	viper.SetDefault("jwt.expire_hour", 24)
	viper.SetDefault("im.transport", "redis")
	viper.SetDefault("im.push_timeout", 2000)
	viper.SetDefault("im.store_timeout", 5000)
	viper.SetDefault("im.append_retries", 5)
	viper.SetDefault("im.reconcile_spec", "0 */5 * * * *")
	viper.SetDefault("im.reconcile_batch", 200)
	viper.SetDefault("im.send_buffer", 64)
	viper.SetDefault("im.write_wait", 10)
	viper.SetDefault("im.pong_wait", 60)
	viper.SetDefault("im.display_name_cache", 600)
}
