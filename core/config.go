package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultDirectoryTimeout  = 10 * time.Second
	DefaultDirectoryCacheTTL = 24 * time.Hour
)

type DirectoryConfig struct {
	Host     string        `koanf:"host" mapstructure:"host"`
	APIKey   string        `koanf:"api_key" mapstructure:"api_key"`
	Timeout  time.Duration `koanf:"timeout" mapstructure:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl" mapstructure:"cache_ttl"`
}

type SearchConfig struct {
	DefaultHost string `koanf:"default_host" mapstructure:"default_host"`
	Scheme      string `koanf:"scheme" mapstructure:"scheme"`
}

type SubscriptionConfig struct {
	NetworkID string `koanf:"network_id" mapstructure:"network_id"`
}

type AutoSwitchConfig struct {
	Disabled bool `koanf:"disabled" mapstructure:"disabled"`
}

type Config struct {
	ServiceName  string             `koanf:"service_name" mapstructure:"service_name"`
	Directory    DirectoryConfig    `koanf:"directory" mapstructure:"directory"`
	Search       SearchConfig       `koanf:"search" mapstructure:"search"`
	Subscription SubscriptionConfig `koanf:"subscription" mapstructure:"subscription"`
	AutoSwitch   AutoSwitchConfig   `koanf:"auto_switch" mapstructure:"auto_switch"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "searchcore",
		Directory: DirectoryConfig{
			Timeout:  DefaultDirectoryTimeout,
			CacheTTL: DefaultDirectoryCacheTTL,
		},
		Search: SearchConfig{
			Scheme: "http",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Directory.Timeout < 0 {
		return fmt.Errorf("core: directory timeout must not be negative")
	}
	if c.Directory.CacheTTL < 0 {
		return fmt.Errorf("core: directory cache_ttl must not be negative")
	}
	scheme := strings.TrimSpace(strings.ToLower(c.Search.Scheme))
	if scheme != "" && scheme != "http" && scheme != "https" {
		return fmt.Errorf("core: search scheme %q is invalid", c.Search.Scheme)
	}
	return nil
}

func (c DirectoryConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("core: directory host is required")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("core: directory api_key is required")
	}
	return nil
}
