package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "AKD"

type Config struct {
	Addr               string        `mapstructure:"addr"`
	DBPath             string        `mapstructure:"db_path"`
	APIBaseURL         string        `mapstructure:"api_base_url"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	CatalogConcurrency int           `mapstructure:"catalog_concurrency"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	BrowseIdle         time.Duration `mapstructure:"browse_idle"`
	WarmCron           string        `mapstructure:"warm_cron"`
	EvictCron          string        `mapstructure:"evict_cron"`
	ShowcasePath       string        `mapstructure:"showcase_path"`
	LogFormat          string        `mapstructure:"log_format"`
	LogLevel           string        `mapstructure:"log_level"`
}

func Default() Config {
	return Config{
		Addr:               "127.0.0.1:8080",
		DBPath:             "akd.db",
		APIBaseURL:         "https://animekudesu-be.gatradigital.com",
		HTTPTimeout:        15 * time.Second,
		CatalogConcurrency: 6,
		CacheTTL:           10 * time.Minute,
		BrowseIdle:         30 * time.Minute,
		WarmCron:           "0 */15 * * * *",
		EvictCron:          "30 * * * * *",
		LogFormat:          "json",
		LogLevel:           "info",
	}
}

// Load lit, dans l'ordre: valeurs par défaut, fichier akd.yaml (optionnel,
// ou configFile), variables AKD_* (après chargement d'un éventuel .env).
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	def := Default()
	v.SetDefault("addr", def.Addr)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("api_base_url", def.APIBaseURL)
	v.SetDefault("http_timeout", def.HTTPTimeout)
	v.SetDefault("catalog_concurrency", def.CatalogConcurrency)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("browse_idle", def.BrowseIdle)
	v.SetDefault("warm_cron", def.WarmCron)
	v.SetDefault("evict_cron", def.EvictCron)
	v.SetDefault("showcase_path", def.ShowcasePath)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("akd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Overrides porte les valeurs passées en ligne de commande; vide = inchangé.
type Overrides struct {
	Addr      string
	DBPath    string
	LogFormat string
}

// Apply applique o puis revalide le résultat.
func (c Config) Apply(o Overrides) (Config, error) {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.Errorf("invalid log_format: %s (must be 'json' or 'console')", c.LogFormat)
	}
	if c.CacheTTL <= 0 || c.BrowseIdle <= 0 || c.HTTPTimeout <= 0 {
		return errors.New("http_timeout, cache_ttl and browse_idle must be positive")
	}
	return nil
}
