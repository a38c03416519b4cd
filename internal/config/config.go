// Package config loads application configuration and initializes logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store      store.Config     `yaml:"store" mapstructure:"store"`
	Nominatim  NominatimConfig  `yaml:"nominatim" mapstructure:"nominatim"`
	Overpass   OverpassConfig   `yaml:"overpass" mapstructure:"overpass"`
	LocalBiz   LocalBizConfig   `yaml:"localbiz" mapstructure:"localbiz"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Geo        GeoConfig        `yaml:"geo" mapstructure:"geo"`
	Phone      PhoneConfig      `yaml:"phone" mapstructure:"phone"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Cooldowns  CooldownConfig   `yaml:"cooldowns" mapstructure:"cooldowns"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// NominatimConfig holds geocoding service settings.
type NominatimConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// OverpassConfig holds listing service settings.
type OverpassConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LocalBizConfig holds the directory API credentials.
type LocalBizConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PlacesConfig holds the optional reviews API credentials. An empty key
// disables the reviews source entirely.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeoConfig qualifies geocoding queries and result matching.
type GeoConfig struct {
	Country  string `yaml:"country" mapstructure:"country"`
	Province string `yaml:"province" mapstructure:"province"`
}

// PhoneConfig sets the phone validation region.
type PhoneConfig struct {
	Region string `yaml:"region" mapstructure:"region"`
}

// CategoriesConfig optionally overrides the built-in category table.
type CategoriesConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// CooldownConfig holds per-source minimum inter-call intervals in seconds.
type CooldownConfig struct {
	GeocodeSecs         float64 `yaml:"geocode_secs" mapstructure:"geocode_secs"`
	ListingSecs         float64 `yaml:"listing_secs" mapstructure:"listing_secs"`
	DirectorySearchSecs float64 `yaml:"directory_search_secs" mapstructure:"directory_search_secs"`
	DirectoryDetailSecs float64 `yaml:"directory_detail_secs" mapstructure:"directory_detail_secs"`
	WebsiteSecs         float64 `yaml:"website_secs" mapstructure:"website_secs"`
	ReviewsSecs         float64 `yaml:"reviews_secs" mapstructure:"reviews_secs"`
	PipelineSecs        float64 `yaml:"pipeline_secs" mapstructure:"pipeline_secs"`
}

// Durations renders the cooldowns as the rate-limit registry expects them.
func (c CooldownConfig) Durations() map[string]time.Duration {
	secs := func(s float64) time.Duration {
		return time.Duration(s * float64(time.Second))
	}
	return map[string]time.Duration{
		ratelimit.SourceGeocode:         secs(c.GeocodeSecs),
		ratelimit.SourceListing:         secs(c.ListingSecs),
		ratelimit.SourceDirectorySearch: secs(c.DirectorySearchSecs),
		ratelimit.SourceDirectoryDetail: secs(c.DirectoryDetailSecs),
		ratelimit.SourceWebsite:         secs(c.WebsiteSecs),
		ratelimit.SourceReviews:         secs(c.ReviewsSecs),
		ratelimit.SourcePipeline:        secs(c.PipelineSecs),
	}
}

// ExportConfig configures result file output.
type ExportConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	MaxAgeHours int    `yaml:"max_age_hours" mapstructure:"max_age_hours"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BIZSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "search_history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "bizscout/1.0")
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 30)
	v.SetDefault("localbiz.base_url", "https://local-business-data.p.rapidapi.com")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("geo.country", "Pakistan")
	v.SetDefault("geo.province", "Sindh")
	v.SetDefault("phone.region", "PK")
	v.SetDefault("cooldowns.geocode_secs", 1)
	v.SetDefault("cooldowns.listing_secs", 1)
	v.SetDefault("cooldowns.directory_search_secs", 1)
	v.SetDefault("cooldowns.directory_detail_secs", 1)
	v.SetDefault("cooldowns.website_secs", 1)
	v.SetDefault("cooldowns.reviews_secs", 1)
	v.SetDefault("cooldowns.pipeline_secs", 60)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.max_age_hours", 1)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
