package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Search    SearchConfig    `mapstructure:"search"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Upload    UploadConfig    `mapstructure:"upload"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MetricsPort  int           `mapstructure:"metrics_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	EnableLatency bool `mapstructure:"enable_latency"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	EmbeddingTTL time.Duration `mapstructure:"embedding_ttl"`
}

type SearchConfig struct {
	Provider   string        `mapstructure:"provider"`
	APIKey     string        `mapstructure:"api_key"`
	EngineID   string        `mapstructure:"engine_id"`
	BaseURL    string        `mapstructure:"base_url"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// ImageQuery is sent to the provider for image searches without a text hint.
	ImageQuery string `mapstructure:"image_query"`
	// Options holds provider specific settings, see DecodeOptions.
	Options map[string]interface{} `mapstructure:"options"`
}

type EmbeddingConfig struct {
	Provider      string        `mapstructure:"provider"`
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	APIKey        string        `mapstructure:"api_key"`
	Dimensions    int           `mapstructure:"dimensions"`
	MaxTextLength int           `mapstructure:"max_text_length"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RankingConfig struct {
	Workers           int           `mapstructure:"workers"`
	ImageFetchTimeout time.Duration `mapstructure:"image_fetch_timeout"`
	MaxImageBytes     int           `mapstructure:"max_image_bytes"`
}

type UploadConfig struct {
	MaxSize           int      `mapstructure:"max_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
	AllowMethods string `mapstructure:"allow_methods"`
	AllowHeaders string `mapstructure:"allow_headers"`
}

var globalConfig Config

// Load reads config.yaml from configPath (then ./config and .) and overlays
// the environment. A missing file is not an error; defaults and env apply.
func Load(configPath string) error {
	cfg, err := loadConfigFile(configPath, "config")
	if err != nil {
		return err
	}
	globalConfig = *cfg
	return nil
}

func loadConfigFile(configPath, fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}
	setDefaultValues(&cfg)
	return &cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override keys that are absent from the file.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.embedding_ttl", 24*time.Hour)

	v.SetDefault("search.provider", "google")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.image_query", DefaultImageQuery)
	_ = v.BindEnv("search.api_key", "SEARCH_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("search.engine_id", "SEARCH_ENGINE_ID", "GOOGLE_CSE_ID")

	v.SetDefault("embedding.provider", "clip")
	v.SetDefault("embedding.base_url", "http://localhost:8000")
	v.SetDefault("embedding.model", "openai/clip-vit-base-patch32")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.dimensions", 512)
	v.SetDefault("embedding.max_text_length", 77)
	v.SetDefault("embedding.timeout", 30*time.Second)

	v.SetDefault("ranking.workers", 4)
	v.SetDefault("ranking.image_fetch_timeout", 10*time.Second)
	v.SetDefault("ranking.max_image_bytes", 5*1024*1024)

	v.SetDefault("upload.max_size", 5*1024*1024)
	v.SetDefault("upload.allowed_extensions", []string{"png", "jpg", "jpeg", "webp"})

	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("cors.allow_methods", "GET,POST,OPTIONS")
	v.SetDefault("cors.allow_headers", "Origin,Content-Type,Accept,Authorization,X-Request-Id")
}

const DefaultImageQuery = "image content"

// setDefaultValues repairs values an operator set to something unusable.
func setDefaultValues(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Search.MaxResults <= 0 || cfg.Search.MaxResults > 10 {
		cfg.Search.MaxResults = 10
	}
	if strings.TrimSpace(cfg.Search.ImageQuery) == "" {
		cfg.Search.ImageQuery = DefaultImageQuery
	}
	if cfg.Embedding.MaxTextLength <= 0 {
		cfg.Embedding.MaxTextLength = 77
	}
	if cfg.Ranking.Workers <= 0 {
		cfg.Ranking.Workers = 1
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = []string{"png", "jpg", "jpeg", "webp"}
	}
	for i, ext := range cfg.Upload.AllowedExtensions {
		cfg.Upload.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
}

// DecodeOptions decodes the provider specific options map into out.
func (c SearchConfig) DecodeOptions(out interface{}) error {
	if len(c.Options) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(c.Options); err != nil {
		return fmt.Errorf("invalid %s search options: %w", c.Provider, err)
	}
	return nil
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func GetConfig() *Config {
	return &globalConfig
}
