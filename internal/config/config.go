package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`

	// Registry controls the per-kind job registries.
	Registry struct {
		TTLSeconds   int `mapstructure:"ttl_seconds"`
		Capacity     int `mapstructure:"capacity"`
		SweepSeconds int `mapstructure:"sweep_seconds"`
	} `mapstructure:"registry"`

	LLM struct {
		Provider       string `mapstructure:"provider"` // "openai" or "gemini"
		Model          string `mapstructure:"model"`
		EmbeddingModel string `mapstructure:"embedding_model"`
		OpenAIAPIKey   string `mapstructure:"openai_api_key"`
		GoogleAPIKey   string `mapstructure:"google_api_key"`
	} `mapstructure:"llm"`

	Vector struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"vector"`

	Ask struct {
		TopK          int `mapstructure:"top_k"`
		MaxCandidates int `mapstructure:"max_candidates"`
	} `mapstructure:"ask"`

	Indexing struct {
		EmbedBatchSize int `mapstructure:"embed_batch_size"`
	} `mapstructure:"indexing"`
}

func (c *Config) RegistryTTL() time.Duration {
	return time.Duration(c.Registry.TTLSeconds) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Registry.SweepSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("server.addr", "localhost")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("registry.ttl_seconds", 120)
	viper.SetDefault("registry.capacity", 10000)
	viper.SetDefault("registry.sweep_seconds", 30)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("ask.top_k", 10)
	viper.SetDefault("ask.max_candidates", 3)
	viper.SetDefault("indexing.embed_batch_size", 64)

	viper.AutomaticEnv()
	viper.BindEnv("llm.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("llm.google_api_key", "GEMINI_API_KEY")
	viper.BindEnv("vector.dsn", "VECTOR_DSN")

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
