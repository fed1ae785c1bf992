package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvLocal selects the single-DSN database configuration.
const EnvLocal = "local_environment"

// Config is the full runtime configuration for the memory service. All values
// come from the environment, optionally overlaid by an mnemo-config file.
type Config struct {
	Environment string `mapstructure:"environment"`

	// Database: either a single DSN (local environment) or discrete fields.
	DatabaseURL string `mapstructure:"database_url"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      int    `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`

	// Chat LLM (OpenAI-compatible endpoint).
	LLMModel   string `mapstructure:"llm_model"`
	LLMBaseURL string `mapstructure:"llm_base_url"`
	LLMAPIKey  string `mapstructure:"llm_api_key"`

	// Embedding provider (OpenAI-compatible endpoint, 1024-dim output).
	EmbeddingModel   string `mapstructure:"embedding_model"`
	EmbeddingBaseURL string `mapstructure:"embedding_base_url"`
	EmbeddingAPIKey  string `mapstructure:"embedding_api_key"`

	// Object store. When Bucket is empty, artifacts go to the local
	// filesystem under ArtifactDir.
	ArtifactBucket string `mapstructure:"artifact_bucket"`
	ArtifactDir    string `mapstructure:"artifact_dir"`

	Port string `mapstructure:"port"`
}

// Load reads configuration from the environment and, when present, an
// mnemo-config file in the home directory or CWD. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("mnemo-config")
	v.SetConfigType("json")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetDefault("environment", "")
	v.SetDefault("db_port", 5432)
	v.SetDefault("llm_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("embedding_base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("artifact_dir", "data/artifacts")
	v.SetDefault("port", "6929")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only resolves keys viper already knows about, so every
	// config key must be bound explicitly or defaulted for Unmarshal to see
	// its environment value.
	for _, key := range []string{
		"environment",
		"database_url", "db_host", "db_port", "db_user", "db_password", "db_name",
		"llm_model", "llm_base_url", "llm_api_key",
		"embedding_model", "embedding_base_url", "embedding_api_key",
		"artifact_bucket", "artifact_dir",
		"port",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; only a malformed file is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// ValidateDB checks that the database configuration is complete for the
// selected environment.
func (c *Config) ValidateDB() error {
	if c.Environment == EnvLocal {
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is not set in env")
		}
		return nil
	}
	required := map[string]string{
		"DB_HOST":     c.DBHost,
		"DB_USER":     c.DBUser,
		"DB_PASSWORD": c.DBPassword,
		"DB_NAME":     c.DBName,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is not set in env", name)
		}
	}
	return nil
}

// DSN builds a pgx connection string for the selected environment.
func (c *Config) DSN() string {
	if c.Environment == EnvLocal {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
