// Package config resolves process-level environment configuration: LLM
// provider selection and per-agent model overrides, vector-store
// connection settings, prompt file paths, and database connection
// parameters (spec.md §6 "Configuration").
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the umbrella configuration object returned by LoadFromEnv and
// threaded through application wiring at startup.
type Config struct {
	ActiveProvider string
	Providers      *ProviderRegistry
	Models         *ModelResolver
	Prompts        *PromptRegistry
	VectorStore    VectorStoreConfig
	Database       DatabaseConfig
}

// DatabaseConfig is the Postgres connection configuration shared by
// sessionstore, docstore, and vectorstore.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN builds a libpq-style connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// LoadFromEnv resolves the full configuration from process environment
// variables, following teacher's getEnvOrDefault/Validate idiom.
func LoadFromEnv() (*Config, error) {
	providerName := getEnvOrDefault("LLM_PROVIDER", string(ProviderTypeAnthropic))

	providers := NewProviderRegistry(map[string]*ProviderConfig{
		string(ProviderTypeAnthropic): {
			Type:         ProviderTypeAnthropic,
			DefaultModel: getEnvOrDefault("ANTHROPIC_DEFAULT_MODEL", "claude-sonnet-4-5"),
			APIKeyEnv:    "ANTHROPIC_API_KEY",
		},
	})

	resolver := NewModelResolver(providers, providerName,
		os.Getenv("LLM_FAST_MODEL"), os.Getenv("LLM_MODEL"))

	promptDir := getEnvOrDefault("PROMPT_DIR", "./prompts")
	prompts := NewPromptRegistry(map[string]string{
		"classify":           promptDir + "/classify.txt",
		"extract":            promptDir + "/extract.txt",
		"rewrite":            promptDir + "/rewrite.txt",
		"chain_builder":      promptDir + "/chain_builder.txt",
		"planner":            promptDir + "/planner.txt",
		"database":           promptDir + "/database.txt",
		"vector":             promptDir + "/vector.txt",
		"clinical_extract":   promptDir + "/clinical_extract.txt",
		"clinical_synthesis": promptDir + "/clinical_synthesis.txt",
		"general":            promptDir + "/general.txt",
	})

	dbPort, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid DB_PORT: %w", err)
	}
	db := DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnvOrDefault("DB_USER", "medsync"),
		Password: os.Getenv("DB_PASSWORD"),
		Database: getEnvOrDefault("DB_NAME", "medsync"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}
	if err := db.Validate(); err != nil {
		return nil, err
	}

	dims, err := strconv.Atoi(getEnvOrDefault("VECTOR_STORE_DIMS", "1536"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid VECTOR_STORE_DIMS: %w", err)
	}
	vec := VectorStoreConfig{
		StoreID:        getEnvOrDefault("VECTOR_STORE_ID", "default"),
		ConnectionURL:  os.Getenv("VECTOR_STORE_URL"),
		CredentialPath: os.Getenv("VECTOR_STORE_CREDENTIAL_PATH"),
		CollectionName: getEnvOrDefault("VECTOR_STORE_COLLECTION", "clinical_documents"),
		EmbeddingDims:  dims,
	}

	return &Config{
		ActiveProvider: providerName,
		Providers:      providers,
		Models:         resolver,
		Prompts:        prompts,
		VectorStore:    vec,
		Database:       db,
	}, nil
}

// Validate checks required database configuration is present.
func (c DatabaseConfig) Validate() error {
	if c.Password == "" {
		return fmt.Errorf("%w: DB_PASSWORD", ErrMissingRequiredField)
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
