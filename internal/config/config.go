package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreChromem  = "chromem"
	StorePostgres = "postgres"
)

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Key      string `yaml:"key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

type StoreConfig struct {
	Backend        string `yaml:"backend"`
	Path           string `yaml:"path"`
	PostgresDSN    string `yaml:"postgres_dsn"`
	PostgresKey    string `yaml:"postgres_key"`
	CollectionName string `yaml:"collection_name"`
	VectorSize     int    `yaml:"vector_size"`
	Debug          bool   `yaml:"debug"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	SearchTopK   int `yaml:"search_top_k"`
	AnswerTopK   int `yaml:"answer_top_k"`
	BatchSize    int `yaml:"batch_size"`
}

type ScraperConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	BatchDelay     float64 `yaml:"batch_delay"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SchedulerConfig struct {
	CronSpec string `yaml:"cron_spec"`
}

type Config struct {
	LLM         LLMConfig       `yaml:"llm"`
	EmbedLLM    LLMConfig       `yaml:"embed_llm"`
	Store       StoreConfig     `yaml:"store"`
	RAG         RAGConfig       `yaml:"rag"`
	Scraper     ScraperConfig   `yaml:"scraper"`
	Server      ServerConfig    `yaml:"server"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
	SourcesFile string          `yaml:"sources_file"`
}

// Default returns the baseline configuration. Vector size 384 matches
// all-MiniLM-L6-v2, the reference embedding model.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
		},
		EmbedLLM: LLMConfig{
			Model: "sentence-transformers/all-MiniLM-L6-v2",
		},
		Store: StoreConfig{
			Backend:        StoreChromem,
			Path:           "./chromemdb",
			CollectionName: "codelens_docs",
			VectorSize:     384,
		},
		RAG: RAGConfig{
			ChunkSize:    800,
			ChunkOverlap: 100,
			SearchTopK:   5,
			AnswerTopK:   3,
			BatchSize:    10,
		},
		Scraper: ScraperConfig{
			TimeoutSeconds: 10,
			BatchDelay:     1.0,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Scheduler: SchedulerConfig{
			// daily at 2 AM
			CronSpec: "0 2 * * *",
		},
	}
}

// LoadConfig reads an optional yaml file on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %v", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.Store.VectorSize <= 0 {
		return nil, fmt.Errorf("vector size must be positive, got %d", cfg.Store.VectorSize)
	}
	if cfg.RAG.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", cfg.RAG.ChunkSize)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.LLM.Key, "GROQ_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.EmbedLLM.Provider, "EMBEDDING_PROVIDER")
	setString(&c.EmbedLLM.Key, "EMBEDDING_API_KEY")
	setString(&c.EmbedLLM.BaseURL, "EMBEDDING_BASE_URL")
	setString(&c.EmbedLLM.Model, "EMBEDDING_MODEL")
	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.Path, "STORE_PATH")
	setString(&c.Store.PostgresDSN, "POSTGRES_DSN")
	setString(&c.Store.PostgresKey, "POSTGRES_KEY")
	setString(&c.Store.CollectionName, "COLLECTION_NAME")
	setInt(&c.Store.VectorSize, "VECTOR_SIZE")
	setInt(&c.RAG.ChunkSize, "CHUNK_SIZE")
	setInt(&c.RAG.ChunkOverlap, "CHUNK_OVERLAP")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Scheduler.CronSpec, "UPDATE_CRON")
	setString(&c.SourcesFile, "SOURCES_FILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
