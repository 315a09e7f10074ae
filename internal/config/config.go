package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             int              `json:"port"`
	LogConfig        logger.LogConfig `json:"log_config"`
	Upload           UploadConfig     `json:"upload"`
	FileStore        FileStoreConfig  `json:"file_store"`
	AI               AIConfig         `json:"ai"`
	Session          SessionConfig    `json:"session"`
	Budget           BudgetConfig     `json:"budget"`
	Render           RenderConfig     `json:"render"`
	CORSOrigins      []string         `json:"cors_origins"`
	RateLimitSeconds int              `json:"rate_limit_seconds"`
}

type UploadConfig struct {
	Dir         string `json:"dir"`
	MaxFileSize int64  `json:"max_file_size"`
	MaxFiles    int    `json:"max_files"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Timeout  int         `json:"timeout"`
	Data     interface{} `json:"data"`
}

type SessionConfig struct {
	MaxAgeMinutes int    `json:"max_age_minutes"`
	SweepSpec     string `json:"sweep_spec"`
	MaxSessions   int    `json:"max_sessions"`
}

type BudgetConfig struct {
	CharsPerToken      int `json:"chars_per_token"`
	ImageTokensPerPage int `json:"image_tokens_per_page"`
	SoftLimit          int `json:"soft_limit"`
	HardLimit          int `json:"hard_limit"`
	PromptOverhead     int `json:"prompt_overhead"`
}

type RenderConfig struct {
	ThumbnailDPI    int `json:"thumbnail_dpi"`
	PromptDPI       int `json:"prompt_dpi"`
	CacheSize       int `json:"cache_size"`
	CacheTTLMinutes int `json:"cache_ttl_minutes"`
}

func DefaultBudget() BudgetConfig {
	return BudgetConfig{
		CharsPerToken:      4,
		ImageTokensPerPage: 258,
		SoftLimit:          800000,
		HardLimit:          1000000,
		PromptOverhead:     500,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a config document. YAML input is normalized to JSON first so a
// single set of json tags drives both formats.
func Parse(data []byte, ext string) (*Config, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml config: %w", err)
		}
		converted, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("convert yaml config: %w", err)
		}
		data = converted
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "./storage/uploads"
	}
	if cfg.Upload.MaxFileSize <= 0 {
		cfg.Upload.MaxFileSize = 64 * 1024 * 1024
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Type == "local" && cfg.FileStore.Data == nil {
		cfg.FileStore.Data = map[string]interface{}{"dir": "./storage/generated"}
	}
	switch cfg.FileStore.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("file_store.type must be local or s3")
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-flash-latest"
	}
	if cfg.Session.MaxAgeMinutes <= 0 {
		cfg.Session.MaxAgeMinutes = 120
	}
	if cfg.Session.SweepSpec == "" {
		cfg.Session.SweepSpec = "*/10 * * * *"
	}
	def := DefaultBudget()
	if cfg.Budget.CharsPerToken <= 0 {
		cfg.Budget.CharsPerToken = def.CharsPerToken
	}
	if cfg.Budget.ImageTokensPerPage <= 0 {
		cfg.Budget.ImageTokensPerPage = def.ImageTokensPerPage
	}
	if cfg.Budget.SoftLimit <= 0 {
		cfg.Budget.SoftLimit = def.SoftLimit
	}
	if cfg.Budget.HardLimit <= 0 {
		cfg.Budget.HardLimit = def.HardLimit
	}
	if cfg.Budget.PromptOverhead <= 0 {
		cfg.Budget.PromptOverhead = def.PromptOverhead
	}
	if cfg.Render.ThumbnailDPI <= 0 {
		cfg.Render.ThumbnailDPI = 144
	}
	if cfg.Render.PromptDPI <= 0 {
		cfg.Render.PromptDPI = 72
	}
	if cfg.Render.CacheSize <= 0 {
		cfg.Render.CacheSize = 512
	}
	if cfg.Render.CacheTTLMinutes <= 0 {
		cfg.Render.CacheTTLMinutes = 30
	}
	return nil
}
