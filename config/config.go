package config

import (
	"fmt"
	"os"
	"time"

	pkgconfig "sitechat/pkg/config"
)

type NotesConfig struct {
	Backend  string        `yaml:"backend"` // file / postgres
	Dir      string        `yaml:"dir"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

type ReportConfig struct {
	Dir string `yaml:"dir"`
}

type StaticConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server pkgconfig.ServerConfig `yaml:"server"`
	Log    LogConfig              `yaml:"log"`
	Redis  pkgconfig.RedisConfig  `yaml:"redis"`
	DB     pkgconfig.DBConfig     `yaml:"db"`
	MQ     pkgconfig.MQConfig     `yaml:"mq"`
	JWT    pkgconfig.JWTConfig    `yaml:"jwt"`
	Notes  NotesConfig            `yaml:"notes"`
	Report ReportConfig           `yaml:"report"`
	Static StaticConfig           `yaml:"static"`
}

// Load reads config/base.yaml plus the CONFIG_ENV overlay, then applies
// environment overrides.
func Load() (*Config, error) {
	return LoadFrom(pkgconfig.GetConfigEnv(), pkgconfig.GetEnv("CONFIG_DIR", "config"))
}

func LoadFrom(env, dir string) (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(env, dir, &cfg); err != nil {
		return nil, err
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Notes.Backend != "file" && cfg.Notes.Backend != "postgres" {
		return nil, fmt.Errorf("unknown notes backend %q", cfg.Notes.Backend)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required (set JWT_SECRET)")
	}
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if backend := os.Getenv("NOTES_BACKEND"); backend != "" {
		cfg.Notes.Backend = backend
	}
	if dir := os.Getenv("NOTES_DIR"); dir != "" {
		cfg.Notes.Dir = dir
	}
	if dir := os.Getenv("REPORTS_DIR"); dir != "" {
		cfg.Report.Dir = dir
	}
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.Static.Dir = dir
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":5000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Notes.Backend == "" {
		cfg.Notes.Backend = "file"
	}
	if cfg.Notes.Dir == "" {
		cfg.Notes.Dir = "data/notes"
	}
	if cfg.Notes.DedupTTL == 0 {
		cfg.Notes.DedupTTL = 10 * time.Second
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 24 * time.Hour
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "reports"
	}
	if cfg.Static.Dir == "" {
		cfg.Static.Dir = "static"
	}
}
