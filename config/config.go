// Package config 读取 coupling.yml、.env 与 COUPLING_ 环境变量。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/analyzer"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/output"
	"github.com/CodMac/go-treesitter-coupling-analyzer/store"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "coupling.yml"
	EnvPrefix = "COUPLING"
)

type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

type AnalysisConfig struct {
	Language      string   `mapstructure:"language" yaml:"language"`
	Workers       int      `mapstructure:"workers" yaml:"workers"` // 0 表示使用 CPU 数
	NoisePrefixes []string `mapstructure:"noise_prefixes" yaml:"noise_prefixes"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	Path   string `mapstructure:"path" yaml:"path"`
}

type StoreConfig struct {
	Backend   string   `mapstructure:"backend" yaml:"backend"`
	Path      string   `mapstructure:"path" yaml:"path"`
	DSN       string   `mapstructure:"dsn" yaml:"dsn"`
	CacheSize int      `mapstructure:"cache_size" yaml:"cache_size"`
	S3        S3Config `mapstructure:"s3" yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default 未提供配置文件时使用的配置
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{Language: string(model.LangJava), NoisePrefixes: []string{}},
		Output:   OutputConfig{Format: output.FormatJSONL, Path: "coupling.jsonl"},
		Store: StoreConfig{
			Backend:   store.BackendFile,
			Path:      ".coupling",
			CacheSize: 128,
			S3:        S3Config{Region: "us-east-1", Bucket: "coupling-snapshots"},
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("analysis.language", d.Analysis.Language)
	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.noise_prefixes", d.Analysis.NoisePrefixes)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.cache_size", d.Store.CacheSize)
	v.SetDefault("store.s3.endpoint", d.Store.S3.Endpoint)
	v.SetDefault("store.s3.region", d.Store.S3.Region)
	v.SetDefault("store.s3.access_key", d.Store.S3.AccessKey)
	v.SetDefault("store.s3.secret_key", d.Store.S3.SecretKey)
	v.SetDefault("store.s3.bucket", d.Store.S3.Bucket)
	v.SetDefault("store.s3.use_ssl", d.Store.S3.UseSSL)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load 读取配置。path 为空时在工作目录查找 coupling.yml，文件不存在时使用默认值。
// 环境变量 COUPLING_<SECTION>_<KEY> 覆盖文件中的值，如 COUPLING_STORE_BACKEND。
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		} else if err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查枚举型配置项
func (c *Config) Validate() error {
	if _, err := model.FileExtension(model.Language(c.Analysis.Language)); err != nil {
		return fmt.Errorf("analysis.language: %w", err)
	}
	switch c.Output.Format {
	case output.FormatJSONL, output.FormatJSON, output.FormatMermaid:
	default:
		return fmt.Errorf("output.format: unsupported format %q (supported: jsonl, json, mermaid)", c.Output.Format)
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendPostgres, store.BackendS3:
	default:
		return fmt.Errorf("store.backend: unsupported backend %q (supported: file, postgres, s3)", c.Store.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported format %q (supported: text, json)", c.Log.Format)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	return nil
}

func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Language:      model.Language(c.Analysis.Language),
		Workers:       c.Analysis.Workers,
		NoisePrefixes: c.Analysis.NoisePrefixes,
	}
}

func (c *Config) StoreOptions() store.Config {
	s3 := c.Store.S3
	return store.Config{
		Backend:   c.Store.Backend,
		Path:      c.Store.Path,
		DSN:       c.Store.DSN,
		CacheSize: c.Store.CacheSize,
		S3: store.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
		},
	}
}

// WriteDefault 写出默认配置；文件已存在时返回错误
func WriteDefault(path string) error {
	if path == "" {
		path = FileName
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
