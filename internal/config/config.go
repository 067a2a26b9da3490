package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Seed   []fruit.Draft
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	FeedBuffer      int
	ShutdownTimeout time.Duration
}

// LogConfig 描述日志级别与输出格式。
type LogConfig struct {
	Level logrus.Level
	JSON  bool
}

// env 对应原始环境变量，由 Load 归一化为 Config。
type env struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	FeedBuffer      int           `envconfig:"FEED_BUFFER" default:"16"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	SeedFruits      string        `envconfig:"SEED_FRUITS"`
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var raw env
	if err := envconfig.Process("", &raw); err != nil {
		return nil, errors.Wrap(err, "process environment")
	}

	addr, err := parseAddr(raw.Port)
	if err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(raw.LogLevel))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid LOG_LEVEL value %q", raw.LogLevel)
	}

	format := strings.ToLower(strings.TrimSpace(raw.LogFormat))
	if format != "text" && format != "json" {
		return nil, errors.Errorf("invalid LOG_FORMAT value %q: want text or json", raw.LogFormat)
	}

	if raw.FeedBuffer < 1 {
		raw.FeedBuffer = 1
	}
	if raw.ShutdownTimeout <= 0 {
		return nil, errors.Errorf("invalid SHUTDOWN_TIMEOUT value %s: must be positive", raw.ShutdownTimeout)
	}

	seed, err := ParseSeed(raw.SeedFruits)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Addr:            addr,
			AllowedOrigins:  raw.CORSOrigins,
			FeedBuffer:      raw.FeedBuffer,
			ShutdownTimeout: raw.ShutdownTimeout,
		},
		Log:  LogConfig{Level: level, JSON: format == "json"},
		Seed: seed,
	}, nil
}

// parseAddr 解析服务器监听地址，支持 "8080"、":8080" 和 "127.0.0.1:8080"。
func parseAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", errors.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// ParseSeed 将 "name:price,name:price" 解析为初始水果，每一项都按接口请求的规则校验。
func ParseSeed(raw string) ([]fruit.Draft, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var drafts []fruit.Draft
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		idx := strings.LastIndex(entry, ":")
		if idx < 0 {
			return nil, errors.Errorf("invalid SEED_FRUITS entry %q: want name:price", entry)
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(entry[idx+1:]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid SEED_FRUITS price in %q", entry)
		}

		draft := fruit.Draft{Name: strings.TrimSpace(entry[:idx]), Price: price}
		if err := draft.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid SEED_FRUITS entry %q", entry)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}
