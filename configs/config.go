package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server HTTP服务配置
type Server struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug/release/test
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Database 数据库配置
type Database struct {
	Driver       string `mapstructure:"driver"` // postgres/mysql/sqlite
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// JWT 令牌配置
type JWT struct {
	Secret    string `mapstructure:"secret"`
	ExpiresIn int    `mapstructure:"expires_in"` // 过期时间（小时）
}

// AI 补全服务配置
type AI struct {
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	Model            string        `mapstructure:"model"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Temperature      float64       `mapstructure:"temperature"`
	PresencePenalty  float64       `mapstructure:"presence_penalty"`
	FrequencyPenalty float64       `mapstructure:"frequency_penalty"`
	Timeout          time.Duration `mapstructure:"timeout"`
	HistoryWindow    int           `mapstructure:"history_window"`   // 提示词使用的历史消息条数
	RetrievalWindow  int           `mapstructure:"retrieval_window"` // 检索使用的历史消息条数
}

// Retrieval 检索配置
type Retrieval struct {
	ContextMode  string `mapstructure:"context_mode"` // keyword/none
	Limit        int    `mapstructure:"limit"`
	PublicOnly   bool   `mapstructure:"public_only"`
	HistoryTopUp bool   `mapstructure:"history_top_up"`
}

// Queue 延迟任务队列配置
type Queue struct {
	Driver    string `mapstructure:"driver"` // memory/redis
	Workers   int    `mapstructure:"workers"`
	Buffer    int    `mapstructure:"buffer"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisKey  string `mapstructure:"redis_key"`
}

// Storage 文件存储配置
type Storage struct {
	Driver          string        `mapstructure:"driver"` // local/gcs
	LocalDir        string        `mapstructure:"local_dir"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	GCSBucket       string        `mapstructure:"gcs_bucket"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	SignedURLTTL    time.Duration `mapstructure:"signed_url_ttl"`
	URLCacheSize    int           `mapstructure:"url_cache_size"`
	URLCacheTTL     time.Duration `mapstructure:"url_cache_ttl"`
}

// Filter 内容过滤配置
type Filter struct {
	SensitiveWords []string `mapstructure:"sensitive_words"`
	Patterns       []string `mapstructure:"patterns"`
}

// Log 日志配置
type Log struct {
	Mode string `mapstructure:"mode"` // development/production
}

type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	JWT       JWT       `mapstructure:"jwt"`
	AI        AI        `mapstructure:"ai"`
	Retrieval Retrieval `mapstructure:"retrieval"`
	Queue     Queue     `mapstructure:"queue"`
	Storage   Storage   `mapstructure:"storage"`
	Filter    Filter    `mapstructure:"filter"`
	Log       Log       `mapstructure:"log"`
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "cofounder.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expires_in", 72)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 600)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.presence_penalty", 0.1)
	v.SetDefault("ai.frequency_penalty", 0.1)
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.history_window", 8)
	v.SetDefault("ai.retrieval_window", 5)

	v.SetDefault("retrieval.context_mode", "keyword")
	v.SetDefault("retrieval.limit", 5)
	v.SetDefault("retrieval.public_only", true)
	v.SetDefault("retrieval.history_top_up", false)

	v.SetDefault("queue.driver", "memory")
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.buffer", 256)
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_key", "cofounder:tasks")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("storage.public_base_url", "http://localhost:8080")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.credentials_file", "")
	v.SetDefault("storage.signed_url_ttl", 15*time.Minute)
	v.SetDefault("storage.url_cache_size", 1000)
	v.SetDefault("storage.url_cache_ttl", 10*time.Minute)

	v.SetDefault("log.mode", "development")
}

// Load 加载配置，path 为空时在 ./configs 和 . 下查找 config.yaml
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 环境变量覆盖，例如 COFOUNDER_JWT_SECRET
	v.SetEnvPrefix("COFOUNDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.Queue.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported queue driver: %s", c.Queue.Driver)
	}
	switch c.Storage.Driver {
	case "local", "gcs":
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}
	switch c.Retrieval.ContextMode {
	case "keyword", "none":
	default:
		return fmt.Errorf("unsupported retrieval context mode: %s", c.Retrieval.ContextMode)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	return nil
}
