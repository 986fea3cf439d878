package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"planroom/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Log       logger.Config   `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	AI        AIConfig        `mapstructure:"ai"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     int    `mapstructure:"port"`
	TimeZone string `mapstructure:"timezone"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// WebSocketConfig 連線讀寫相關的限制與心跳設定
type WebSocketConfig struct {
	SendBuffer     int           `mapstructure:"send_buffer"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
}

// AIConfig AI 助手的呼叫參數與准入政策
type AIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	SystemPrompt    string        `mapstructure:"system_prompt"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	WindowSize      int           `mapstructure:"window_size"`
	SpendCeiling    string        `mapstructure:"spend_ceiling"` // 美元，十進位字串
	CostScope       string        `mapstructure:"cost_scope"`    // global | room
	ErrorNotice     string        `mapstructure:"error_notice"`  // system | ai
	TurnTaking      bool          `mapstructure:"turn_taking"`
	LockBackend     string        `mapstructure:"lock_backend"` // local | redis
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LockSettleMargin 是生成結束後寫入用量與廣播回覆所保留的時間
const LockSettleMargin = 10 * time.Second

const DefaultSystemPrompt = "You are a concise planning assistant inside a group chat. " +
	"The conversation is given as a compressed transcript: filler words are removed, " +
	"consecutive lines from one person are merged and |GAP nH| marks n hours of silence. " +
	"Reply in a few short sentences with practical suggestions that move the group's plan forward."

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "planroom")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "planroom")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 240*time.Hour)

	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.pong_wait", 60*time.Second)
	v.SetDefault("websocket.ping_interval", 54*time.Second)
	v.SetDefault("websocket.write_wait", 10*time.Second)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "claude-3-5-haiku-latest")
	v.SetDefault("ai.system_prompt", DefaultSystemPrompt)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_output_tokens", 500)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.window_size", 50)
	v.SetDefault("ai.spend_ceiling", "10.00")
	v.SetDefault("ai.cost_scope", "global")
	v.SetDefault("ai.error_notice", "system")
	v.SetDefault("ai.turn_taking", false)
	v.SetDefault("ai.lock_backend", "local")
	v.SetDefault("ai.lock_ttl", 45*time.Second)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "planroom")
}

// Load 讀取 ./pkg/config/config.yaml（或 ./config、.），
// 找不到設定檔時只使用預設值與環境變數（例如 AI_API_KEY、DB_HOST）。
func Load() (*Config, error) {
	return LoadFrom("./pkg/config", "config")
}

func LoadFrom(path, name string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 檢查列舉型設定值
func (c *Config) Validate() error {
	switch c.AI.CostScope {
	case "global", "room":
	default:
		return fmt.Errorf("invalid ai.cost_scope %q (want global or room)", c.AI.CostScope)
	}
	switch c.AI.ErrorNotice {
	case "system", "ai":
	default:
		return fmt.Errorf("invalid ai.error_notice %q (want system or ai)", c.AI.ErrorNotice)
	}
	switch c.AI.LockBackend {
	case "local", "redis":
	default:
		return fmt.Errorf("invalid ai.lock_backend %q (want local or redis)", c.AI.LockBackend)
	}
	// redis 鎖必須撐過整段生成與結算
	if c.AI.LockBackend == "redis" && c.AI.LockTTL <= c.AI.Timeout+LockSettleMargin {
		return fmt.Errorf("ai.lock_ttl (%s) must exceed ai.timeout (%s) plus %s",
			c.AI.LockTTL, c.AI.Timeout, LockSettleMargin)
	}
	if c.AI.WindowSize <= 0 {
		return fmt.Errorf("ai.window_size must be positive")
	}
	return nil
}
