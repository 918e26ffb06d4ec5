package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Voice   VoiceConfig   `mapstructure:"voice"`
	Upload  UploadConfig  `mapstructure:"upload"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	DataDir   string `mapstructure:"data_dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

// ChatConfig 聊天交互参数，会话启动时读取一次，中途不可修改
type ChatConfig struct {
	MaxMessageLength     int           `mapstructure:"max_message_length"`
	MaxHistorySize       int           `mapstructure:"max_history_size"`
	TypingIndicatorDelay time.Duration `mapstructure:"typing_indicator_delay"`
	CalculatingDelay     time.Duration `mapstructure:"calculating_delay"`
}

// VoiceConfig 语音会话参数
type VoiceConfig struct {
	WarmupDelay          time.Duration `mapstructure:"warmup_delay"`
	RestartGraceDelay    time.Duration `mapstructure:"restart_grace_delay"`
	ErrorClearDelay      time.Duration `mapstructure:"error_clear_delay"`
	PermissionClearDelay time.Duration `mapstructure:"permission_clear_delay"`
	SpeakLeadDelay       time.Duration `mapstructure:"speak_lead_delay"`
	DefaultLanguage      string        `mapstructure:"default_language"`
}

type UploadConfig struct {
	ProcessingDelay time.Duration `mapstructure:"processing_delay"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TAXBUDDY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default 返回内置默认配置，测试和无配置文件场景使用
func Default() *Config {
	c := &Config{}
	c.Server.Port = 3001
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.MaxHeaderBytes = 1 << 20
	c.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	c.CORS.ExposedHeaders = []string{"Content-Length", "Content-Disposition"}
	c.CORS.AllowCredentials = true
	c.CORS.MaxAge = 43200
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Session.TTL = time.Hour
	c.Session.CleanupInterval = 10 * time.Minute
	c.Storage.Type = "memory"
	c.Storage.DataDir = "./data"
	c.Storage.CacheSize = 100
	c.Chat.MaxMessageLength = 10000
	c.Chat.MaxHistorySize = 100
	c.Chat.TypingIndicatorDelay = 1500 * time.Millisecond
	c.Chat.CalculatingDelay = 2 * time.Second
	c.Voice.WarmupDelay = 3 * time.Second
	c.Voice.RestartGraceDelay = 100 * time.Millisecond
	c.Voice.ErrorClearDelay = 5 * time.Second
	c.Voice.PermissionClearDelay = 8 * time.Second
	c.Voice.SpeakLeadDelay = 500 * time.Millisecond
	c.Voice.DefaultLanguage = "en-US"
	c.Upload.ProcessingDelay = time.Second
	return c
}

func setDefaults() {
	d := Default()
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	viper.SetDefault("server.max_header_bytes", d.Server.MaxHeaderBytes)
	viper.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	viper.SetDefault("cors.allowed_methods", d.CORS.AllowedMethods)
	viper.SetDefault("cors.allowed_headers", d.CORS.AllowedHeaders)
	viper.SetDefault("cors.exposed_headers", d.CORS.ExposedHeaders)
	viper.SetDefault("cors.allow_credentials", d.CORS.AllowCredentials)
	viper.SetDefault("cors.max_age", d.CORS.MaxAge)
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("session.ttl", d.Session.TTL)
	viper.SetDefault("session.cleanup_interval", d.Session.CleanupInterval)
	viper.SetDefault("storage.type", d.Storage.Type)
	viper.SetDefault("storage.data_dir", d.Storage.DataDir)
	viper.SetDefault("storage.cache_size", d.Storage.CacheSize)
	viper.SetDefault("chat.max_message_length", d.Chat.MaxMessageLength)
	viper.SetDefault("chat.max_history_size", d.Chat.MaxHistorySize)
	viper.SetDefault("chat.typing_indicator_delay", d.Chat.TypingIndicatorDelay)
	viper.SetDefault("chat.calculating_delay", d.Chat.CalculatingDelay)
	viper.SetDefault("voice.warmup_delay", d.Voice.WarmupDelay)
	viper.SetDefault("voice.restart_grace_delay", d.Voice.RestartGraceDelay)
	viper.SetDefault("voice.error_clear_delay", d.Voice.ErrorClearDelay)
	viper.SetDefault("voice.permission_clear_delay", d.Voice.PermissionClearDelay)
	viper.SetDefault("voice.speak_lead_delay", d.Voice.SpeakLeadDelay)
	viper.SetDefault("voice.default_language", d.Voice.DefaultLanguage)
	viper.SetDefault("upload.processing_delay", d.Upload.ProcessingDelay)
}

func Get() *Config {
	return cfg
}
