package config

import "time"

// Client definition sync_client YAML structure
type Client struct {
	Port        string        `mapstructure:"port"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// APIToken guards the local view api, empty disables the guard
	APIToken  string `mapstructure:"api_token"`
	PprofAddr string `mapstructure:"pprof_addr"`

	Session  SessionConfig  `mapstructure:"session"`
	Chat     ServiceConfig  `mapstructure:"chat"`
	Group    ServiceConfig  `mapstructure:"group"`
	Post     ServiceConfig  `mapstructure:"post"`
	Admin    ServiceConfig  `mapstructure:"admin"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SessionConfig definition bearer token source
type SessionConfig struct {
	Token string `mapstructure:"token"`
}

// ServiceConfig definition backend base url
type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// RealtimeConfig definition push channel setting
type RealtimeConfig struct {
	// stomp | redis | nats
	Transport      string        `mapstructure:"transport"`
	ChatWSURL      string        `mapstructure:"chat_ws_url"`
	GroupWSURL     string        `mapstructure:"group_ws_url"`
	NatsURL        string        `mapstructure:"nats_url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	Heartbeat      time.Duration `mapstructure:"heartbeat"`
	QueueSize      int           `mapstructure:"queue_size"`
}

// FeedConfig definition paging and status cache setting
type FeedConfig struct {
	PageSize      int           `mapstructure:"page_size"`
	GroupPageSize int           `mapstructure:"group_page_size"`
	StatusTTL     time.Duration `mapstructure:"status_ttl"`
	// memory | redis
	StatusStore string `mapstructure:"status_store"`
	Workers     int    `mapstructure:"workers"`
	WorkerQueue int    `mapstructure:"worker_queue"`
}

// UploadConfig definition attachment limit
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// RedisConfig definition redis setting, sentinel address from .env
type RedisConfig struct {
	RedisDB int    `mapstructure:"redis_db"`
	Addr    string `mapstructure:"addr"`
}

// default value
const (
	DefaultPageSize       = 10
	DefaultGroupPageSize  = 20
	DefaultStatusTTL      = 30 * time.Second
	DefaultReconnectDelay = 5 * time.Second
	DefaultHeartbeat      = 4 * time.Second
	DefaultQueueSize      = 256
	DefaultMaxUploadBytes = 1000 * 1024 * 1024
	DefaultHTTPTimeout    = 15 * time.Second
)

// Normalize fill zero value with default
func (c *Client) Normalize() {
	if c.Port == "" {
		c.Port = "8090"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Realtime.Transport == "" {
		c.Realtime.Transport = "stomp"
	}
	if c.Realtime.ReconnectDelay <= 0 {
		c.Realtime.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Realtime.Heartbeat <= 0 {
		c.Realtime.Heartbeat = DefaultHeartbeat
	}
	if c.Realtime.QueueSize <= 0 {
		c.Realtime.QueueSize = DefaultQueueSize
	}
	if c.Feed.PageSize <= 0 {
		c.Feed.PageSize = DefaultPageSize
	}
	if c.Feed.GroupPageSize <= 0 {
		c.Feed.GroupPageSize = DefaultGroupPageSize
	}
	if c.Feed.StatusTTL <= 0 {
		c.Feed.StatusTTL = DefaultStatusTTL
	}
	if c.Feed.StatusStore == "" {
		c.Feed.StatusStore = "memory"
	}
	if c.Feed.Workers <= 0 {
		c.Feed.Workers = 4
	}
	if c.Feed.WorkerQueue <= 0 {
		c.Feed.WorkerQueue = 128
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = DefaultMaxUploadBytes
	}
	if c.Admin.BaseURL == "" {
		c.Admin.BaseURL = c.Group.BaseURL
	}
}
