package config

import (
	"strings"

	"github.com/marmos91/dittorpc/server"
)

// ApplyDefaults fills zero-valued fields with sensible defaults, mirroring
// the teacher's layered defaulting strategy: zero values are replaced,
// explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = server.DefaultPort
	}
	if cfg.MaxRequestSize == 0 {
		cfg.MaxRequestSize = server.DefaultMaxRequestSize
	}
	if cfg.MaxResponseSize == 0 {
		cfg.MaxResponseSize = server.DefaultMaxResponseSize
	}
	if cfg.ListenBacklog == 0 {
		cfg.ListenBacklog = server.DefaultListenBacklog
	}
	if cfg.PollBatchSize == 0 {
		cfg.PollBatchSize = server.DefaultPollBatchSize
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = server.DefaultPollTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = server.DefaultIdleTimeout
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// defaultConfig returns a Config with every default applied, used when no
// config file is present.
func defaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ToServerConfig adapts the loaded configuration into a server.Config.
func (c *Config) ToServerConfig() server.Config {
	return server.Config{
		BindAddress:     c.Server.BindAddress,
		Port:            c.Server.Port,
		MaxRequestSize:  c.Server.MaxRequestSize,
		MaxResponseSize: c.Server.MaxResponseSize,
		ListenBacklog:   c.Server.ListenBacklog,
		PollBatchSize:   c.Server.PollBatchSize,
		PollTimeout:     c.Server.PollTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
	}
}
