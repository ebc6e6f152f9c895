// Package config loads the gateway's process configuration, layering
// defaults, an optional YAML file, and environment variables, in that
// priority order (lowest to highest).
package config

import "time"

// Config is the gateway's top-level process configuration.
type Config struct {
	App     AppConfig     `koanf:"app"`
	HTTP    HTTPConfig    `koanf:"http"`
	Cache   CacheConfig   `koanf:"cache"`
	Tracing TracingConfig `koanf:"tracing"`
	Metrics MetricsConfig `koanf:"metrics"`
	GRPC    GRPCConfig    `koanf:"grpc"`
}

// AppConfig carries process identity used in telemetry resource attributes.
type AppConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"`
}

// HTTPConfig configures the GraphQL HTTP surface.
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	CORS            CORSConfig    `koanf:"cors"`
	GraphiQL        bool          `koanf:"graphiql"`
	MetadataHeaders []string      `koanf:"metadata_headers"`
}

// CORSConfig controls the allowed-origin header the server echoes.
type CORSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	AllowedOrigin string `koanf:"allowed_origin"`
}

// CacheConfig selects and sizes the upstream-response cache backend.
type CacheConfig struct {
	Driver     string        `koanf:"driver"` // "memory" or "redis"
	MaxEntries int           `koanf:"max_entries"`
	Redis      RedisConfig   `koanf:"redis"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Port    int    `koanf:"port"`
	Path    string `koanf:"path"`
}

// GRPCConfig configures the pooled upstream gRPC transport.
type GRPCConfig struct {
	MaxConnsPerEndpoint int           `koanf:"max_conns_per_endpoint"`
	RPCTimeout          time.Duration `koanf:"rpc_timeout"`
}
