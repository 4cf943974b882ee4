// Package config defines all configuration structures for Precedex.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the case store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	CaseTable       string        `mapstructure:"case_table"`
}

// RedisConfig holds parameters for the recommendation-payload cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SnapshotConfig selects where graph snapshots are persisted.
type SnapshotConfig struct {
	// Backend is "file" or "minio".
	Backend string `mapstructure:"backend"`
	// Path is the local artifact path when Backend is "file".
	Path string `mapstructure:"path"`
	// Object is the object key when Backend is "minio".
	Object string `mapstructure:"object"`
}

// MinIOConfig holds S3-compatible object-storage parameters for snapshots.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MilvusConfig holds the optional approximate-neighbor index parameters.
// When Enabled is false the engine uses the exact in-memory index.
type MilvusConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Collection   string        `mapstructure:"collection"`
	EmbeddingDim int           `mapstructure:"embedding_dim"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// EngineConfig holds the recommendation-engine knobs from the core contract:
// graph edge threshold, search top-k, and rule-mining thresholds.
type EngineConfig struct {
	// EdgeThreshold is the cosine-similarity floor for SIMILAR_TO edges.
	EdgeThreshold float64 `mapstructure:"edge_threshold"`
	// TopK is the default number of similar cases per query.
	TopK int `mapstructure:"top_k"`
	// MinSupport is the frequent-itemset support floor; lowered dynamically
	// when favorable outcomes are rare.
	MinSupport float64 `mapstructure:"min_support"`
	// MinConfidence is the association-rule confidence floor.
	MinConfidence float64 `mapstructure:"min_confidence"`
	// Miner selects the rule-mining strategy: "apriori" | "cooccurrence".
	Miner string `mapstructure:"miner"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Config is the root configuration structure for the whole service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Milvus   MilvusConfig   `mapstructure:"milvus"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// Any error is fatal; callers should refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}

	switch c.Snapshot.Backend {
	case "file":
		if c.Snapshot.Path == "" {
			return fmt.Errorf("config: snapshot.path is required for the file backend")
		}
	case "minio":
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required for the minio backend")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required for the minio backend")
		}
	default:
		return fmt.Errorf("config: snapshot.backend %q is invalid; expected file|minio", c.Snapshot.Backend)
	}

	if c.Milvus.Enabled {
		if c.Milvus.Addr == "" {
			return fmt.Errorf("config: milvus.addr is required when milvus is enabled")
		}
		if c.Milvus.EmbeddingDim < 1 {
			return fmt.Errorf("config: milvus.embedding_dim must be ≥ 1, got %d", c.Milvus.EmbeddingDim)
		}
	}

	if c.Engine.EdgeThreshold <= 0 || c.Engine.EdgeThreshold > 1 {
		return fmt.Errorf("config: engine.edge_threshold %v is out of range (0, 1]", c.Engine.EdgeThreshold)
	}
	if c.Engine.TopK < 1 {
		return fmt.Errorf("config: engine.top_k must be ≥ 1, got %d", c.Engine.TopK)
	}
	if c.Engine.MinSupport <= 0 || c.Engine.MinSupport > 1 {
		return fmt.Errorf("config: engine.min_support %v is out of range (0, 1]", c.Engine.MinSupport)
	}
	if c.Engine.MinConfidence <= 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("config: engine.min_confidence %v is out of range (0, 1]", c.Engine.MinConfidence)
	}
	switch c.Engine.Miner {
	case "apriori", "cooccurrence":
	default:
		return fmt.Errorf("config: engine.miner %q is invalid; expected apriori|cooccurrence", c.Engine.Miner)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
