package config

import "time"

// Default engine knobs. The edge threshold matches the builder default used
// for persisted graphs; query-time neighbor selection uses its own, lower
// threshold inside the search component.
const (
	DefaultEdgeThreshold = 0.75
	DefaultTopK          = 20
	DefaultMinSupport    = 0.1
	DefaultMinConfidence = 0.4
)

// ApplyDefaults fills every unset field of cfg with its platform default.
// It never overrides a value that is already set.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.CaseTable == "" {
		cfg.Database.CaseTable = "cases"
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "precedex:"
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 15 * time.Minute
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	if cfg.Snapshot.Backend == "" {
		cfg.Snapshot.Backend = "file"
	}
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = "case_graph.json"
	}
	if cfg.Snapshot.Object == "" {
		cfg.Snapshot.Object = "snapshots/case_graph.json"
	}

	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = "precedex_cases"
	}
	if cfg.Milvus.Timeout == 0 {
		cfg.Milvus.Timeout = 10 * time.Second
	}

	if cfg.Engine.EdgeThreshold == 0 {
		cfg.Engine.EdgeThreshold = DefaultEdgeThreshold
	}
	if cfg.Engine.TopK == 0 {
		cfg.Engine.TopK = DefaultTopK
	}
	if cfg.Engine.MinSupport == 0 {
		cfg.Engine.MinSupport = DefaultMinSupport
	}
	if cfg.Engine.MinConfidence == 0 {
		cfg.Engine.MinConfidence = DefaultMinConfidence
	}
	if cfg.Engine.Miner == "" {
		cfg.Engine.Miner = "apriori"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
}
