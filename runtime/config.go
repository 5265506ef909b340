package runtime

import (
	"go.uber.org/zap"

	reactruntime "github.com/wippyai/react-runtime"
)

// Config holds the per-environment options. It is owned and mutated by
// the host application at startup; environments only read it.
type Config struct {
	// ReuseEngines selects shared pooled engines instead of a dedicated
	// engine per unit of work. Reused engines keep their global state
	// between units of work.
	ReuseEngines bool

	// Serializer converts component properties for the init script.
	// Defaults to encoding/json.
	Serializer reactruntime.Serializer

	// PrecompiledScriptPaths names scripts loaded into the engine at
	// resolution time, before any caller script runs.
	PrecompiledScriptPaths []string

	// FS reads precompiled scripts. Defaults to the OS filesystem.
	FS reactruntime.FileSystem

	// Cache memoizes precompiled script payloads across environments.
	// Nil disables caching.
	Cache reactruntime.Cache

	// Hash computes content hashes for cached payloads.
	// Defaults to SHA-256.
	Hash reactruntime.Hasher

	// Logger receives environment lifecycle events. Defaults to nop.
	Logger *zap.Logger
}

func (c *Config) withDefaults() {
	if c.Serializer == nil {
		c.Serializer = JSONSerializer{}
	}
	if c.FS == nil {
		c.FS = OSFileSystem{}
	}
	if c.Hash == nil {
		c.Hash = SHA256Hasher{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}
