package tess

import (
	"os"
	"strconv"
)

// Default cache configuration constants.
const (
	// DefaultMaxSizeMB is the default vertex buffer budget in megabytes.
	DefaultMaxSizeMB = 16
	// bytesPerMB is the number of bytes in a megabyte.
	bytesPerMB = 1024 * 1024
)

// EnvVertexCacheMB names the environment variable that overrides the
// vertex buffer byte budget, in megabytes (fractions allowed). It is
// read once when a Cache is constructed.
const EnvVertexCacheMB = "TESS_VERTEX_CACHE_MB"

// maxSizeFromEnv resolves the initial byte budget. A malformed or
// non-positive override falls back to the default.
func maxSizeFromEnv() int {
	raw := os.Getenv(EnvVertexCacheMB)
	if raw == "" {
		return DefaultMaxSizeMB * bytesPerMB
	}

	mb, err := strconv.ParseFloat(raw, 64)
	if err != nil || mb <= 0 {
		Logger().Debug("ignoring malformed vertex cache size", "value", raw)
		return DefaultMaxSizeMB * bytesPerMB
	}

	Logger().Debug("vertex cache size overridden", "megabytes", mb)
	return int(mb * bytesPerMB)
}
