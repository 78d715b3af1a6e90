// Package version centralizes the versioning of the gateway's logical
// components and derives version-aware cache keys from it. Bumping a
// component version invalidates every cached lookup that depended on the old
// behavior, without touching Redis directly.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the logical parts of the
// gateway whose changes affect cached data. Increment a version before
// deploying a change to that component.
var ComponentVersions = struct {
	// Tools covers the tool schemas and implementations.
	Tools string
	// Lookups covers the response shapes of the read-only collaborator
	// clients (weather, Wikipedia) whose results are cached.
	Lookups string
}{
	Tools:   "v1.0",
	Lookups: "v1.0",
}

// CacheKey creates a consistent, version-aware key for caching collaborator
// lookups: prefix, a hash of the input, and the component versions. Changing
// either version orphans the old entries instead of serving stale shapes.
//
// Example: "weather:current:a1b2c3...:tv1.0_lv1.0"
func CacheKey(prefix, input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	inputHash := hex.EncodeToString(hasher.Sum(nil))

	return fmt.Sprintf("%s:%s:tv%s_lv%s",
		prefix, inputHash, ComponentVersions.Tools, ComponentVersions.Lookups)
}
