package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	key := CacheKey("weather:current", "oslo|metric")

	assert.Contains(t, key, "weather:current:")
	assert.Contains(t, key, "tv"+ComponentVersions.Tools+"_lv"+ComponentVersions.Lookups)
	assert.NotContains(t, key, "oslo", "raw input must be hashed, not embedded")

	assert.Equal(t, key, CacheKey("weather:current", "oslo|metric"))
	assert.NotEqual(t, key, CacheKey("weather:current", "bergen|metric"))
	assert.NotEqual(t, key, CacheKey("weather:forecast", "oslo|metric"))
}
