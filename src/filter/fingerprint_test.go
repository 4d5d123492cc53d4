package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/coffeefreight/src/config"
	"github.com/sofmeright/coffeefreight/src/report"
)

func mustFingerprint(t *testing.T, opts config.Options, rc config.RuleConfig, names []string, e *report.Emitter) string {
	t.Helper()
	fp, err := fingerprint(opts, rc, names, e)
	require.NoError(t, err)
	return fp
}

func TestFingerprint(t *testing.T) {
	opts := config.DefaultOptions()
	rc := config.RuleConfig{"no_tabs": {"level": "warn"}, "max_line_length": {"value": 100.0}}
	names := []string{"no_tabs:warn"}
	e := &report.Emitter{}
	base := mustFingerprint(t, opts, rc, names, e)

	t.Run("stable", func(t *testing.T) {
		same := config.RuleConfig{"max_line_length": {"value": 100.0}, "no_tabs": {"level": "warn"}}
		assert.Equal(t, base, mustFingerprint(t, opts, same, names, e))
	})

	t.Run("tuning fields excluded", func(t *testing.T) {
		o := opts
		o.Workers = 16
		o.CacheDir = "/elsewhere"
		o.CacheBackend = config.CacheBackendBadger
		assert.Equal(t, base, mustFingerprint(t, o, rc, names, e))
	})

	t.Run("options", func(t *testing.T) {
		o := opts
		o.Log = false
		assert.NotEqual(t, base, mustFingerprint(t, o, rc, names, e))
	})

	t.Run("rule config", func(t *testing.T) {
		changed := config.RuleConfig{"no_tabs": {"level": "error"}}
		assert.NotEqual(t, base, mustFingerprint(t, opts, changed, names, e))
	})

	t.Run("active rules", func(t *testing.T) {
		none := mustFingerprint(t, opts, nil, nil, e)
		assert.NotEqual(t, none, mustFingerprint(t, opts, nil, []string{"no_tabs:error"}, e))
	})

	t.Run("emitter", func(t *testing.T) {
		assert.NotEqual(t, base, mustFingerprint(t, opts, rc, names, &report.Emitter{Escape: report.Escape, EscapeID: "v2"}))
	})
}

func TestCacheKey(t *testing.T) {
	k := cacheKey("fp", "a.coffee", []byte("x = 1"))
	assert.Equal(t, k, cacheKey("fp", "a.coffee", []byte("x = 1")))
	assert.NotEqual(t, k, cacheKey("fp", "b.coffee", []byte("x = 1")))
	assert.NotEqual(t, k, cacheKey("fp", "a.coffee", []byte("x = 2")))
	assert.NotEqual(t, k, cacheKey("fp2", "a.coffee", []byte("x = 1")))
}
