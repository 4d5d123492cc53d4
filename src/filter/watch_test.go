package filter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/coffeefreight/src/lint/rules"
)

func TestWatchRebuildsOnChange(t *testing.T) {
	fx := newFixture(t, memoryOptions(), rules.Default(), nil, map[string]string{"a.coffee": "x = 1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan *Result, 8)
	done := make(chan error, 1)
	go func() {
		done <- fx.filter.Watch(ctx, fx.in, fx.out, 20*time.Millisecond, func(res *Result, err error) {
			assert.NoError(t, err)
			results <- res
		})
	}()

	next := func() *Result {
		t.Helper()
		select {
		case res := <-results:
			return res
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for build")
			return nil
		}
	}

	first := next()
	assert.Equal(t, 1, first.Linted)

	require.NoError(t, os.MkdirAll(filepath.Join(fx.in, "sub"), 0o755))
	time.Sleep(100 * time.Millisecond)
	// Rename so the file appears with its full content.
	staged := filepath.Join(filepath.Dir(fx.in), "b.coffee")
	require.NoError(t, os.WriteFile(staged, []byte("y = 2;\n"), 0o644))
	require.NoError(t, os.Rename(staged, filepath.Join(fx.in, "sub", "b.coffee")))

	// Creating the directory and the file may settle as one build or two.
	var res *Result
	for res == nil || res.Linted+res.Cached < 2 {
		res = next()
	}
	assert.Equal(t, 1, res.Findings())
	assert.FileExists(t, filepath.Join(fx.out, "sub", "b.coffeelint.js"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/out", "/a/out"))
	assert.True(t, within("/a/out", "/a/out/x.js"))
	assert.False(t, within("/a/out", "/a/outside"))
}
