package lysbild

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStale(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "img.png")
	writePNG(t, srcPath, 4, 4, 255)
	backdate(t, srcPath, time.Hour)
	src := sourceImage(t, srcPath)

	outA := filepath.Join(dir, "out", "thumb", "img.jpg")
	outB := filepath.Join(dir, "out", "full", "img.jpg")
	outputs := []string{outA, outB}

	assert.True(t, Stale(src, outputs, false), "missing outputs")

	writeFile(t, outA, "x")
	assert.True(t, Stale(src, outputs, false), "one output missing")

	writeFile(t, outB, "x")
	assert.False(t, Stale(src, outputs, false), "all outputs newer")

	// source touched after the outputs were written
	now := time.Now()
	require.NoError(t, touch(srcPath, now.Add(time.Minute)))
	src = sourceImage(t, srcPath)
	assert.True(t, Stale(src, outputs, false), "source newer")
}

func TestStaleForce(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "img.png")
	writePNG(t, srcPath, 4, 4, 255)
	backdate(t, srcPath, time.Hour)
	src := sourceImage(t, srcPath)

	out := filepath.Join(dir, "out", "thumb", "img.jpg")
	writeFile(t, out, "x")

	assert.False(t, Stale(src, []string{out}, false))
	assert.True(t, Stale(src, []string{out}, true), "force overrides freshness")
}

func TestStaleEqualTimestamps(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "img.png")
	writePNG(t, srcPath, 4, 4, 255)
	out := filepath.Join(dir, "img.jpg")
	writeFile(t, out, "x")

	ts := time.Now().Add(-time.Hour)
	require.NoError(t, touch(srcPath, ts))
	require.NoError(t, touch(out, ts))
	src := sourceImage(t, srcPath)

	// strictly-newer comparison: equal mtimes count as fresh
	assert.False(t, Stale(src, []string{out}, false))
}
