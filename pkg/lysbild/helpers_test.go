package lysbild

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSizes = []SizeClass{
	{Name: "thumb", MaxEdge: 8},
	{Name: "medium", MaxEdge: 16},
	{Name: "full", MaxEdge: 32},
}

// writePNG writes a w×h test image. alpha < 255 produces translucent
// pixels so flattening paths get exercised.
func writePNG(t *testing.T, path string, w int, h int, alpha uint8) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: 0x40, A: alpha})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// backdate pushes a file's mtime into the past so freshly written
// outputs always compare newer.
func backdate(t *testing.T, path string, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	require.NoError(t, os.Chtimes(path, old, old))
}

func touch(path string, ts time.Time) error {
	return os.Chtimes(path, ts, ts)
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return ic.Width, ic.Height
}

func sourceImage(t *testing.T, path string) *SourceImage {
	t.Helper()
	fi, err := os.Stat(path)
	require.NoError(t, err)

	ext := filepath.Ext(path)
	base := filepath.Base(path)
	return &SourceImage{
		Path:    path,
		ID:      base[:len(base)-len(ext)],
		ModTime: fi.ModTime(),
		Size:    fi.Size(),
	}
}
