package lysbild

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// Process decodes one source image and writes one encoded variant per
// size class, returning the manifest record for the original. Any
// failure covers the whole image: callers count it and move on.
func Process(src *SourceImage, outDir string, sizes []SizeClass, quality int) (*ImageRecord, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	img = flatten(img)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("degenerate dimensions %dx%d", w, h)
	}

	for _, sc := range sizes {
		out := filepath.Join(outDir, sc.Name, src.ID+OutputExt)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}

		nw, nh := scaled(w, h, sc.MaxEdge)
		v := img
		if nw != w || nh != h {
			v = transform.Resize(img, nw, nh, transform.Lanczos)
		}

		if err := saveImage(out, v, imgio.JPEGEncoder(quality)); err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
		klog.V(1).Infof("wrote %s (%dx%d)", out, nw, nh)
	}

	return &ImageRecord{
		ID:          src.ID,
		Orientation: orientation(w, h),
		Width:       w,
		Height:      h,
	}, nil
}

// scaled returns the variant dimensions for a size class: the longest
// edge shrunk to target with the aspect ratio kept, or the native size
// when the image is already at or below target.
func scaled(w int, h int, target int) (int, int) {
	long := w
	if h > w {
		long = h
	}
	if long <= target {
		return w, h
	}

	ratio := float64(target) / float64(long)
	if w >= h {
		return target, scaleEdge(h, ratio)
	}
	return scaleEdge(w, ratio), target
}

func scaleEdge(edge int, ratio float64) int {
	n := int(float64(edge)*ratio + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// orientation is derived from the original dimensions.
func orientation(w int, h int) string {
	switch {
	case w > h:
		return "landscape"
	case h > w:
		return "portrait"
	default:
		return "square"
	}
}

// flatten converts indexed and alpha-carrying pixel formats to opaque
// RGB before resizing. Alpha is dropped outright, not composited
// against a background color.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if n, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := n.NRGBAAt(x, y)
				dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{c.R, c.G, c.B, 0xff})
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 0xff})
		}
	}
	return dst
}

// saveImage publishes an encoded image via a temp file and rename so
// an interrupted run never leaves a truncated variant behind.
func saveImage(path string, img image.Image, enc imgio.Encoder) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("temp: %w", err)
	}

	if err := enc(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
