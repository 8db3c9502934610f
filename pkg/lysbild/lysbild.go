// Package lysbild builds the static assets behind a photography
// portfolio: resized JPEG variants of every source image, a JSON
// manifest per gallery, and the gallery entries of the shared site
// configuration document. All state lives on the filesystem.
package lysbild

import (
	"path/filepath"
	"time"
)

// OutputExt is the extension of every encoded output variant.
const OutputExt = ".jpg"

// ManifestName is the per-gallery manifest filename.
const ManifestName = "manifest.json"

// DefaultQuality is the JPEG quality applied to every size class.
const DefaultQuality = 85

// A SizeClass is one output resolution tier. MaxEdge is the target
// length of the longest edge in pixels; images are never upscaled to
// reach it.
type SizeClass struct {
	Name    string
	MaxEdge int
}

// DefaultSizes match the tiers the viewer requests: mobile gallery,
// tablet/desktop gallery, and lightbox.
var DefaultSizes = []SizeClass{
	{Name: "thumb", MaxEdge: 400},
	{Name: "medium", MaxEdge: 800},
	{Name: "full", MaxEdge: 1600},
}

// Config holds configuration for a build run.
type Config struct {
	// SourceDir is scanned for one subdirectory per gallery.
	SourceDir string
	// OutDir receives one subtree per gallery.
	OutDir string
	// SiteConfig is the shared site configuration document to merge
	// gallery entries into. Empty disables the merge.
	SiteConfig string
	// StaticDir is an optional viewer asset tree copied into OutDir.
	StaticDir string

	Sizes   []SizeClass
	Quality int

	// Jobs is the worker pool size. 0 uses all available CPUs.
	Jobs int
	// Force reprocesses every image regardless of freshness.
	Force bool
	// EXIF enriches manifest records via exiftool.
	EXIF bool
}

func (c *Config) sizes() []SizeClass {
	if len(c.Sizes) == 0 {
		return DefaultSizes
	}
	return c.Sizes
}

func (c *Config) quality() int {
	if c.Quality == 0 {
		return DefaultQuality
	}
	return c.Quality
}

// A Gallery maps one source directory to one output subtree.
type Gallery struct {
	Name   string
	InDir  string
	OutDir string

	Images []*SourceImage
}

// A SourceImage is one image file found in a gallery directory. ID is
// the filename stem and joins source files to their output variants.
type SourceImage struct {
	Path    string
	ID      string
	ModTime time.Time
	Size    int64
}

// An ImageRecord is the manifest entry for one processed image.
// Dimensions and orientation describe the original, not any variant.
// The optional fields are only set when EXIF enrichment is on.
type ImageRecord struct {
	ID          string `json:"id"`
	Orientation string `json:"orientation"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`

	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Taken       string   `json:"taken,omitempty"`
}

// A Manifest is the per-gallery document the viewer consumes.
type Manifest struct {
	Images    []ImageRecord  `json:"images"`
	Generated string         `json:"generated"`
	Sizes     map[string]int `json:"sizes"`
}

// VariantPaths returns the expected output file for every size class
// of one image id.
func VariantPaths(outDir string, id string, sizes []SizeClass) []string {
	ps := make([]string, 0, len(sizes))
	for _, sc := range sizes {
		ps = append(ps, filepath.Join(outDir, sc.Name, id+OutputExt))
	}
	return ps
}
