package lysbild

import (
	"fmt"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// An Enricher adds EXIF-derived metadata to manifest records through
// an external exiftool process. The process is shared across workers,
// so extraction is serialized behind a mutex.
type Enricher struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewEnricher starts an exiftool session. It fails when the exiftool
// binary is not installed.
func NewEnricher() (*Enricher, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &Enricher{et: et}, nil
}

func (e *Enricher) Close() {
	e.et.Close()
}

// Enrich fills the optional metadata fields of a record. Tags that
// are missing or unparsable are left empty rather than reported: the
// manifest is still valid without them.
func (e *Enricher) Enrich(r *ImageRecord, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fis := e.et.ExtractMetadata(path)
	if len(fis) == 0 {
		return
	}
	fi := fis[0]
	if fi.Err != nil {
		klog.V(1).Infof("exif extract failed for %s: %v", path, fi.Err)
		return
	}

	if v, err := fi.GetString("Headline"); err == nil {
		r.Title = v
	}
	if v, err := fi.GetString("ImageDescription"); err == nil {
		r.Description = v
	}
	if v, err := fi.GetStrings("Keywords"); err == nil {
		r.Keywords = v
	}
	if ds, err := fi.GetString("DateTimeOriginal"); err == nil {
		if t, err := time.Parse(exifDate, ds); err == nil {
			r.Taken = t.UTC().Format(time.RFC3339)
		} else {
			klog.V(1).Infof("unparsable DateTimeOriginal %q for %s", ds, path)
		}
	}
}
