package lysbild

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// A Summary aggregates the outcome of one build run. It is built by
// folding over per-image results, never by shared counters.
type Summary struct {
	Processed int
	Skipped   int
	Errors    int

	SourceBytes int64
	OutputBytes int64

	RemovedImages    int
	RemovedGalleries []string
}

// Build runs the full pipeline: discover galleries, sync the site
// configuration, process each gallery in turn, and reconcile orphaned
// gallery directories. Setup failures abort the run; per-image
// failures are tallied in the summary and the run continues.
func Build(c *Config) (*Summary, error) {
	klog.Infof("build: %s -> %s", c.SourceDir, c.OutDir)

	galleries, err := Discover(c.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	klog.Infof("found %d galleries in %s", len(galleries), c.SourceDir)

	// static assets live under "_" so they never collide with a
	// gallery name or get reaped as orphans
	if c.StaticDir != "" {
		if err := copy.Copy(c.StaticDir, filepath.Join(c.OutDir, "_")); err != nil {
			return nil, fmt.Errorf("copy static assets: %w", err)
		}
	}

	if c.SiteConfig != "" {
		if _, err := os.Stat(c.SiteConfig); err == nil {
			if err := SyncSiteConfig(c.SiteConfig, galleries); err != nil {
				return nil, fmt.Errorf("sync site config: %w", err)
			}
			klog.Infof("updated %s with %d galleries", c.SiteConfig, len(galleries))
		} else {
			klog.Warningf("site config %s not found, skipping sync", c.SiteConfig)
		}
	}

	var en *Enricher
	if c.EXIF {
		en, err = NewEnricher()
		if err != nil {
			klog.Warningf("exif enrichment unavailable: %v", err)
		} else {
			defer en.Close()
		}
	}

	sum := &Summary{}
	for _, name := range galleries {
		g := &Gallery{
			Name:   name,
			InDir:  filepath.Join(c.SourceDir, name),
			OutDir: filepath.Join(c.OutDir, name),
		}
		if err := buildGallery(c, g, en, sum); err != nil {
			return nil, fmt.Errorf("gallery %s: %w", name, err)
		}
	}

	valid := map[string]bool{}
	for _, name := range galleries {
		valid[name] = true
	}
	sum.RemovedGalleries = CleanOrphanGalleries(c.OutDir, valid)

	return sum, nil
}

// buildGallery runs one gallery: enumerate sources, gate, fan out
// across the pool, collect, reconcile orphans, and publish the
// manifest once every job has drained.
func buildGallery(c *Config, g *Gallery, en *Enricher, sum *Summary) error {
	srcs, err := Sources(g.InDir)
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	g.Images = srcs
	klog.Infof("[%s] %d source images", g.Name, len(srcs))

	sizes := c.sizes()
	for _, sc := range sizes {
		if err := os.MkdirAll(filepath.Join(g.OutDir, sc.Name), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}

	prev, err := ReadManifest(g.OutDir)
	if err != nil {
		klog.Warningf("[%s] unreadable manifest, records will be rebuilt: %v", g.Name, err)
		prev = &Manifest{}
	}
	prevRecords := map[string]ImageRecord{}
	for _, r := range prev.Images {
		prevRecords[r.ID] = r
	}

	jobs := make([]Job, 0, len(srcs))
	for _, src := range srcs {
		src := src
		jobs = append(jobs, func() Result {
			if !Stale(src, VariantPaths(g.OutDir, src.ID, sizes), c.Force) {
				return Result{Source: src, Outcome: Skipped}
			}
			rec, err := Process(src, g.OutDir, sizes, c.quality())
			if err != nil {
				return Result{Source: src, Outcome: Failed, Err: err}
			}
			if en != nil {
				en.Enrich(rec, src.Path)
			}
			return Result{Source: src, Outcome: Processed, Record: rec}
		})
	}

	records := []ImageRecord{}
	for res := range RunPool(jobs, c.Jobs) {
		switch res.Outcome {
		case Processed:
			klog.Infof("[%s] processed %s", g.Name, res.Source.ID)
			sum.Processed++
			records = append(records, *res.Record)
		case Skipped:
			klog.V(1).Infof("[%s] %s unchanged", g.Name, res.Source.ID)
			sum.Skipped++
			if r, ok := prevRecords[res.Source.ID]; ok {
				records = append(records, r)
			}
		case Failed:
			klog.Errorf("[%s] %s: %v", g.Name, res.Source.ID, res.Err)
			sum.Errors++
		}
	}

	valid := map[string]bool{}
	for _, src := range srcs {
		valid[src.ID] = true
		sum.SourceBytes += src.Size
	}

	if removed := CleanOrphans(g.OutDir, sizes, valid); removed > 0 {
		klog.Infof("[%s] removed %d orphaned image(s)", g.Name, removed)
		sum.RemovedImages += removed
	}

	if err := WriteManifest(g.OutDir, records, sizes); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	sum.OutputBytes += outputBytes(g.OutDir, sizes)
	return nil
}

// outputBytes totals the encoded variants of one gallery for the
// savings report.
func outputBytes(outDir string, sizes []SizeClass) int64 {
	var n int64
	for _, sc := range sizes {
		dir := filepath.Join(outDir, sc.Name)
		des, err := godirwalk.ReadDirents(dir, nil)
		if err != nil {
			continue
		}
		for _, de := range des {
			if de.IsDir() {
				continue
			}
			fi, err := os.Stat(filepath.Join(dir, de.Name()))
			if err != nil {
				continue
			}
			n += fi.Size()
		}
	}
	return n
}
