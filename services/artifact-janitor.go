package services

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lung-server/db"
	"lung-server/entities"
)

// ArtifactJanitor removes rendered artifacts that no patient record points
// to, e.g. files left behind by a crash between render and commit.
type ArtifactJanitor struct {
	database db.Database
	dir      string
	interval time.Duration
	grace    time.Duration
}

func NewArtifactJanitor(database db.Database, dir string, interval time.Duration) *ArtifactJanitor {
	return &ArtifactJanitor{
		database: database,
		dir:      dir,
		interval: interval,
		grace:    10 * time.Minute,
	}
}

// Start sweeps every interval until ctx is done.
func (j *ArtifactJanitor) Start(ctx context.Context) {
	if j.interval <= 0 {
		return
	}
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := j.Sweep(ctx); err != nil {
					log.Printf("artifact sweep failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep deletes unreferenced artifacts older than the grace period and
// returns how many were removed.
func (j *ArtifactJanitor) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var paths []string
	err = j.database.GetDB().WithContext(ctx).
		Model(&entities.PatientRecord{}).
		Where("artifact_path IS NOT NULL").
		Pluck("artifact_path", &paths).Error
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[filepath.Clean(p)] = true
	}

	cutoff := time.Now().Add(-j.grace)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, e.Name())
		if referenced[filepath.Clean(path)] {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Error removing orphaned artifact %s: %v", path, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Removed %d orphaned artifacts", removed)
	}
	return removed, nil
}
