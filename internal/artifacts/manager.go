// Package artifacts owns generated audio files from creation to deletion:
// collision-free names under a public directory, a TTL timer per file, and a
// background sweep for anything a restart orphaned.
package artifacts

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const publicPrefix = "/static"

type Manager struct {
	dir     string
	ttl     time.Duration
	sweeper *cron.Cron
}

// NewManager prepares the serving directory and starts the orphan sweeper.
// Per-file deletion timers do not survive a restart, so the sweeper removes
// anything older than twice the TTL once a minute.
func NewManager(dir string, ttl time.Duration) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	m := &Manager{
		dir:     dir,
		ttl:     ttl,
		sweeper: cron.New(),
	}

	if _, err := m.sweeper.AddFunc("* * * * *", m.sweepOrphans); err != nil {
		return nil, fmt.Errorf("failed to schedule artifact sweep: %w", err)
	}
	m.sweeper.Start()

	return m, nil
}

// Close stops the background sweeper. Pending per-file timers keep running;
// their deletions are idempotent.
func (m *Manager) Close() {
	ctx := m.sweeper.Stop()
	<-ctx.Done()
}

// Dir returns the directory artifacts are served from.
func (m *Manager) Dir() string { return m.dir }

// Publish writes audio under a fresh name and schedules its deletion after
// the TTL. The returned path is servable immediately; it is not guaranteed
// to exist once the TTL has elapsed.
func (m *Manager) Publish(data []byte, ext string) (string, error) {
	name := fmt.Sprintf("speech_%s_%s%s", time.Now().Format("20060102_150405"), uuid.NewString(), ext)
	fullPath := filepath.Join(m.dir, name)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	time.AfterFunc(m.ttl, func() {
		m.remove(fullPath)
	})

	return publicPrefix + "/" + name, nil
}

// remove deletes an artifact. A file already gone is a no-op, not an error.
func (m *Manager) remove(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		log.Printf("Deleted audio artifact: %s", path)
	case os.IsNotExist(err):
	default:
		log.Printf("Failed to delete audio artifact %s: %v", path, err)
	}
}

func (m *Manager) sweepOrphans() {
	cutoff := time.Now().Add(-2 * m.ttl)

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		log.Printf("Artifact sweep failed to read %s: %v", m.dir, err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			m.remove(filepath.Join(m.dir, entry.Name()))
		}
	}
}
