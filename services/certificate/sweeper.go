package certificate

import (
	"academy/models"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper removes certificate files that no certificate row points at, along
// with temp files left by interrupted renders.
type Sweeper struct {
	db     *gorm.DB
	dir    string
	minAge time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewSweeper(db *gorm.DB, dir string, minAge time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{db: db, dir: dir, minAge: minAge, log: log, now: time.Now}
}

// Sweep deletes orphaned files older than the minimum age and returns how
// many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var urls []string
	if err := s.db.WithContext(ctx).Model(&models.Certificate{}).Pluck("pdf_url", &urls).Error; err != nil {
		return 0, err
	}
	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		referenced[path.Base(u)] = true
	}

	cutoff := s.now().Add(-s.minAge)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !sweepable(name) || referenced[name] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.log.Warn("could not remove orphaned certificate file", zap.String("file", name), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info("orphaned certificate files removed", zap.Int("count", removed))
	}
	return removed, nil
}

func sweepable(name string) bool {
	if strings.HasPrefix(name, ".certificate-") && strings.HasSuffix(name, ".tmp") {
		return true
	}
	return strings.HasPrefix(name, "certificate-") && strings.HasSuffix(name, ".pdf")
}

// Schedule registers the sweep on a new cron and starts it. The caller stops
// the returned cron on shutdown.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.log.Error("certificate sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	s.log.Info("certificate sweeper started", zap.String("schedule", spec))
	return c, nil
}
