package streamer

import (
	"fmt"
	"time"

	"github.com/crateful/unbox/internal/domain"
)

// collector accumulates entries while enforcing the result invariants:
// normalized slash paths, unique paths, directories with a trailing slash
// and size 0. Duplicates are dropped with a warning instead of failing the
// whole archive.
type collector struct {
	seen     map[string]struct{}
	entries  []domain.Entry
	warnings []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

func (c *collector) addDir(path string, modTime time.Time) {
	c.add(domain.Entry{
		Path:    domain.NormalizeEntryPath(path, true),
		IsDir:   true,
		ModTime: modTime,
	})
}

func (c *collector) addFile(path string, payload []byte, modTime time.Time) {
	c.add(domain.Entry{
		Path:    domain.NormalizeEntryPath(path, false),
		Size:    int64(len(payload)),
		ModTime: modTime,
		Data:    payload,
	})
}

func (c *collector) add(e domain.Entry) {
	if e.Path == "" {
		return
	}
	if _, ok := c.seen[e.Path]; ok {
		c.warnings = append(c.warnings, fmt.Sprintf("duplicate entry %s skipped", e.Path))
		return
	}
	c.seen[e.Path] = struct{}{}
	c.entries = append(c.entries, e)
}

func (c *collector) attempt(encrypted bool) *domain.Attempt {
	return &domain.Attempt{
		Entries:   c.entries,
		Encrypted: encrypted,
		Warnings:  c.warnings,
		Cleanup:   func() {},
	}
}
