package cache

import (
	"os"
	"path/filepath"
	"sync"
)

// DiskCache keeps one downloaded archive per key under its own directory,
// preserving the original file name for the detector's extension hint.
type DiskCache struct {
	sync.RWMutex
	dir string
}

func New(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Has(key string) bool {
	c.RLock()
	defer c.RUnlock()
	return c.getPath(key) != ""
}

func (c *DiskCache) GetPath(key string) string {
	c.RLock()
	defer c.RUnlock()
	return c.getPath(key)
}

func (c *DiskCache) getPath(key string) string {
	entries, err := os.ReadDir(filepath.Join(c.dir, key))
	if err != nil || len(entries) == 0 {
		return ""
	}
	return filepath.Join(c.dir, key, entries[0].Name())
}

func (c *DiskCache) Store(key, src string) (string, error) {
	c.Lock()
	defer c.Unlock()

	dstDir := filepath.Join(c.dir, key)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", err
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (c *DiskCache) Size() (int64, error) {
	c.RLock()
	defer c.RUnlock()

	var total int64
	err := filepath.Walk(c.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

func (c *DiskCache) Clear() error {
	c.Lock()
	defer c.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}
