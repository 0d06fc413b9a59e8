package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileChart is a chart materialised as one file in the output directory.
// Releasing it removes the file.
type fileChart struct {
	path     string
	once     sync.Once
	released error
}

func (c *fileChart) Release() error {
	c.once.Do(func() {
		if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
			c.released = fmt.Errorf("release %s: %w", c.path, err)
		}
	})
	return c.released
}

// -----------------------------------------------------------------------------

// writeAtomic replaces path with data so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
