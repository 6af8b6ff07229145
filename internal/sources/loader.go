package sources

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mmrzaf/tsgen/internal/domain"
)

// DirLoader loads CSV sources by file name from a base directory and caches
// them. Concurrent requests for the same source share one read.
type DirLoader struct {
	baseDir string

	mu    sync.RWMutex
	cache map[string]*domain.AggregatedSource
	group singleflight.Group
}

func NewDirLoader(baseDir string) *DirLoader {
	return &DirLoader{
		baseDir: baseDir,
		cache:   make(map[string]*domain.AggregatedSource),
	}
}

// Load returns the source stored under name. Names may not leave the base directory.
func (l *DirLoader) Load(name string, opts CSVOptions) (*domain.AggregatedSource, error) {
	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	key := cacheKey(path, opts)

	l.mu.RLock()
	src, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return src, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		src, err := LoadCSVFile(path, opts)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = src
		l.mu.Unlock()
		return src, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.AggregatedSource), nil
}

func (l *DirLoader) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("source name is required")
	}
	base, err := filepath.Abs(l.baseDir)
	if err != nil {
		return "", err
	}
	target := name
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("source path escapes sources directory: %s", name)
	}
	return target, nil
}

func cacheKey(path string, opts CSVOptions) string {
	return strings.Join([]string{
		path,
		opts.DateField,
		string(opts.Freq),
		strings.Join(opts.Index, ","),
		strings.Join(opts.Columns, ","),
	}, "|")
}
