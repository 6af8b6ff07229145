package scenarios

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/tsgen/internal/domain"
)

type Repository interface {
	List() ([]*domain.Scenario, error)
	Get(id string) (*domain.Scenario, error)
	GetByPath(path string) (*domain.Scenario, error)
}

type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

// List skips files that fail to parse.
func (r *FileRepository) List() ([]*domain.Scenario, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.Scenario{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	scenarios := make([]*domain.Scenario, 0)
	for _, entry := range entries {
		if entry.IsDir() || !isScenarioFile(entry.Name()) {
			continue
		}

		path := filepath.Join(r.baseDir, entry.Name())
		scenario, err := r.loadScenario(path)
		if err != nil {
			continue
		}
		scenarios = append(scenarios, scenario)
	}

	return scenarios, nil
}

func (r *FileRepository) Get(id string) (*domain.Scenario, error) {
	scenarios, err := r.List()
	if err != nil {
		return nil, err
	}

	for _, s := range scenarios {
		if s.ID == id || s.Name == id {
			return s, nil
		}
	}

	return nil, fmt.Errorf("scenario not found: %s", id)
}

// GetByPath loads a scenario file relative to the base directory. Paths
// resolving outside of it are rejected.
func (r *FileRepository) GetByPath(path string) (*domain.Scenario, error) {
	resolved, err := r.resolve(path)
	if err != nil {
		return nil, err
	}
	return r.loadScenario(resolved)
}

func (r *FileRepository) resolve(path string) (string, error) {
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", err
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("scenario path escapes scenarios directory: %s", path)
	}
	return target, nil
}

func (r *FileRepository) loadScenario(path string) (*domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario domain.Scenario
	ext := filepath.Ext(path)

	if ext == ".json" {
		err = json.Unmarshal(data, &scenario)
	} else {
		err = yaml.Unmarshal(data, &scenario)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if scenario.ID == "" {
		scenario.ID = strings.TrimSuffix(filepath.Base(path), ext)
	}

	return &scenario, nil
}

func isScenarioFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
