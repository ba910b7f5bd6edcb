// Package pricing serves the plan catalog, loaded from YAML and optionally reloaded when the file changes.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// Catalog holds the current plan list
type Catalog struct {
	logger *slog.Logger
	path   string
	plans  []Plan
	mu     sync.RWMutex
}

// NewCatalog creates a catalog holding plans
func NewCatalog(plans []Plan, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{plans: clonePlans(plans), logger: logger}
}

// LoadCatalog reads a catalog from a YAML file
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	plans, err := readPlans(path)
	if err != nil {
		return nil, err
	}
	c := NewCatalog(plans, logger)
	c.path = path
	return c, nil
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) ([]Plan, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}
	if err := validatePlans(file.Plans); err != nil {
		return nil, err
	}
	return file.Plans, nil
}

// Plans returns a copy of every plan in catalog order
func (c *Catalog) Plans() []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePlans(c.plans)
}

// Select returns the plan with the given ID
func (c *Catalog) Select(id int) (Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.plans {
		if p.ID == id {
			return clonePlans([]Plan{p})[0], nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %d", ErrPlanNotFound, id)
}

// Reload re-reads the catalog file. An invalid file leaves the current plans in place.
func (c *Catalog) Reload() error {
	if c.path == "" {
		return nil
	}
	plans, err := readPlans(c.path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.plans = plans
	c.mu.Unlock()

	c.logger.Info("plan catalog reloaded", "path", c.path, "plans", len(plans))
	return nil
}

// Watch reloads the catalog whenever its file is written, until ctx is cancelled.
// The directory is watched so editors that replace the file by rename are picked up.
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration) error {
	if c.path == "" {
		return fmt.Errorf("catalog has no backing file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.path, err)
	}

	target := filepath.Clean(c.path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("plan catalog watcher error", "error", err)

		case <-pending:
			pending = nil
			if err := c.Reload(); err != nil {
				c.logger.Warn("plan catalog reload failed, keeping previous plans", "path", c.path, "error", err)
			}
		}
	}
}

func readPlans(path string) ([]Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog: %w", err)
	}
	return Parse(data)
}

func validatePlans(plans []Plan) error {
	if len(plans) == 0 {
		return fmt.Errorf("plan catalog is empty")
	}
	seen := make(map[int]bool, len(plans))
	for i, p := range plans {
		if p.ID <= 0 {
			return fmt.Errorf("plan %d: id must be positive", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("plan %d: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("plan %d: name is required", p.ID)
		}
		if strings.TrimSpace(p.Price) == "" {
			return fmt.Errorf("plan %d: price is required", p.ID)
		}
	}
	return nil
}

func clonePlans(plans []Plan) []Plan {
	out := make([]Plan, len(plans))
	for i, p := range plans {
		p.Features = append([]string{}, p.Features...)
		out[i] = p
	}
	return out
}
