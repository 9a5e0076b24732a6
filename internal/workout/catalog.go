// Package workout loads workout definitions from JSON files and keeps them
// available by id.
package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hperssn/microdesk/internal/domain"
)

var ErrWorkoutNotFound = errors.New("workout not found")

const schemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name", "exercises"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"default_rest_seconds": {"type": "integer", "minimum": 0},
		"exercises": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "duration_seconds"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"duration_seconds": {"type": "integer", "minimum": 1}
				}
			}
		}
	}
}`

var schema = gojsonschema.NewStringLoader(schemaJSON)

// Catalog is a read-mostly set of workouts. Replace swaps the whole set, so
// readers never observe a partial reload.
type Catalog struct {
	mu       sync.RWMutex
	workouts map[string]domain.Workout
	order    []string
}

// NewCatalog builds a catalog from ws. With no workouts it holds the
// built-in set.
func NewCatalog(ws []domain.Workout) *Catalog {
	c := &Catalog{}
	if len(ws) == 0 {
		ws = Fallback()
	}
	c.Replace(ws)
	return c
}

// LoadCatalog loads dir, falling back to the built-in workouts when the
// directory cannot be read or holds no valid definitions.
func LoadCatalog(dir string) (*Catalog, error) {
	ws, err := LoadDir(dir)
	if err != nil {
		return NewCatalog(nil), err
	}
	return NewCatalog(ws), nil
}

func (c *Catalog) Replace(ws []domain.Workout) {
	workouts := make(map[string]domain.Workout, len(ws))
	order := make([]string, 0, len(ws))
	for _, w := range ws {
		if _, dup := workouts[w.ID]; !dup {
			order = append(order, w.ID)
		}
		workouts[w.ID] = w
	}

	c.mu.Lock()
	c.workouts = workouts
	c.order = order
	c.mu.Unlock()
}

func (c *Catalog) Get(id string) (domain.Workout, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	w, ok := c.workouts[id]
	if !ok {
		return domain.Workout{}, fmt.Errorf("%w: %s", ErrWorkoutNotFound, id)
	}
	return w, nil
}

func (c *Catalog) List() []domain.Workout {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Workout, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.workouts[id])
	}
	return out
}

// LoadDir parses and validates every *.json file in dir in name order.
func LoadDir(dir string) ([]domain.Workout, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("read workouts: %w", err)
		}
		return nil, fmt.Errorf("no workout definitions in %s", dir)
	}
	sort.Strings(paths)

	ws := make([]domain.Workout, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read workout %s: %w", p, err)
		}
		w, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		ws = append(ws, w)
	}
	return ws, nil
}

// Parse validates data against the workout schema and decodes it.
func Parse(data []byte) (domain.Workout, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.Workout{}, fmt.Errorf("%w: %v", domain.ErrInvalidWorkout, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return domain.Workout{}, fmt.Errorf("%w: %s", domain.ErrInvalidWorkout, strings.Join(msgs, "; "))
	}

	var w domain.Workout
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Workout{}, fmt.Errorf("%w: %v", domain.ErrInvalidWorkout, err)
	}
	if err := w.Validate(); err != nil {
		return domain.Workout{}, err
	}
	return w, nil
}
