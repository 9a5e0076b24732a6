package workout

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/microdesk/internal/domain"
)

const neckJSON = `{
	"id": "neck",
	"name": "Neck",
	"default_rest_seconds": 10,
	"exercises": [
		{"name": "Neck", "duration_seconds": 45},
		{"name": "Shoulders", "duration_seconds": 45}
	]
}`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: neckJSON},
		{name: "not json", body: `{`, wantErr: true},
		{name: "missing exercises", body: `{"id":"a","name":"A"}`, wantErr: true},
		{name: "empty exercises", body: `{"id":"a","name":"A","exercises":[]}`, wantErr: true},
		{name: "zero duration", body: `{"id":"a","name":"A","exercises":[{"name":"x","duration_seconds":0}]}`, wantErr: true},
		{name: "string duration", body: `{"id":"a","name":"A","exercises":[{"name":"x","duration_seconds":"30"}]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Parse([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidWorkout), "error %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "neck", w.ID)
			assert.Len(t, w.Exercises, 2)
			assert.Equal(t, 10, w.RestSeconds())
		})
	}
}

func TestLoadCatalogFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_neck.json", neckJSON)
	writeFile(t, dir, "a_wrists.json", `{"id":"wrists","name":"Wrists","exercises":[{"name":"Circles","duration_seconds":30}]}`)
	writeFile(t, dir, "README.md", "ignored")

	c, err := LoadCatalog(dir)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "wrists", list[0].ID)
	assert.Equal(t, "neck", list[1].ID)

	w, err := c.Get("neck")
	require.NoError(t, err)
	assert.Equal(t, "Neck", w.Name)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestLoadCatalogFallsBack(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.Len(t, c.List(), len(Fallback()))

	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"id":"x"}`)
	c, err = LoadCatalog(dir)
	assert.Error(t, err)
	_, err = c.Get("neck_5min_v1")
	assert.NoError(t, err)
}

func TestFallbackWorkoutsAreValid(t *testing.T) {
	for _, w := range Fallback() {
		assert.NoError(t, w.Validate(), w.ID)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "neck.json", neckJSON)

	c, err := LoadCatalog(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 4)
	require.NoError(t, c.Watch(ctx, dir, func(err error) { reloaded <- err }))

	writeFile(t, dir, "wrists.json", `{"id":"wrists","name":"Wrists","exercises":[{"name":"Circles","duration_seconds":30}]}`)

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	_, err = c.Get("wrists")
	assert.NoError(t, err)

	writeFile(t, dir, "broken.json", `{`)
	timeout := time.After(5 * time.Second)
	for failed := false; !failed; {
		select {
		case err := <-reloaded:
			failed = err != nil
		case <-timeout:
			t.Fatal("broken definition was not picked up")
		}
	}
	assert.Len(t, c.List(), 2)
}
