package scenario_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressray/stressray/internal/scenario"
)

func TestDefaultPool(t *testing.T) {
	pool := scenario.DefaultPool()

	require.Len(t, pool, 5)
	for _, sc := range pool {
		assert.Greater(t, sc.Episodes, 0)
		assert.NotEmpty(t, sc.TaskType)
	}
}

func TestNewSelector_EmptyPool(t *testing.T) {
	_, err := scenario.NewSelector(nil, nil)
	assert.Error(t, err)
}

func TestSelector_CoversPool(t *testing.T) {
	pool := scenario.DefaultPool()
	sel, err := scenario.NewSelector(pool, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := 0; i < 1000; i++ {
		seen[sel.Select().TaskType]++
	}

	// Uniform with replacement: every template shows up over 1000 draws.
	assert.Len(t, seen, len(pool))
	for taskType, count := range seen {
		assert.Greaterf(t, count, 0, "task type %s never selected", taskType)
	}
}

func TestSelector_Deterministic(t *testing.T) {
	pool := scenario.DefaultPool()

	a, err := scenario.NewSelector(pool, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := scenario.NewSelector(pool, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Select(), b.Select())
	}
}

func TestSelector_ConcurrentSelect(t *testing.T) {
	sel, err := scenario.NewSelector(scenario.DefaultPool(), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sc := sel.Select()
				assert.NotEmpty(t, sc.TaskType)
			}
		}()
	}
	wg.Wait()
}

func writePoolFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPool_Valid(t *testing.T) {
	path := writePoolFile(t, `
scenarios:
  - episodes: 2
    task_type: login_flow
  - episodes: 1
    task_type: checkout
`)

	pool, err := scenario.LoadPool(path)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, scenario.Scenario{Episodes: 2, TaskType: "login_flow"}, pool[0])
	assert.Equal(t, scenario.Scenario{Episodes: 1, TaskType: "checkout"}, pool[1])
}

func TestLoadPool_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty scenarios list",
			content: "scenarios: []",
		},
		{
			name: "missing task_type",
			content: `
scenarios:
  - episodes: 1
`,
		},
		{
			name: "zero episodes",
			content: `
scenarios:
  - episodes: 0
    task_type: login
`,
		},
		{
			name: "episodes not an integer",
			content: `
scenarios:
  - episodes: lots
    task_type: login
`,
		},
		{
			name:    "missing scenarios key",
			content: "tasks: []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePoolFile(t, tt.content)
			_, err := scenario.LoadPool(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadPool_NotYAML(t *testing.T) {
	path := writePoolFile(t, "{{{not yaml")
	_, err := scenario.LoadPool(path)
	assert.Error(t, err)
}

func TestLoadPool_MissingFile(t *testing.T) {
	_, err := scenario.LoadPool(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
