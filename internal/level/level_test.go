package level

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/generator"
)

func writeLevel(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAllParsesJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "easy.json", `{"operators": ["+", "-", "%"], "digits": [1], "timeout": 8}`)
	writeLevel(t, dir, "hard.yaml", "name: hard\noperators: [\"*\", \"/\"]\ndigits: [2, 1]\n")
	writeLevel(t, dir, "broken.json", `{"operators": [`)
	writeLevel(t, dir, "notes.txt", "ignored")

	levels, skipped, err := NewLoader(dir).LoadAll()
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Len(t, skipped, 1)

	easy := levels[0]
	assert.Equal(t, "easy", easy.Name)
	ops, dropped, err := easy.Ops()
	require.NoError(t, err)
	assert.Equal(t, []arith.Op{arith.Add, arith.Sub}, ops)
	assert.Equal(t, []string{"%"}, dropped)
	assert.Equal(t, 8*time.Second, easy.TimeoutDuration())

	hard := levels[1]
	a, b, err := hard.Ranges()
	require.NoError(t, err)
	assert.Equal(t, generator.Range{Min: 1, Max: 99}, a)
	assert.Equal(t, generator.Range{Min: 1, Max: 9}, b)
	assert.Equal(t, time.Duration(0), hard.TimeoutDuration())
}

func TestFindByNameAndPath(t *testing.T) {
	dir := t.TempDir()
	path := writeLevel(t, dir, "mix.yml", "operators: [add, mul]\ndigits: [2]\n")
	loader := NewLoader(dir)

	lvl, err := loader.Find("mix")
	require.NoError(t, err)
	assert.Equal(t, path, lvl.FilePath)

	lvl, err = loader.Find(path)
	require.NoError(t, err)
	assert.Equal(t, "mix", lvl.Name)

	_, err = loader.Find("missing")
	assert.Error(t, err)
}

func TestLevelValidation(t *testing.T) {
	_, _, err := Level{Name: "x", Operators: []string{"%", "^"}}.Ops()
	assert.Error(t, err)

	_, _, err = Level{Name: "x", Digits: []int{}}.Ranges()
	assert.Error(t, err)
	_, _, err = Level{Name: "x", Digits: []int{0}}.Ranges()
	assert.Error(t, err)
	_, _, err = Level{Name: "x", Digits: []int{1, 2, 3}}.Ranges()
	assert.Error(t, err)
	_, _, err = Level{Name: "x", Digits: []int{10}}.Ranges()
	assert.Error(t, err)
	_, _, err = Level{Name: "x", Digits: []int{2, 20}}.Ranges()
	assert.Error(t, err)

	a, b, err := Level{Name: "x", Digits: []int{generator.MaxDigits}}.Ranges()
	require.NoError(t, err)
	assert.Equal(t, generator.Range{Min: 1, Max: 999999999}, a)
	assert.Equal(t, a, b)
}

func TestWidestLevelDrawsSafeProblems(t *testing.T) {
	lvl, err := Parse([]byte(`{"operators": ["/", "*"], "digits": [9]}`), ".json")
	require.NoError(t, err)
	ops, _, err := lvl.Ops()
	require.NoError(t, err)
	a, b, err := lvl.Ranges()
	require.NoError(t, err)
	gen, err := generator.New(a, b, ops, 7)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		p := gen.Next()
		require.Positive(t, p.A, "problem %s", p)
		require.Positive(t, p.B, "problem %s", p)
		answer, err := p.Answer()
		require.NoError(t, err)
		require.Positive(t, answer, "problem %s", p)
	}
}
