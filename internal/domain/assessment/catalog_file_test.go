package assessment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallCatalog = `
version: "test-1"
areas:
  - id: hygiene
    name: Hygiene
    description: Personal and vehicle hygiene
    questions:
      - id: h1
        text: Boots are changed at the farm boundary
        weight: 3
      - id: h2
        text: Vehicles are washed on entry
        weight: 1
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(smallCatalog))
	require.NoError(t, err)
	assert.Equal(t, "test-1", c.Version)
	require.Len(t, c.Areas, 1)
	assert.Equal(t, 2, c.QuestionCount())
	assert.Equal(t, 16, c.Areas[0].MaxWeightedScore())
}

func TestParseCatalog_DefaultsVersion(t *testing.T) {
	c, err := ParseCatalog([]byte(`areas: [{id: a, name: A, questions: [{id: q, text: Q, weight: 1}]}]`))
	require.NoError(t, err)
	assert.Equal(t, CatalogVersion, c.Version)
}

func TestParseCatalog_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     `areas: [{id: a, name: A, questions: [{id: q, text: Q, wieght: 1}]}]`,
		"zero weight":     `areas: [{id: a, name: A, questions: [{id: q, text: Q, weight: 0}]}]`,
		"no areas":        `version: x`,
		"malformed input": `areas: [`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallCatalog), 0o600))
	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", c.Version)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEncodeYAML_RoundTripsDefaultCatalog(t *testing.T) {
	data, err := DefaultCatalog().EncodeYAML()
	require.NoError(t, err)
	c, err := ParseCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)
}
