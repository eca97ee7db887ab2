package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(`
[paths]
normalized = "data/normalizado"
index_table = "data/tr.csv"

[reconcile]
novation_window_days = 90
workers = 4

[log]
format = "json"
`))
	require.NoError(t, err)
	assert.Equal(t, "data/normalizado", c.Paths.Normalized)
	assert.Equal(t, "data/tr.csv", c.Paths.IndexTable)
	assert.Equal(t, "monetary", c.Paths.Monetary, "missing keys keep their default")
	assert.Equal(t, 90, c.Reconcile.NovationWindowDays)
	assert.Equal(t, 4, c.Reconcile.Workers)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseRejects(t *testing.T) {
	for name, content := range map[string]string{
		"unknown key":     "[paths]\nnormalised = \"x\"\n",
		"negative window": "[reconcile]\nnovation_window_days = -1\n",
		"bad pattern":     "[paths]\npattern = \"[\"\n",
		"not toml":        "paths = [",
	} {
		_, err := Parse(strings.NewReader(content))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err, "the default file is optional")
	assert.Equal(t, Default(), c)

	_, err = Load("missing.toml")
	assert.Error(t, err, "an explicit file is required")

	want := Default()
	want.Paths.Dataset = "run-1"
	want.Reconcile.Workers = 2
	require.NoError(t, want.Save(DefaultFile))
	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, filepath.Join("out", "run-1"), got.DatasetDir())
}
