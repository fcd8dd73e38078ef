package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWithViper(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveHiddenColumns_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SaveHiddenColumns(configPath, "projects", []string{"launch_date", "developer"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "projects: [developer, launch_date]")
}

func TestSaveHiddenColumns_PreservesOtherConfigAndComments(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my settings
api:
  base_url: https://admin.example.com # production
ui:
  page_size: 25
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	require.NoError(t, SaveHiddenColumns(configPath, "leads", []string{"updated"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# my settings")
	assert.Contains(t, content, "# production")
	assert.Contains(t, content, "page_size: 25")

	cfg := loadWithViper(t, configPath)
	assert.Equal(t, "https://admin.example.com", cfg.API.BaseURL)
	assert.Equal(t, 25, cfg.UI.PageSize)
	assert.Equal(t, []string{"updated"}, cfg.UI.HiddenColumns["leads"])
}

func TestSaveHiddenColumns_ReplacesAndRemoves(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveHiddenColumns(configPath, "projects", []string{"a", "b", "a"}))
	require.NoError(t, SaveHiddenColumns(configPath, "users", []string{"phone"}))
	require.NoError(t, SaveHiddenColumns(configPath, "projects", nil))

	cfg := loadWithViper(t, configPath)
	_, ok := cfg.UI.HiddenColumns["projects"]
	assert.False(t, ok)
	assert.Equal(t, []string{"phone"}, cfg.UI.HiddenColumns["users"])
}

func TestSaveHiddenColumns_Deduplicates(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveHiddenColumns(configPath, "projects", []string{"b", "a", "b"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "b"))
}

func TestSaveHiddenColumns_UnknownResource(t *testing.T) {
	err := SaveHiddenColumns(filepath.Join(t.TempDir(), "c.yaml"), "widgets", []string{"x"})
	require.Error(t, err)
}

func TestSaveHiddenColumns_RejectsNonMappingDocument(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- just\n- a list\n"), 0o600))

	err := SaveHiddenColumns(configPath, "projects", []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a mapping")
}

func TestSaveHiddenColumns_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	require.NoError(t, SaveHiddenColumns(configPath, "projects", []string{"x"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
