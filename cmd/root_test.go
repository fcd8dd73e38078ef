package cmd

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/credentials"
	"github.com/zjrosen/propdesk/internal/devserver"
	"github.com/zjrosen/propdesk/internal/domain"
)

// playground starts a seeded in-memory backend and writes a config file
// pointing at it.
func playground(t *testing.T) string {
	t.Helper()
	store, err := devserver.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	_, err = devserver.Seed(t.Context(), store)
	require.NoError(t, err)

	srv := httptest.NewServer(devserver.New(store, "secret").Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(credentials.EnvToken, "secret")
	path := filepath.Join(dir, "config.yaml")
	body := "api:\n  base_url: " + srv.URL + "\n  token_file: " + filepath.Join(dir, "token") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command and returns stdout, stderr and the error.
func run(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = config.Config{}
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestCanonicalResource(t *testing.T) {
	for in, want := range map[string]string{
		"builders":   "developers",
		"Developer":  "developers",
		" property ": "properties",
		"leads":      "leads",
	} {
		got, err := canonicalResource(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := canonicalResource("listings")
	require.ErrorContains(t, err, "unknown resource")
}

func TestList_ProjectsResolveReferences(t *testing.T) {
	path := playground(t)
	out, _, err := run(t, path, "list", "projects", "--ready", "true")
	require.NoError(t, err)
	assert.Contains(t, out, "World Towers")
	assert.Contains(t, out, "Lodha Group")
	assert.Contains(t, out, "Mumbai")
	assert.Contains(t, out, "6 total")
	assert.NotContains(t, out, "Palava City")
}

func TestList_PagingFooter(t *testing.T) {
	path := playground(t)
	out, _, err := run(t, path, "list", "projects", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "14 total · page 2 of 2")
	assert.Contains(t, out, "Unknown Developer")
}

func TestList_PropertyFilters(t *testing.T) {
	path := playground(t)
	out, _, err := run(t, path, "list", "properties", "--listing-for", "rent", "--max-price", "5000000")
	require.NoError(t, err)
	assert.Contains(t, out, "5 total")
	assert.Contains(t, out, "2 BHK near Hinjewadi")
	assert.NotContains(t, out, "Garden Villa")
}

func TestList_RejectsForeignFlags(t *testing.T) {
	path := playground(t)
	_, _, err := run(t, path, "list", "projects", "--bhk", "2")
	require.EqualError(t, err, "flag --bhk does not apply to projects")

	_, _, err = run(t, path, "list", "leads", "--page", "2")
	require.EqualError(t, err, "flag --page does not apply to leads")

	_, _, err = run(t, path, "list", "properties", "--furnishing", "luxurious")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestList_JSON(t *testing.T) {
	path := playground(t)
	out, _, err := run(t, path, "list", "leads", "--json")
	require.NoError(t, err)
	var leads []domain.Lead
	require.NoError(t, json.Unmarshal([]byte(out), &leads))
	assert.Len(t, leads, 5)
}

func TestGet_DeveloperIncludesContacts(t *testing.T) {
	path := playground(t)
	out, _, err := run(t, path, "get", "builders", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Lodha Group")
	assert.Contains(t, out, "contact_persons:")
	assert.Contains(t, out, "Sales Desk")

	_, _, err = run(t, path, "get", "users", "99")
	require.ErrorContains(t, err, "no record with id 99")
}

func TestCreate_LocationFromYAML(t *testing.T) {
	path := playground(t)
	payload := filepath.Join(t.TempDir(), "surat.yaml")
	require.NoError(t, os.WriteFile(payload, []byte("name: Surat\npincode: \"395001\"\nstate: Gujarat\ncountry: India\n"), 0o600))

	out, stderr, err := run(t, path, "create", "locations", "-f", payload)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Surat")
	assert.Contains(t, stderr, "Location created successfully")

	out, _, err = run(t, path, "list", "locations")
	require.NoError(t, err)
	assert.Contains(t, out, "Surat")
	assert.Contains(t, out, "9 total")
}

func TestCreate_RejectsUnknownKeysAndInvalidPayloads(t *testing.T) {
	path := playground(t)
	dir := t.TempDir()

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("name: Surat\nstat: Gujarat\n"), 0o600))
	_, _, err := run(t, path, "create", "locations", "-f", typo)
	require.ErrorContains(t, err, "field stat not found")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("name: Surat\nstate: Gujarat\n"), 0o600))
	_, _, err = run(t, path, "create", "locations", "-f", invalid)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "country", verr.Field)

	_, _, err = run(t, path, "create", "contacts", "-f", invalid)
	require.ErrorContains(t, err, "--developer is required")
}

func TestUpdate_DiffPreviewsWithoutSending(t *testing.T) {
	path := playground(t)
	payload := filepath.Join(t.TempDir(), "project.yaml")
	body := `builder_id: 1
name: World Towers II
city_id: [1]
project_type: residential
status: completed
possession_month: 6
possession_year: 2023
is_ready_possession: true
`
	require.NoError(t, os.WriteFile(payload, []byte(body), 0o600))

	out, _, err := run(t, path, "update", "projects", "1", "-f", payload, "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "- name: World Towers")
	assert.Contains(t, out, "+ name: World Towers II")

	out, _, err = run(t, path, "get", "projects", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "World Towers II")

	out, stderr, err := run(t, path, "update", "projects", "1", "-f", payload)
	require.NoError(t, err)
	assert.Contains(t, out, "name: World Towers II")
	assert.Contains(t, stderr, "Project updated successfully")
}

func TestDelete_Project(t *testing.T) {
	path := playground(t)
	out, _, err := run(t, path, "delete", "projects", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Project deleted successfully")

	_, _, err = run(t, path, "get", "projects", "2")
	require.Error(t, err)

	_, _, err = run(t, path, "delete", "leads", "1")
	require.EqualError(t, err, "cannot delete leads")
}

func TestExport_WritesWorkbook(t *testing.T) {
	path := playground(t)
	target := filepath.Join(t.TempDir(), "out", "projects.xlsx")
	out, _, err := run(t, path, "export", "projects", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 10 rows")
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPlaygroundConfig_Overrides(t *testing.T) {
	resetFlags(rootCmd)
	cfg = config.Defaults()
	require.NoError(t, playgroundCmd.Flags().Set("addr", "127.0.0.1:9999"))
	require.NoError(t, playgroundCmd.Flags().Set("db", ":memory:"))
	require.NoError(t, playgroundCmd.Flags().Set("no-seed", "true"))
	t.Cleanup(func() { resetFlags(rootCmd) })

	pc, err := playgroundConfig(playgroundCmd)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", pc.Addr)
	assert.Equal(t, ":memory:", pc.DBPath)
	assert.Equal(t, "playground", pc.Token)
	assert.False(t, pc.Seed)
}

func TestNewRuntime_RejectsBadBaseURL(t *testing.T) {
	c := config.Defaults()
	c.API.BaseURL = "ftp://example.com"
	_, err := newRuntime(c, nil)
	require.ErrorContains(t, err, "must use http or https")
}
