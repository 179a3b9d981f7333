package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lcerrors "github.com/randalmurphal/layerconf/internal/errors"
)

const (
	testDefault = "database:\n  host: localhost\n  port: 5432\n"
	testLive    = "database:\n  host: db.local\n"
)

// resetViper restores viper to the state init leaves it in.
func resetViper() {
	viper.Reset()
	setDefaults()
	bindFlag("live", "live")
	bindFlag("default", "default")
	bindFlag("include_defaults", "include-defaults")
	bindFlag("report_redundant", "redundant")
	bindFlag("debug", "debug")
}

// setupDocs writes the live and default documents into a temp dir and
// points viper at them. An empty document is not written.
func setupDocs(t *testing.T, live, def string) (livePath, defPath string) {
	t.Helper()
	dir := t.TempDir()

	livePath = filepath.Join(dir, "config.yml")
	if live != "" {
		require.NoError(t, os.WriteFile(livePath, []byte(live), 0644))
	}
	if def != "" {
		defPath = filepath.Join(dir, "defaults", "config.yml")
		require.NoError(t, os.MkdirAll(filepath.Dir(defPath), 0755))
		require.NoError(t, os.WriteFile(defPath, []byte(def), 0644))
	}

	resetViper()
	viper.Set("live", livePath)
	viper.Set("default", defPath)
	t.Cleanup(func() {
		resetViper()
		jsonOut = false
		noColor = false
	})
	return livePath, defPath
}

func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestShowCmd_OutputsNestedYAML(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, stderr, err := runCmd(t, newShowCmd())
	require.NoError(t, err)

	assert.Equal(t, "database:\n  host: db.local\n  port: 5432\n", stdout)
	assert.Contains(t, stderr, "[layerconf] A missing option has been found in config.yml!")
	assert.Contains(t, stderr, `[layerconf] Missing option: "port" in section "database" with default value: 5432`)
}

func TestShowCmd_Flat(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newShowCmd(), "--flat")
	require.NoError(t, err)
	assert.Equal(t, "database.host = \"db.local\"\ndatabase.port = 5432\n", stdout)
}

func TestShowCmd_Match(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newShowCmd(), "--flat", "--match", "database.p*")
	require.NoError(t, err)
	assert.Equal(t, "database.port = 5432\n", stdout)

	_, _, err = runCmd(t, newShowCmd(), "--match", "database.[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --match pattern")
}

func TestShowCmd_JSON(t *testing.T) {
	setupDocs(t, testLive, testDefault)
	jsonOut = true

	stdout, stderr, err := runCmd(t, newShowCmd())
	require.NoError(t, err)
	assert.Empty(t, stderr, "reports go into the JSON document")

	var result struct {
		Source string `json:"source"`
		Reload string `json:"reload"`
		Config []struct {
			Path  string `json:"path"`
			Value any    `json:"value"`
		} `json:"config"`
		Reports []struct {
			Kind  string `json:"kind"`
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	assert.Equal(t, "config.yml", result.Source)
	assert.NotEmpty(t, result.Reload)
	require.Len(t, result.Config, 2)
	assert.Equal(t, "database.host", result.Config[0].Path)
	assert.Equal(t, "db.local", result.Config[0].Value)
	assert.Equal(t, float64(5432), result.Config[1].Value)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "missing", result.Reports[0].Kind)
}

func TestShowCmd_CreatesLiveFromDefault(t *testing.T) {
	livePath, _ := setupDocs(t, "", testDefault)

	stdout, stderr, err := runCmd(t, newShowCmd())
	require.NoError(t, err)

	assert.Contains(t, stderr, "Copying a new config.yml ...")
	assert.Contains(t, stderr, "No missing options found in config.yml!")
	assert.Equal(t, "database:\n  host: localhost\n  port: 5432\n", stdout)

	data, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, testDefault, string(data))
}

func TestShowCmd_WithoutDefault(t *testing.T) {
	setupDocs(t, "k: true\nextra: [1, 2]\n", "")

	stdout, stderr, err := runCmd(t, newShowCmd())
	require.NoError(t, err)
	assert.Equal(t, "k: true\nextra: [1, 2]\n", stdout)
	assert.Empty(t, stderr)
}

func TestShowCmd_NoIncludeDefaults(t *testing.T) {
	setupDocs(t, testLive+"extra: 1\n", testDefault)
	viper.Set("include_defaults", false)

	stdout, _, err := runCmd(t, newShowCmd(), "--flat")
	require.NoError(t, err)
	assert.Equal(t, "database.host = \"db.local\"\nextra = 1\n", stdout)
}

func TestShowCmd_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(livePath, []byte("k=v\n"), 0644))
	setupDocs(t, "", "")
	viper.Set("live", livePath)

	_, stderr, err := runCmd(t, newShowCmd())
	require.Error(t, err)
	assert.ErrorIs(t, err, lcerrors.ErrSourceUnavailable(""))
	assert.ErrorIs(t, err, lcerrors.ErrUnsupportedFormat(""))
	assert.Contains(t, stderr, "Failed to reload config.ini, the previous configuration is kept")
}

func TestGetCmd(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newGetCmd(), "database.port")
	require.NoError(t, err)
	assert.Equal(t, "5432\n", stdout)

	stdout, _, err = runCmd(t, newGetCmd(), "database.host")
	require.NoError(t, err)
	assert.Equal(t, "db.local\n", stdout)

	_, _, err = runCmd(t, newGetCmd(), "database.user")
	assert.ErrorIs(t, err, lcerrors.ErrKeyNotFound("database.user"))
}

func TestGetCmd_JSON(t *testing.T) {
	setupDocs(t, testLive, testDefault)
	jsonOut = true

	stdout, _, err := runCmd(t, newGetCmd(), "database.port")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "database.port", got["path"])
	assert.Equal(t, "int", got["kind"])
	assert.Equal(t, float64(5432), got["value"])
}

func TestGetCmd_AutoLoadOffStillLoads(t *testing.T) {
	setupDocs(t, testLive, testDefault)
	viper.Set("auto_load", false)

	stdout, _, err := runCmd(t, newGetCmd(), "database.port")
	require.NoError(t, err)
	assert.Equal(t, "5432", strings.TrimSpace(stdout))
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := runCmd(t, newVersionCmd())
	require.NoError(t, err)
	assert.Equal(t, "layerconf version "+Version+"\n", stdout)
}
