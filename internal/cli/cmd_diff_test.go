package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingCmd(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, stderr, err := runCmd(t, newMissingCmd())
	require.NoError(t, err)

	assert.Equal(t, `A missing option has been found in config.yml!
Please add the missing option(s) manually or delete this file and perform a reload
The default values will be used until then
Missing option: "port" in section "database" with default value: 5432
`, stdout)
	assert.Empty(t, stderr, "querying does not reload")
}

func TestMissingCmd_NoIncludeDefaults(t *testing.T) {
	setupDocs(t, testLive, testDefault)
	viper.Set("include_defaults", false)

	stdout, _, err := runCmd(t, newMissingCmd())
	require.NoError(t, err)
	assert.Contains(t, stdout, `Missing option: "port" in section "database" with default value: 5432`)
	assert.NotContains(t, stdout, "The default values will be used until then")
}

func TestMissingCmd_DoesNotCreateLive(t *testing.T) {
	livePath, _ := setupDocs(t, "", testDefault)

	stdout, _, err := runCmd(t, newMissingCmd())
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 missing options have been found in config.yml!")

	_, err = os.Stat(livePath)
	assert.True(t, os.IsNotExist(err), "live document must not be created")
}

func TestMissingCmd_JSON(t *testing.T) {
	setupDocs(t, testLive, testDefault)
	jsonOut = true

	stdout, _, err := runCmd(t, newMissingCmd())
	require.NoError(t, err)

	var entries []struct {
		Path  string `json:"path"`
		Value any    `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "database.port", entries[0].Path)
	assert.Equal(t, float64(5432), entries[0].Value)
}

func TestMissingCmd_JSONEmpty(t *testing.T) {
	setupDocs(t, testDefault, testDefault)
	jsonOut = true

	stdout, _, err := runCmd(t, newMissingCmd())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", stdout)
}

func TestRedundantCmd(t *testing.T) {
	setupDocs(t, testDefault+"legacy:\n  mode: old\nextra: 1\n", testDefault)

	stdout, _, err := runCmd(t, newRedundantCmd())
	require.NoError(t, err)

	assert.Equal(t, `2 redundant options have been found in config.yml!
Redundant options are not used and can safely be deleted
Redundant option: "mode" in section "legacy"
Redundant option: "extra"
`, stdout)
}

func TestRedundantCmd_None(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newRedundantCmd())
	require.NoError(t, err)
	assert.Equal(t, "No redundant options found in config.yml!\n", stdout)
}

func TestCheckCmd(t *testing.T) {
	tests := []struct {
		name      string
		live      string
		redundant bool
		wantOut   string
		wantErr   bool
	}{
		{
			name:    "in sync",
			live:    testDefault,
			wantOut: "config.yml: 0 missing, 0 redundant\n",
		},
		{
			name:    "missing option fails",
			live:    testLive,
			wantOut: "config.yml: 1 missing, 0 redundant\n",
			wantErr: true,
		},
		{
			name:    "redundant option passes by default",
			live:    testDefault + "extra: 1\n",
			wantOut: "config.yml: 0 missing, 1 redundant\n",
		},
		{
			name:      "redundant option fails when reported",
			live:      testDefault + "extra: 1\n",
			redundant: true,
			wantOut:   "config.yml: 0 missing, 1 redundant\n",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupDocs(t, tt.live, testDefault)
			viper.Set("report_redundant", tt.redundant)

			stdout, _, err := runCmd(t, newCheckCmd())
			assert.Equal(t, tt.wantOut, stdout)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "out of sync")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	setupDocs(t, testDefault+"extra: 1\n", testDefault)
	jsonOut = true

	stdout, _, err := runCmd(t, newCheckCmd())
	require.NoError(t, err)

	var stats map[string]int
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, map[string]int{"missing": 0, "redundant": 1}, stats)
}
