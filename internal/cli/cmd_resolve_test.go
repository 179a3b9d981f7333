package cli

import (
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainCmd_LiveWins(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newExplainCmd(), "database.host")
	require.NoError(t, err)

	assert.Equal(t, `Resolution chain for 'database.host':
  LIVE (highest priority):
    database.host: "db.local" ← WINNER
  DEFAULT (lowest priority):
    database.host: "localhost"

Final value: "db.local" (from live)
`, stdout)
}

func TestExplainCmd_DefaultFillsGap(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newExplainCmd(), "database.port")
	require.NoError(t, err)

	assert.Contains(t, stdout, "    database.port: not set\n")
	assert.Contains(t, stdout, "    database.port: 5432 ← WINNER\n")
	assert.Contains(t, stdout, "Final value: 5432 (from default)\n")
}

func TestExplainCmd_LiveOnlyDropped(t *testing.T) {
	setupDocs(t, testLive+"extra: 1\n", testDefault)

	stdout, _, err := runCmd(t, newExplainCmd(), "extra")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No effective value: only the live document sets it and the default document defines the options\n")
	assert.NotContains(t, stdout, "WINNER")
}

func TestExplainCmd_LiveOnlyKeptWithoutDefaults(t *testing.T) {
	setupDocs(t, testLive+"extra: 1\n", testDefault)
	viper.Set("include_defaults", false)

	stdout, _, err := runCmd(t, newExplainCmd(), "extra")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Final value: 1 (from live)\n")
}

func TestExplainCmd_NotSet(t *testing.T) {
	setupDocs(t, testLive, testDefault)

	stdout, _, err := runCmd(t, newExplainCmd(), "nope")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No effective value: not set in any layer\n")
}

func TestExplainCmd_JSON(t *testing.T) {
	setupDocs(t, testLive, testDefault)
	jsonOut = true

	stdout, _, err := runCmd(t, newExplainCmd(), "database.port")
	require.NoError(t, err)

	var chain struct {
		Path       string `json:"path"`
		Effective  bool   `json:"effective"`
		FinalValue any    `json:"final_value"`
		Winner     string `json:"winner"`
		Entries    []struct {
			Layer     string `json:"layer"`
			IsSet     bool   `json:"is_set"`
			IsWinning bool   `json:"is_winning"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &chain))

	assert.Equal(t, "database.port", chain.Path)
	assert.True(t, chain.Effective)
	assert.Equal(t, float64(5432), chain.FinalValue)
	assert.Equal(t, "default", chain.Winner)
	require.Len(t, chain.Entries, 2)
	assert.Equal(t, "default", chain.Entries[0].Layer)
	assert.True(t, chain.Entries[0].IsWinning)
	assert.Equal(t, "live", chain.Entries[1].Layer)
	assert.False(t, chain.Entries[1].IsSet)
}
