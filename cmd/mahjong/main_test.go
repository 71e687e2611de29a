package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSimulateJSON(t *testing.T) {
	out := runCLI(t, "simulate", "--hands", "2", "--seed", "5", "--json")

	var res table.MatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Hands, 2)
	sum := 0
	for _, s := range res.Scores {
		sum += s
	}
	assert.Zero(t, sum)
	assert.False(t, res.Stopped)
}

func TestSimulateSummary(t *testing.T) {
	simulateOpts.json = false
	out := runCLI(t, "simulate", "--hands", "1", "--seed", "5", "--profile", "classic-136", "--names", "a,b,c,d")
	assert.Contains(t, out, "hand 1")
	assert.Contains(t, out, "scores:")
	assert.True(t, strings.Contains(out, "a ") || strings.Contains(out, "a\t"))
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, newLogger("debug", "text"))
	assert.NotNil(t, newLogger("bogus", "json"))
}
