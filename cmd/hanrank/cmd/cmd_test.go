package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hanrank/pkg/hanrank"
	"github.com/cognicore/hanrank/pkg/hanrank/store"
)

const headlines = "특검법 국회 통과\n국회 본회의 특검법 가결\n대통령실 반응\n"

// run executes the CLI with an empty config file and a scratch database.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath, "--db", filepath.Join(dir, "hanrank.db")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestExtractStdin(t *testing.T) {
	out, err := run(t, t.TempDir(), headlines, "extract")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. 국회 (2)")
	assert.Contains(t, out, " 2. 특검법 (2)")
	assert.NotContains(t, out, "통과")
}

func TestExtractJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "titles.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"title":"검찰 압수수색 착수"}
{"title":"검찰청 검찰 소환 통보"}
not json
{"title":"검찰청 압수수색 검찰 반발"}
`), 0o644))

	out, err := run(t, dir, "", "extract", "--format", "jsonl", "--json", "-n", "1", path)
	require.NoError(t, err)

	var kws []hanrank.Keyword
	require.NoError(t, json.Unmarshal([]byte(out), &kws))
	require.Len(t, kws, 1)
	assert.Equal(t, "검찰청", kws[0].Keyword)
	assert.Equal(t, 3, kws[0].ArticleCount)
}

func TestExtractErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, headlines, "extract", "--format", "csv")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, dir, "", "extract", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = run(t, dir, "", "extract", "--feed", "http://127.0.0.1:1/rss", "titles.txt")
	assert.ErrorContains(t, err, "not both")
}

func TestExtractSaveAndHistory(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no snapshots")

	_, err = run(t, dir, "대통령실 반응\n대통령실 해명\n", "extract", "--save")
	require.NoError(t, err)
	_, err = run(t, dir, headlines, "extract", "--save")
	require.NoError(t, err)

	out, err = run(t, dir, "", "history", "--diff")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "국회, 특검법")
	assert.Contains(t, out, "new  국회")
	assert.Contains(t, out, "out  해명")

	out, err = run(t, dir, "", "history", "--json", "-n", "1")
	require.NoError(t, err)
	var snaps []store.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, 3, snaps[0].TitleCount)
}

func TestLexiconCommands(t *testing.T) {
	dir := t.TempDir()

	dump, err := run(t, dir, "", "lexicon", "dump")
	require.NoError(t, err)
	assert.Contains(t, dump, "stopwords:")

	path := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dump), 0o644))
	out, err := run(t, dir, "", "lexicon", "check", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok: "))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("compound_patterns: [\"(\"]\n"), 0o644))
	_, err = run(t, dir, "", "lexicon", "check", bad)
	assert.Error(t, err)
}

func TestLexiconSuggest(t *testing.T) {
	batch := strings.Repeat("국회 예산 심사\n국회 검찰 수사\n국회 대통령실 반응\n", 2)

	out, err := run(t, t.TempDir(), batch, "lexicon", "suggest", "--df-percent", "50", "--min-df", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "국회")
	assert.NotContains(t, out, "검찰")
}
