package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lgexport/internal/generator"
	"lgexport/internal/project"
	"lgexport/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `{
  "project": {"id": "p1", "name": "My Bot"},
  "intents": [{"id": "i-greet", "name": "greeting", "utterances": [{"text": "hi"}]}],
  "board": {"board": {"messages": [
    {"message_id": "start", "message_type": "text", "payload": {"text": "welcome"},
     "next_message_ids": [
       {"message_id": "m1", "intent": {"value": "i-greet"}},
       {"message_id": "ghost", "intent": {"value": "i-greet"}}
     ]},
    {"message_id": "m1", "message_type": "text", "payload": {"text": "hello", "nodeName": "Hello"}}
  ]}}
}`

func writeSnapshot(t *testing.T, content string) project.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return project.FileSource{Path: path}
}

func TestExport_Run(t *testing.T) {
	ctx := context.Background()
	outDir := t.TempDir()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	e := &Export{
		Source:     writeSnapshot(t, snapshot),
		OutputDir:  outDir,
		ReportPath: filepath.Join(t.TempDir(), "report.json"),
		Options:    generator.Options{Luis: true},
		History:    store,
	}
	res, err := e.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(outDir, "mybot.lu"),
		filepath.Join(outDir, "mybot.lg"),
		filepath.Join(outDir, "mybot.json"),
	}, res.Paths)

	lg, err := os.ReadFile(res.Paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(lg), "> Hello\n# m1\n- hello\n")
	assert.NotContains(t, string(lg), "ghost")

	_, err = os.Stat(e.ReportPath)
	assert.NoError(t, err)

	require.NotEmpty(t, res.RunID)
	run, err := store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "My Bot", run.Project)
	assert.Equal(t, res.Paths[2], run.LuisPath)
	assert.Equal(t, 1, run.Templates)
	assert.Equal(t, res.Output.Report.Warnings(), run.Warnings)
}

func TestExport_MissingOutputDirWritesNothing(t *testing.T) {
	e := &Export{
		Source:    writeSnapshot(t, snapshot),
		OutputDir: filepath.Join(t.TempDir(), "absent"),
	}
	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExport_StructuralErrorStopsBeforeWriting(t *testing.T) {
	outDir := t.TempDir()
	e := &Export{
		Source:    writeSnapshot(t, `{"project": {"name": ""}}`),
		OutputDir: outDir,
	}
	_, err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, project.ErrStructural)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_Check(t *testing.T) {
	e := &Export{Source: writeSnapshot(t, snapshot)}
	out, err := e.Check(context.Background())
	require.NoError(t, err)
	assert.Len(t, out.Report.SignalsWithCode(generator.SignalUnresolvedMessage), 1)
}
