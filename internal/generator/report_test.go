package generator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_SignalsAndSummary(t *testing.T) {
	r := NewReport("bot")
	r.AddSignal("note", "corpus", SeverityInfo, "", "just so you know")
	r.Warn(SignalUnresolvedMessage, "templates", "m9", "message m9 does not exist")
	r.Warn("", "templates", "", "ignored without a code")

	h := r.BeginStage("templates")
	r.EndStage(h, map[string]float64{"templates": 2, " ": 1}, nil)
	h = r.BeginStage("luis")
	r.EndStage(h, nil, errors.New("boom"))

	r.Finalize()

	require.Len(t, r.Signals, 2)
	assert.Equal(t, SeverityWarning, r.Signals[0].Severity)
	assert.Equal(t, 1, r.Warnings())
	assert.Equal(t, map[string]int{SeverityWarning: 1, SeverityInfo: 1}, r.Summary.SignalsBySeverity)
	assert.Equal(t, 2, r.Summary.StageCount)
	assert.Equal(t, 1, r.Summary.FailedStages)
	assert.Equal(t, map[string]float64{"templates": 2}, r.Stages[0].Counters)
	assert.Equal(t, "boom", r.Stages[1].Error)
}

func TestReport_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "compile.json")
	r := NewReport("bot")
	r.Warn(SignalFewUtterances, "corpus", "bot", "project has 1 utterances, fewer than 10")
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Report
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "bot", loaded.Project)
	assert.Len(t, loaded.Signals, 1)

	var nilReport *Report
	assert.NoError(t, nilReport.Save(path))
	assert.Zero(t, nilReport.Warnings())
}
