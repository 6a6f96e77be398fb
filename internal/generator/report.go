package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Signal codes for data-quality gaps. None of them abort a compilation.
const (
	SignalDanglingTransition = "dangling_transition"
	SignalUnknownIntent      = "unknown_intent"
	SignalUnresolvedSlot     = "unresolved_slot_variable"
	SignalUnresolvedMessage  = "unresolved_message"
	SignalMalformedPayload   = "malformed_payload"
	SignalFewUtterances      = "few_utterances"
	SignalUnreachable        = "unreachable_message"
)

const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

type ReportSignal struct {
	Code     string  `json:"code"`
	Stage    string  `json:"stage"`
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Subject  string  `json:"subject,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type ReportSummary struct {
	StageCount        int            `json:"stage_count"`
	FailedStages      int            `json:"failed_stages"`
	Intents           int            `json:"intents"`
	Utterances        int            `json:"utterances"`
	Templates         int            `json:"templates"`
	SkippedTemplates  int            `json:"skipped_templates"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// Report is accumulated during a compilation and handed back to the caller
// alongside the documents.
type Report struct {
	Version     string         `json:"version"`
	Project     string         `json:"project"`
	GeneratedAt string         `json:"generated_at"`
	Stages      []StageMetric  `json:"stages"`
	Signals     []ReportSignal `json:"signals,omitempty"`
	Summary     ReportSummary  `json:"summary"`
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewReport(projectName string) *Report {
	return &Report{
		Version:     "v1",
		Project:     projectName,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Stages:      []StageMetric{},
		Signals:     []ReportSignal{},
	}
}

func (r *Report) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *Report) EndStage(h StageHandle, counters map[string]float64, err error) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	m := StageMetric{
		Name:       h.name,
		Status:     "ok",
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   cleanCounters(counters),
	}
	if err != nil {
		m.Status = "error"
		m.Error = err.Error()
	}
	r.Stages = append(r.Stages, m)
}

func (r *Report) AddSignal(code, stage, severity, subject, message string) {
	if r == nil {
		return
	}
	s := ReportSignal{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Subject:  strings.TrimSpace(subject),
		Message:  strings.TrimSpace(message),
	}
	if s.Code == "" || s.Stage == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.Signals = append(r.Signals, s)
}

func (r *Report) Warn(code, stage, subject, message string) {
	r.AddSignal(code, stage, SeverityWarning, subject, message)
}

// SignalsWithCode returns signals matching code in recorded order.
func (r *Report) SignalsWithCode(code string) []ReportSignal {
	if r == nil {
		return nil
	}
	var out []ReportSignal
	for _, s := range r.Signals {
		if s.Code == code {
			out = append(out, s)
		}
	}
	return out
}

func (r *Report) Warnings() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Signals {
		if s.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

func (r *Report) Finalize() {
	if r == nil {
		return
	}
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	severityCount := map[string]int{
		SeverityWarning: 0,
		SeverityInfo:    0,
	}
	sort.SliceStable(r.Signals, func(i, j int) bool {
		pi := signalPriority(r.Signals[i].Severity)
		pj := signalPriority(r.Signals[j].Severity)
		if pi == pj {
			return r.Signals[i].Stage < r.Signals[j].Stage
		}
		return pi > pj
	})
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}

	failed := 0
	for _, st := range r.Stages {
		if st.Status != "ok" {
			failed++
		}
	}

	r.Summary.StageCount = len(r.Stages)
	r.Summary.FailedStages = failed
	r.Summary.SignalsBySeverity = severityCount
}

func (r *Report) JSON() ([]byte, error) {
	r.Finalize()
	return json.MarshalIndent(r, "", "  ")
}

func (r *Report) Save(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := r.JSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func signalPriority(severity string) int {
	switch severity {
	case SeverityWarning:
		return 2
	default:
		return 1
	}
}
