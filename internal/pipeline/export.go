package pipeline

import (
	"context"
	"fmt"
	"os"

	"lgexport/internal/generator"
	"lgexport/internal/logging"
	"lgexport/internal/project"
	"lgexport/internal/storage"
)

// Export runs one compilation: load the snapshot, compile, write the
// documents and record the run.
type Export struct {
	Source     project.Source
	OutputDir  string
	ReportPath string
	Options    generator.Options
	// History is optional; nil skips recording.
	History storage.RunStore
	Logger  *logging.Logger
}

type Result struct {
	Output *generator.Output
	Paths  []string
	RunID  string
}

func (e *Export) Run(ctx context.Context) (*Result, error) {
	out, err := e.Check(ctx)
	if err != nil {
		return nil, err
	}

	paths, err := e.writeStage(ctx, out)
	if err != nil {
		return nil, err
	}
	res := &Result{Output: out, Paths: paths}

	if e.ReportPath != "" {
		if err := out.Report.Save(e.ReportPath); err != nil {
			return nil, fmt.Errorf("failed to save report: %w", err)
		}
	}

	if e.History != nil {
		runID, err := e.historyStage(ctx, out, paths)
		if err != nil {
			return nil, err
		}
		res.RunID = runID
	}
	return res, nil
}

// Check loads and compiles without touching the file system.
func (e *Export) Check(ctx context.Context) (*generator.Output, error) {
	log := e.logger()

	p, err := e.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	log.Debug("project loaded",
		"project", p.Name,
		"intents", len(p.Intents),
		"messages", len(p.Graph.Messages))

	out, err := generator.Compile(p, e.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", p.Name, err)
	}
	for _, s := range out.Report.Signals {
		log.Warn(s.Message, "code", s.Code, "stage", s.Stage, "subject", s.Subject)
	}
	log.Info("project compiled",
		"project", p.Name,
		"templates", out.Report.Summary.Templates,
		"skipped", out.Report.Summary.SkippedTemplates,
		"warnings", out.Report.Warnings())
	return out, nil
}

func (e *Export) writeStage(ctx context.Context, out *generator.Output) ([]string, error) {
	info, err := os.Stat(e.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output path %s is not a directory", e.OutputDir)
	}

	h := out.Report.BeginStage("write")
	paths, err := generator.WriteDocuments(ctx, e.OutputDir, out.Documents())
	out.Report.EndStage(h, map[string]float64{"documents": float64(len(paths))}, err)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		e.logger().Debug("document written", "path", p)
	}
	return paths, nil
}

func (e *Export) historyStage(ctx context.Context, out *generator.Output, paths []string) (string, error) {
	report, err := out.Report.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	run := &storage.Run{
		Project:    out.Report.Project,
		Intents:    out.Report.Summary.Intents,
		Utterances: out.Report.Summary.Utterances,
		Templates:  out.Report.Summary.Templates,
		Warnings:   out.Report.Warnings(),
		Report:     report,
	}
	if len(paths) > 0 {
		run.CorpusPath = paths[0]
	}
	if len(paths) > 1 {
		run.TemplatesPath = paths[1]
	}
	if len(paths) > 2 {
		run.LuisPath = paths[2]
	}
	if err := e.History.SaveRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func (e *Export) logger() *logging.Logger {
	if e.Logger == nil {
		return logging.Nop()
	}
	return e.Logger
}
