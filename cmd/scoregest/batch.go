package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/scoregest/internal/competition"
	"github.com/dgallion1/scoregest/internal/output"
	"github.com/dgallion1/scoregest/internal/protocol"
	"github.com/dgallion1/scoregest/internal/sheet"
)

// pdfJob is one PDF to parse. OutDir is where its result goes; empty means
// stdout.
type pdfJob struct {
	Path    string
	Context sheet.ParseContext
	OutDir  string
}

type pdfResult struct {
	Job    pdfJob
	Result *protocol.Result
	Err    error
}

// parseAll parses jobs with at most workers in flight. Results keep the
// order of jobs; a failing PDF is logged and never stops the others.
//
// Each PDF gets its own parser writing progress to a private buffer. Buffers
// are copied to progress in job order, each as soon as its PDF and every
// earlier one are done, so parallel runs never interleave their pages. A nil
// progress disables the indicator.
func parseAll(ctx context.Context, tmpl sheet.Template, jobs []pdfJob, workers int, progress io.Writer, log *slog.Logger) []pdfResult {
	results := make([]pdfResult, len(jobs))
	bufs := make([]bytes.Buffer, len(jobs))
	done := make([]chan struct{}, len(jobs))
	for i := range done {
		done[i] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	// g.Go blocks at the limit; schedule from a goroutine so the merge below
	// can flush finished PDFs meanwhile.
	go func() {
		for i, job := range jobs {
			i, job := i, job
			g.Go(func() error {
				defer close(done[i])
				var opts []protocol.Option
				if progress != nil {
					opts = append(opts, protocol.WithProgress(&bufs[i]))
				}
				parser := protocol.NewParser(tmpl, log, opts...)
				res, err := parser.ParseFile(gctx, job.Path, job.Context)
				if err != nil {
					log.Error("parse pdf failed", "pdf", job.Path, "error", err)
				}
				results[i] = pdfResult{Job: job, Result: res, Err: err}
				return nil
			})
		}
	}()

	for i, job := range jobs {
		<-done[i]
		if progress != nil && bufs[i].Len() > 0 {
			fmt.Fprint(progress, job.Path)
			bufs[i].WriteTo(progress)
		}
	}
	_ = g.Wait()
	return results
}

// checkOutputs fails when two jobs would write the same result file.
func checkOutputs(jobs []pdfJob) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		if job.OutDir == "" {
			continue
		}
		path := output.Path(job.OutDir, job.Path)
		if prev, ok := seen[path]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, job.Path, path)
		}
		seen[path] = job.Path
	}
	return nil
}

// discoverSeason lists the PDFs of a season directory: every sub-directory
// holding a competition info file is a competition. Existing results are
// skipped unless overwrite is set; one that no longer decodes is parsed
// again.
func discoverSeason(dir, season, outDir string, overwrite bool, log *slog.Logger) (jobs []pdfJob, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		compDir := filepath.Join(dir, e.Name())
		info, err := competition.LoadInfo(compDir)
		if err != nil {
			log.Warn("skipping competition", "dir", compDir, "error", err)
			continue
		}
		pctx := info.Context(season)

		pdfs, err := listPDFs(compDir)
		if err != nil {
			return nil, 0, err
		}
		target := filepath.Join(outDir, e.Name())
		for _, pdf := range pdfs {
			if !overwrite {
				if prev, err := output.ReadFile(output.Path(target, pdf)); err == nil {
					log.Debug("already parsed", "pdf", pdf, "performances", len(prev.Performances))
					skipped++
					continue
				}
			}
			jobs = append(jobs, pdfJob{Path: pdf, Context: pctx, OutDir: target})
		}
	}
	return jobs, skipped, nil
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}
