package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/scoregest/internal/metrics"
	"github.com/dgallion1/scoregest/internal/pathstore"
	"github.com/dgallion1/scoregest/internal/protocol"
)

// Worker processes a single parse job.
type Worker struct {
	parser    *protocol.Parser
	pathstore Store
	metrics   *metrics.Manager
	log       *slog.Logger

	retryBase time.Duration
}

func NewWorker(parser *protocol.Parser, ps Store, m *metrics.Manager, log *slog.Logger) *Worker {
	return &Worker{
		parser:    parser,
		pathstore: ps,
		metrics:   m,
		log:       log,
		retryBase: time.Second,
	}
}

// Process parses the job's PDF and, with a store configured, writes every
// performance and the content-hash index entry.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "pdf", job.Filename)
	defer func() {
		w.metrics.RecordJob(string(job.Snapshot().Status))
	}()

	// Phase 1: Dedup check
	if w.pathstore != nil {
		index, err := w.pathstore.GetNode(ctx, pathstore.HashKey(job.DedupKey))
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if index != nil {
			log.Info("duplicate pdf, skipping", "content_hash", job.ContentHash, "dedup_key", job.DedupKey)
			job.MarkDuplicate(index.Value)
			return
		}
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	res, err := w.parser.ParseBytes(ctx, job.FileData(), job.Filename, job.Context)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetResult(res)

	if w.pathstore == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	if err := w.store(ctx, job, res, log); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

// store replaces the PDF's performances under its key and then writes the
// hash index, so a PDF is only indexed once fully stored.
func (w *Worker) store(ctx context.Context, job *Job, res *protocol.Result, log *slog.Logger) error {
	pdfKey := pathstore.PDFKey(job.Context, job.Filename)
	source := "scoregest:" + job.ID

	err := withRetry(ctx, log, w.retryBase, "delete", func() error {
		return w.pathstore.DeleteTree(ctx, pdfKey)
	})
	if err != nil {
		return fmt.Errorf("clear %s: %w", pdfKey, err)
	}

	for i, rec := range res.Performances {
		key := pathstore.PerformanceKey(pdfKey, i+1)
		err := withRetry(ctx, log, w.retryBase, "put", func() error {
			return w.pathstore.PutNode(ctx, key, pathstore.NodeRequest{Value: rec, Source: source})
		})
		if err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}
		job.AddStored(1)
	}
	log.Info("storage complete", "stored", len(res.Performances), "key", pdfKey)

	index := map[string]any{
		"job_id":       job.ID,
		"pdf":          res.PDF,
		"content_hash": job.ContentHash,
		"key":          pdfKey,
		"performances": len(res.Performances),
		"created_at":   job.CreatedAt.Format(time.RFC3339),
	}
	err = withRetry(ctx, log, w.retryBase, "index", func() error {
		return w.pathstore.PutNode(ctx, pathstore.HashKey(job.DedupKey), pathstore.NodeRequest{Value: index, Source: source})
	})
	if err != nil {
		return fmt.Errorf("hash index: %w", err)
	}
	return nil
}
