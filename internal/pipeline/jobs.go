package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/scoregest/internal/protocol"
	"github.com/dgallion1/scoregest/internal/sheet"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Terminal reports whether no further transition can happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusDupSkipped
}

// Job tracks the state of a single uploaded PDF.
type Job struct {
	mu sync.Mutex

	ID       string             `json:"job_id"`
	Status   JobStatus          `json:"status"`
	Phase    string             `json:"phase"`
	Filename string             `json:"filename"`
	Context  sheet.ParseContext `json:"context"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	DedupKey    string    `json:"dedup_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData    []byte
	result      *protocol.Result
	duplicateOf json.RawMessage
	errors      []string
}

// Progress tracks processing progress.
type Progress struct {
	PagesTotal      int      `json:"pages_total"`
	PagesRecognized int      `json:"pages_recognized"`
	PagesSkipped    int      `json:"pages_skipped"`
	Performances    int      `json:"performances"`
	Stored          int      `json:"stored"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded PDF.
func NewJob(filename string, data []byte, pctx sheet.ParseContext) *Job {
	now := time.Now()
	hash := ContentHashHex(data)
	return &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Context:     pctx,
		ContentHash: hash,
		DedupKey:    DedupKey(hash, pctx),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult records the parse result and its page counters, and releases
// the uploaded bytes.
func (j *Job) SetResult(res *protocol.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.fileData = nil
	j.Progress.PagesTotal = len(res.Pages)
	j.Progress.PagesRecognized = res.Recognized()
	j.Progress.PagesSkipped = res.Skipped()
	j.Progress.Performances = len(res.Performances)
	j.UpdatedAt = time.Now()
}

// Result returns the parse result, nil until parsing finished.
func (j *Job) Result() *protocol.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// AddStored records performances written to pathstore.
func (j *Job) AddStored(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Stored += n
	j.UpdatedAt = time.Now()
}

// MarkDuplicate finishes the job as a duplicate of an indexed PDF.
func (j *Job) MarkDuplicate(index json.RawMessage) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.duplicateOf = index
	j.fileData = nil
	j.Status = StatusDupSkipped
	j.Phase = "dedup"
	j.UpdatedAt = time.Now()
}

// DuplicateOf returns the hash index entry that matched, if any.
func (j *Job) DuplicateOf() json.RawMessage {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.duplicateOf
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string             `json:"job_id"`
	Status      JobStatus          `json:"status"`
	Phase       string             `json:"phase"`
	Filename    string             `json:"filename"`
	Context     sheet.ParseContext `json:"context"`
	ContentHash string             `json:"content_hash"`
	DedupKey    string             `json:"dedup_key"`
	Progress    Progress           `json:"progress"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.Progress
	progress.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Context:     j.Context,
		ContentHash: j.ContentHash,
		DedupKey:    j.DedupKey,
		Progress:    progress,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// DedupKey identifies an upload by its bytes and its parse context: the
// same PDF uploaded with a corrected context is parsed and stored again.
func DedupKey(contentHash string, pctx sheet.ParseContext) string {
	h := sha256.New()
	for _, part := range []string{contentHash, pctx.Season, pctx.Competition, pctx.City, pctx.Type, pctx.Start, pctx.End} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
