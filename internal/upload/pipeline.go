// Package upload manages a bounded batch of files queued for ingestion:
// client-side validation, submission and the aggregate outcome.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/notify"
)

const (
	MaxFiles    = 10
	MaxFileSize = 50 * 1024 * 1024
	// CloseDelay lets the success notice be read before the surface closes.
	CloseDelay = 1500 * time.Millisecond
	// DefaultConcurrency bounds simultaneous transfers within a batch.
	DefaultConcurrency = 3
)

// AllowedExtensions is the accepted set of file types, without dots.
var AllowedExtensions = []string{"pdf", "docx", "pptx", "txt", "md", "csv", "json"}

var (
	ErrTooMany   = errors.New("too many files")
	ErrTooLarge  = errors.New("file too large")
	ErrType      = errors.New("file type not allowed")
	ErrDuplicate = errors.New("file already queued")
	ErrBusy      = errors.New("upload in progress")
)

// State is the batch lifecycle.
type State int

const (
	Idle State = iota
	Populated
	Submitting
	Completed
)

func (s State) String() string {
	switch s {
	case Populated:
		return "populated"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// TaskState is one file's lifecycle.
type TaskState int

const (
	Queued TaskState = iota
	Uploading
	Succeeded
	Failed
)

func (s TaskState) String() string {
	switch s {
	case Uploading:
		return "uploading"
	case Succeeded:
		return "done"
	case Failed:
		return "failed"
	default:
		return "queued"
	}
}

// Task is one queued file.
type Task struct {
	ID     string
	File   File
	State  TaskState
	Chunks int
	Reason string
}

// Sink receives one file per call.
type Sink interface {
	Upload(ctx context.Context, filename string, r io.Reader, folderID string) (*api.UploadResponse, error)
}

// Result is the outcome of one transfer.
type Result struct {
	TaskID string
	Chunks int
	Err    error
}

// BatchDoneMsg is delivered once every transfer of a batch has finished.
type BatchDoneMsg struct {
	Batch   uint64
	Results []Result
}

// CloseMsg closes the surface after a successful batch.
type CloseMsg struct {
	Batch uint64
}

// Pipeline is the upload batch aggregate. Methods run on the Update loop.
type Pipeline struct {
	sink     Sink
	folder   func() string
	refresh  func() tea.Cmd
	notifier notify.Notifier
	limit    int

	tasks []*Task
	state State
	open  bool
	batch uint64
}

// Config wires a Pipeline. Folder is read at submit time; Refresh reloads
// the catalog and stats after a batch with at least one success.
type Config struct {
	Sink        Sink
	Folder      func() string
	Refresh     func() tea.Cmd
	Notifier    notify.Notifier
	Concurrency int
}

// New creates an idle pipeline.
func New(cfg Config) *Pipeline {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	folder := cfg.Folder
	if folder == nil {
		folder = func() string { return api.RootFolderID }
	}
	return &Pipeline{
		sink:     cfg.Sink,
		folder:   folder,
		refresh:  cfg.Refresh,
		notifier: cfg.Notifier,
		limit:    limit,
	}
}

func (p *Pipeline) State() State   { return p.state }
func (p *Pipeline) IsOpen() bool   { return p.open }
func (p *Pipeline) Tasks() []*Task { return p.tasks }

// CanSubmit reports whether Submit would start a batch.
func (p *Pipeline) CanSubmit() bool {
	return p.state != Submitting && p.state != Completed && len(p.pending()) > 0
}

// Open shows the upload surface.
func (p *Pipeline) Open() { p.open = true }

// Close hides the surface. Before submission the batch is discarded;
// during submission transfers keep running and still report.
func (p *Pipeline) Close() {
	p.open = false
	if p.state != Submitting {
		p.reset()
	}
}

func (p *Pipeline) reset() {
	p.tasks = nil
	p.state = Idle
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func allowed(ext string) bool {
	for _, a := range AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// Validate checks f against the batch restrictions without queuing it.
func (p *Pipeline) Validate(f File) error {
	if p.state == Submitting || p.state == Completed {
		return ErrBusy
	}
	if len(p.tasks) >= MaxFiles {
		return fmt.Errorf("limit is %d files: %w", MaxFiles, ErrTooMany)
	}
	if f.Size() > MaxFileSize {
		return fmt.Errorf("%s exceeds maximum allowed size of %d MB: %w", f.Name(), MaxFileSize/(1024*1024), ErrTooLarge)
	}
	if !allowed(extension(f.Name())) {
		return fmt.Errorf("%s: only .%s files are allowed: %w", f.Name(), strings.Join(AllowedExtensions, ", ."), ErrType)
	}
	for _, t := range p.tasks {
		if t.File.Name() == f.Name() && t.File.Size() == f.Size() {
			return fmt.Errorf("%s is already queued: %w", f.Name(), ErrDuplicate)
		}
	}
	return nil
}

// Add queues f. A rejected file is reported through the notifier and the
// returned error; it is never queued.
func (p *Pipeline) Add(f File) (tea.Cmd, error) {
	if err := p.Validate(f); err != nil {
		return p.notifier.Notify(rejectReason(err), notify.Error), err
	}
	p.tasks = append(p.tasks, &Task{ID: uuid.NewString(), File: f})
	p.state = Populated
	return nil, nil
}

// rejectReason is the notice text for a validation error.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrBusy):
		return "Upload already in progress"
	case errors.Is(err, ErrTooMany):
		return fmt.Sprintf("You can only upload %d files", MaxFiles)
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrTooLarge, ErrType, ErrDuplicate} {
		msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
	}
	return msg
}

// Remove drops a task before submission.
func (p *Pipeline) Remove(id string) {
	if p.state == Submitting {
		return
	}
	for i, t := range p.tasks {
		if t.ID == id {
			p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
			break
		}
	}
	if len(p.tasks) == 0 && p.state == Populated {
		p.state = Idle
	}
}

func (p *Pipeline) pending() []*Task {
	var out []*Task
	for _, t := range p.tasks {
		if t.State == Queued || t.State == Failed {
			out = append(out, t)
		}
	}
	return out
}

// Submit uploads every queued or previously failed task. The folder id is
// read now, not when files were queued.
func (p *Pipeline) Submit() tea.Cmd {
	if p.state == Submitting || p.state == Completed {
		return nil
	}
	tasks := p.pending()
	if len(tasks) == 0 {
		return p.notifier.Notify("Please select files first", notify.Error)
	}

	p.state = Submitting
	p.batch++
	batch := p.batch
	folderID := p.folder()

	type job struct {
		id   string
		file File
	}
	jobs := make([]job, len(tasks))
	for i, t := range tasks {
		t.State = Uploading
		t.Reason = ""
		jobs[i] = job{id: t.ID, file: t.File}
	}

	sink := p.sink
	limit := p.limit
	return func() tea.Msg {
		results := make([]Result, len(jobs))
		var g errgroup.Group
		g.SetLimit(limit)
		for i, j := range jobs {
			i, j := i, j
			g.Go(func() error {
				results[i] = transfer(sink, j.id, j.file, folderID)
				return nil
			})
		}
		_ = g.Wait()
		return BatchDoneMsg{Batch: batch, Results: results}
	}
}

func transfer(sink Sink, id string, f File, folderID string) Result {
	rc, err := f.Open()
	if err != nil {
		return Result{TaskID: id, Err: err}
	}
	defer rc.Close()

	resp, err := sink.Upload(context.Background(), f.Name(), rc, folderID)
	if err != nil {
		slog.Debug("upload failed", "file", f.Name(), "err", err)
		return Result{TaskID: id, Err: err}
	}
	return Result{TaskID: id, Chunks: resp.TotalChunks}
}

// FailureReason picks the text shown for a failed transfer: the server's
// error field, then the transport error, then a generic fallback.
func FailureReason(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Upload failed"
}

// Update applies pipeline messages.
func (p *Pipeline) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case BatchDoneMsg:
		if msg.Batch != p.batch {
			return nil
		}
		return p.finish(msg.Results)
	case CloseMsg:
		if msg.Batch == p.batch && p.state == Completed {
			p.open = false
			p.reset()
		}
	}
	return nil
}

func (p *Pipeline) finish(results []Result) tea.Cmd {
	byID := make(map[string]*Task, len(p.tasks))
	for _, t := range p.tasks {
		byID[t.ID] = t
	}

	var ok, failed, chunks int
	for _, r := range results {
		t := byID[r.TaskID]
		if t == nil {
			continue
		}
		if r.Err != nil {
			t.State = Failed
			t.Reason = FailureReason(r.Err)
			failed++
			continue
		}
		t.State = Succeeded
		t.Chunks = r.Chunks
		chunks += r.Chunks
		ok++
	}
	slog.Info("upload batch finished", "ok", ok, "failed", failed, "chunks", chunks)

	var cmds []tea.Cmd
	if failed > 0 {
		cmds = append(cmds, p.notifier.Notify(fmt.Sprintf("Failed to upload %d files", failed), notify.Error))
	}
	if ok == 0 {
		// Nothing landed: keep the batch so the failures can be retried.
		p.state = Populated
		if !p.open {
			p.reset()
		}
		return tea.Batch(cmds...)
	}

	cmds = append(cmds, p.notifier.Notify(
		fmt.Sprintf("Successfully uploaded %d files! Created %d chunks", ok, chunks), notify.Success))
	if p.refresh != nil {
		cmds = append(cmds, p.refresh())
	}
	if !p.open {
		p.reset()
		return tea.Batch(cmds...)
	}
	p.state = Completed
	batch := p.batch
	cmds = append(cmds, tea.Tick(CloseDelay, func(time.Time) tea.Msg { return CloseMsg{Batch: batch} }))
	return tea.Batch(cmds...)
}
