// Package batch runs OCR, structure, or VL inference over many files with a
// bounded worker pool and tracks job state for polling.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ocrstudio/ocrstudio/internal/apperr"
	"github.com/ocrstudio/ocrstudio/internal/ocr"
	"github.com/ocrstudio/ocrstudio/internal/storage"
	"github.com/ocrstudio/ocrstudio/internal/structure"
	"github.com/ocrstudio/ocrstudio/internal/vl"
)

// maxWorkers caps concurrent inference calls per job.
const maxWorkers = 4

// Options are the per-job inference options.
type Options struct {
	Lang    string
	Version string
}

// Processor owns the job store and the engines batch jobs run against.
type Processor struct {
	store     *storage.JobStore
	ocr       *ocr.Engine
	structure *structure.Engine
	vl        *vl.Engine

	counter atomic.Int64
	cancels sync.Map // job id -> context.CancelFunc
	done    sync.Map // job id -> chan struct{}
}

// New creates a processor over the given engines.
func New(ocrEngine *ocr.Engine, structEngine *structure.Engine, vlEngine *vl.Engine) *Processor {
	return &Processor{
		store:     storage.NewJobStore(),
		ocr:       ocrEngine,
		structure: structEngine,
		vl:        vlEngine,
	}
}

// Store exposes the job store for the HTTP layer.
func (p *Processor) Store() *storage.JobStore { return p.store }

// Submit registers a job over the given files and starts processing in the
// background. Files must already be on disk; they are read per worker.
func (p *Processor) Submit(jobType string, files []string, opts Options) (string, error) {
	return p.submit(context.Background(), jobType, files, opts)
}

func (p *Processor) submit(parent context.Context, jobType string, files []string, opts Options) (string, error) {
	switch jobType {
	case "ocr", "structure", "vl":
	default:
		return "", apperr.New(apperr.InvalidParameter, "unknown batch job type: %s", jobType)
	}
	if len(files) == 0 {
		return "", apperr.New(apperr.InvalidParameter, "batch job has no files")
	}

	id := fmt.Sprintf("batch_%d", p.counter.Add(1))
	job := &storage.Job{
		ID:        id,
		Type:      jobType,
		Files:     append([]string(nil), files...),
		Status:    storage.JobPending,
		Total:     len(files),
		Results:   []storage.FileResult{},
		Errors:    []storage.FileError{},
		Options:   map[string]string{"lang": opts.Lang, "version": opts.Version},
		CreatedAt: time.Now(),
	}
	p.store.Set(job)

	ctx, cancel := context.WithCancel(parent)
	p.cancels.Store(id, cancel)
	go p.run(ctx, id, jobType, files, opts)

	return id, nil
}

// Cancel stops a running job. Files already processed keep their results;
// cancelling a finished job is a no-op.
func (p *Processor) Cancel(id string) error {
	if _, ok := p.store.Get(id); !ok {
		return apperr.New(apperr.UnknownJob, "unknown batch job: %s", id)
	}
	if cancel, ok := p.cancels.Load(id); ok {
		cancel.(context.CancelFunc)()
	}
	return nil
}

// Run processes the files synchronously; used by the CLI. The returned job
// is a snapshot of the final state.
func (p *Processor) Run(ctx context.Context, jobType string, files []string, opts Options) (*storage.Job, error) {
	id, err := p.submit(ctx, jobType, files, opts)
	if err != nil {
		return nil, err
	}
	p.Wait(id)
	job, _ := p.store.Get(id)
	return job, nil
}

// Wait blocks until the job finishes; used by synchronous callers and tests.
func (p *Processor) Wait(id string) {
	ch, _ := p.done.LoadOrStore(id, make(chan struct{}))
	<-ch.(chan struct{})
}

func (p *Processor) run(ctx context.Context, id, jobType string, files []string, opts Options) {
	defer func() {
		p.cancels.Delete(id)
		ch, _ := p.done.LoadOrStore(id, make(chan struct{}))
		close(ch.(chan struct{}))
	}()

	p.store.Update(id, func(j *storage.Job) { j.Status = storage.JobProcessing })
	slog.Info("Batch job started", "id", id, "type", jobType, "files", len(files))

	type item struct {
		index int
		file  string
	}
	type outcome struct {
		index  int
		result *storage.FileResult
		err    error
		file   string
	}

	sem := make(chan struct{}, maxWorkers)
	outcomes := make([]outcome, 0, len(files))
	var outMu sync.Mutex
	var wg sync.WaitGroup

	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(it item) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := p.processFile(ctx, jobType, it.file, opts)
			outMu.Lock()
			outcomes = append(outcomes, outcome{index: it.index, result: res, err: err, file: it.file})
			outMu.Unlock()
			p.store.Update(id, func(j *storage.Job) { j.Progress++ })
		}(item{index: i, file: f})
	}
	wg.Wait()

	cancelled := ctx.Err() != nil
	sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].index < outcomes[b].index })

	p.store.Update(id, func(j *storage.Job) {
		for _, o := range outcomes {
			if o.err != nil {
				j.Errors = append(j.Errors, storage.FileError{File: o.file, Error: o.err.Error()})
				continue
			}
			j.Results = append(j.Results, *o.result)
		}
		switch {
		case cancelled:
			j.Status = storage.JobCancelled
		case len(j.Results) == 0 && len(j.Errors) > 0:
			j.Status = storage.JobFailed
		default:
			j.Status = storage.JobCompleted
			j.Progress = j.Total
		}
	})
	slog.Info("Batch job finished", "id", id, "cancelled", cancelled)
}

func (p *Processor) processFile(ctx context.Context, jobType, file string, opts Options) (*storage.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var payload any
	switch jobType {
	case "ocr":
		payload, err = p.ocr.Recognize(ctx, data, ocr.Options{Lang: opts.Lang, Version: opts.Version})
	case "structure":
		payload, err = p.structure.Parse(ctx, data, opts.Lang)
	case "vl":
		payload, err = p.vl.Parse(ctx, data)
	}
	if err != nil {
		return nil, err
	}
	return &storage.FileResult{File: file, Data: payload}, nil
}
