package storage

import (
	"sync"
	"time"
)

// JobStatus is the lifecycle state of a batch job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// FileResult is the successful output for one file of a batch job.
type FileResult struct {
	File string `json:"file"`
	Data any    `json:"data"`
}

// FileError records a per-file failure without failing the whole job.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Job is one batch processing job.
type Job struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Files     []string          `json:"files"`
	Status    JobStatus         `json:"status"`
	Progress  int               `json:"progress"`
	Total     int               `json:"total"`
	Results   []FileResult      `json:"results"`
	Errors    []FileError       `json:"errors"`
	Options   map[string]string `json:"options,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// JobStore is a mutex-guarded in-memory job table. All mutation goes
// through Update so snapshots handed to the HTTP layer are consistent.
type JobStore struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

// NewJobStore creates an empty store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Set registers a job.
func (s *JobStore) Set(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns a snapshot of the job, so callers can serialize it without
// racing the workers.
func (s *JobStore) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return snapshot(job), true
}

// GetAll returns snapshots of every job.
func (s *JobStore) GetAll() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, snapshot(job))
	}
	return out
}

// Update applies fn to the stored job under the write lock.
func (s *JobStore) Update(id string, fn func(*Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// Delete removes a job.
func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func snapshot(job *Job) *Job {
	cp := *job
	cp.Files = append([]string(nil), job.Files...)
	cp.Results = append([]FileResult(nil), job.Results...)
	cp.Errors = append([]FileError(nil), job.Errors...)
	if job.Options != nil {
		cp.Options = make(map[string]string, len(job.Options))
		for k, v := range job.Options {
			cp.Options[k] = v
		}
	}
	return &cp
}
