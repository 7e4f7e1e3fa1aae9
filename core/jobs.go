package core

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Job is a background pipeline.
type Job struct {
	ID int
	// Pids of every stage, builtin stages report the shell's pid.
	Pids      []int
	Name      string
	StartTime time.Time

	// ExitCode of the last stage, valid once Done is closed.
	ExitCode int

	done chan struct{}
}

// Pid is the pid of the last stage of the pipeline.
func (j *Job) Pid() int {
	if len(j.Pids) == 0 {
		return 0
	}
	return j.Pids[len(j.Pids)-1]
}

// Done is closed once every stage of the job has exited.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// JobTable tracks background jobs. It's safe for concurrent use.
type JobTable struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// NewJobTable creates an empty table.
func NewJobTable() *JobTable {
	return &JobTable{jobs: make(map[int]*Job)}
}

// add registers started stages as a job and waits on them in the background.
func (t *JobTable) add(procs []process) *Job {
	var names []string
	job := &Job{
		StartTime: time.Now(),
		done:      make(chan struct{}),
	}
	for _, proc := range procs {
		job.Pids = append(job.Pids, proc.Pid())
		names = append(names, proc.Name())
	}
	job.Name = strings.Join(names, " | ")

	t.mu.Lock()
	t.nextID++
	job.ID = t.nextID
	t.jobs[job.ID] = job
	t.mu.Unlock()

	go func() {
		exitCode := 0
		for _, proc := range procs {
			exitCode, _ = proc.Wait()
		}
		job.ExitCode = exitCode
		close(job.done)
	}()

	return job
}

// Reap removes and returns finished jobs ordered by ID without blocking.
func (t *JobTable) Reap() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*Job
	for id, job := range t.jobs {
		if job.finished() {
			out = append(out, job)
			delete(t.jobs, id)
		}
	}
	sortJobs(out)
	return out
}

// List returns the outstanding jobs ordered by ID.
func (t *JobTable) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*Job
	for _, job := range t.jobs {
		out = append(out, job)
	}
	sortJobs(out)
	return out
}

func sortJobs(jobs []*Job) {
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].ID < jobs[j].ID
	})
}
