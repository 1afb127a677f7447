package models

// Job is one independent keyword search with its own filters and limits.
// Jobs are read-only input for the duration of a run.
type Job struct {
	Keyword   string `json:"keyword"`
	Author    string `json:"author,omitempty"`
	DaysLimit int    `json:"days_limit,omitempty"`
	MaxPages  int    `json:"max_pages,omitempty"`
}

type JobResult struct {
	Job   Job    `json:"job"`
	Notes []Note `json:"notes"`
	Error string `json:"error,omitempty"`
}

type RunResult struct {
	RunID   string      `json:"run_id"`
	Results []JobResult `json:"results"`
}

// RunOutcome is what the whole run reports back to its invoker.
// Counts holds the number of notes per job, in job order.
type RunOutcome struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Counts []int  `json:"counts"`
}
