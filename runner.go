package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kova98/notegrep/config"
	"github.com/kova98/notegrep/models"
	"github.com/kova98/notegrep/notes"
	"github.com/kova98/notegrep/sources"
)

// sessionProvider is the part of browser.Manager the runner needs.
type sessionProvider interface {
	Session() sources.Session
	Restart() error
	IsFatal(err error) bool
}

// Runner executes all jobs of a run against one shared session. A failure
// in one job never aborts the remaining jobs; a fatal session error gets
// exactly one restart-and-retry.
type Runner struct {
	logger    *slog.Logger
	sessions  sessionProvider
	norm      notes.Normalizer
	recorder  *sources.ResponseRecorder
	searchURL string
}

func NewRunner(logger *slog.Logger, sessions sessionProvider, searchURL string, debug bool) *Runner {
	r := &Runner{
		logger:    logger,
		sessions:  sessions,
		searchURL: searchURL,
	}
	if debug {
		r.norm = notes.Normalizer{KeepRaw: true}
		r.recorder = sources.NewResponseRecorder("debug", logger)
	}
	return r
}

func (r *Runner) RunJobs(ctx context.Context, jobs []models.Job) models.RunResult {
	result := models.RunResult{
		RunID:   uuid.NewString(),
		Results: make([]models.JobResult, 0, len(jobs)),
	}

	for i, job := range jobs {
		if strings.TrimSpace(job.Keyword) == "" {
			r.logger.Error("job skipped: keyword is required", "job", i+1)
			result.Results = append(result.Results, models.JobResult{
				Job: job, Notes: []models.Note{}, Error: "keyword is required",
			})
			continue
		}

		jobNotes, err := r.processJob(ctx, job)
		if err != nil && r.sessions.IsFatal(err) {
			r.logger.Error("fatal session error, restarting browser", "job", i+1, "error", err)
			if restartErr := r.sessions.Restart(); restartErr != nil {
				err = restartErr
			} else {
				r.logger.Info("browser restarted, retrying failed job", "job", i+1)
				jobNotes, err = r.processJob(ctx, job)
			}
		}
		if err != nil {
			r.logger.Error("job failed", "job", i+1, "keyword", job.Keyword, "error", err)
			result.Results = append(result.Results, models.JobResult{
				Job: job, Notes: []models.Note{}, Error: err.Error(),
			})
			continue
		}

		result.Results = append(result.Results, models.JobResult{Job: job, Notes: jobNotes})
	}

	return result
}

func (r *Runner) processJob(ctx context.Context, job models.Job) ([]models.Note, error) {
	maxPages := config.ResolveMaxPages(job)
	r.logger.Info("processing job", "keyword", job.Keyword, "author", job.Author, "max_pages", maxPages)

	fetcher := sources.NewFetcher(r.sessions.Session(), r.logger, r.recorder)
	searcher := sources.NewSearcher(fetcher, r.logger, r.searchURL)

	rawItems, err := searcher.FetchAllPages(ctx, job.Keyword, maxPages)
	if err != nil {
		return nil, err
	}

	normalized := make([]models.Note, 0, len(rawItems))
	for _, item := range rawItems {
		if note, ok := r.norm.Normalize(item); ok {
			normalized = append(normalized, note)
		}
	}

	final := notes.FilterAndSort(normalized, job.Author, job.DaysLimit)
	r.logger.Info("job finished", "keyword", job.Keyword, "notes", len(final))
	return final, nil
}
