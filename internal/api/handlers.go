package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/cortexcompose/compose/internal/errors"
	"github.com/cortexcompose/compose/internal/jobs"
	"github.com/cortexcompose/compose/internal/logger"
	"github.com/cortexcompose/compose/internal/services/recipe"
	"github.com/cortexcompose/compose/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
)

// Generator runs one generation cycle.
type Generator interface {
	Generate(ctx context.Context, ingredients string) ([]recipe.Recipe, error)
}

// JobStore creates and reads queued cycles.
type JobStore interface {
	Create(ctx context.Context, ingredients string) (*jobs.Job, error)
	Get(ctx context.Context, id string) (*jobs.Job, error)
	Fail(ctx context.Context, id string, msg string) error
}

// Enqueuer puts tasks on the queue. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Server struct {
	generator   Generator
	jobs        JobStore
	queue       Enqueuer
	taskTimeout time.Duration
}

// NewServer creates the API server. jobStore and queue may be nil, in which
// case the job routes are not mounted.
func NewServer(generator Generator, jobStore JobStore, queue Enqueuer, taskTimeout time.Duration) *Server {
	return &Server{
		generator:   generator,
		jobs:        jobStore,
		queue:       queue,
		taskTimeout: taskTimeout,
	}
}

// JobsEnabled reports whether background jobs are available.
func (s *Server) JobsEnabled() bool {
	return s.jobs != nil && s.queue != nil
}

// Routes mounts the API under r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/recipes", s.HandleGenerateRecipes)
	if s.JobsEnabled() {
		r.Post("/jobs", s.HandleCreateJob)
		r.Get("/jobs/{id}", s.HandleJobStatus)
	}
}

type GenerateRecipesRequest struct {
	Ingredients string `json:"ingredients"`
}

type GenerateRecipesResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

func (s *Server) HandleGenerateRecipes(w http.ResponseWriter, r *http.Request) {
	var req GenerateRecipesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", `Send {"ingredients": "..."} as JSON.`))
		return
	}

	recipes, err := s.generator.Generate(r.Context(), req.Ingredients)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}

	writeJSON(w, http.StatusOK, GenerateRecipesResponse{Recipes: recipes})
}

type CreateJobResponse struct {
	JobID  string      `json:"job_id"`
	Status jobs.Status `json:"status"`
}

func (s *Server) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req GenerateRecipesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", `Send {"ingredients": "..."} as JSON.`))
		return
	}
	if err := recipe.ValidateIngredients(req.Ingredients); err != nil {
		writeError(w, r, err)
		return
	}

	job, err := s.jobs.Create(r.Context(), req.Ingredients)
	if err != nil {
		writeError(w, r, apperrors.NewInternalError("Failed to create job", err))
		return
	}

	task, err := worker.NewGenerateRecipesTask(worker.GenerateRecipesPayload{
		JobID:       job.ID,
		Ingredients: req.Ingredients,
	}, s.taskTimeout)
	if err != nil {
		writeError(w, r, apperrors.NewInternalError("Failed to create task", err))
		return
	}

	if _, err := s.queue.EnqueueContext(r.Context(), task); err != nil {
		if ferr := s.jobs.Fail(context.WithoutCancel(r.Context()), job.ID, "Failed to enqueue task"); ferr != nil {
			slog.ErrorContext(r.Context(), "Failed to mark job failed", "job_id", job.ID, "error", ferr)
		}
		writeError(w, r, apperrors.NewInternalError("Failed to enqueue task", err))
		return
	}

	writeJSON(w, http.StatusAccepted, CreateJobResponse{JobID: job.ID, Status: job.Status})
}

func (s *Server) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, r, apperrors.NewValidationError("job id is required", "MISSING_JOB_ID", ""))
		return
	}

	job, err := s.jobs.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, r, apperrors.NewNotFoundError("Job not found", "JOB_NOT_FOUND", "Jobs expire after a day; submit the ingredients again."))
		return
	}
	if err != nil {
		writeError(w, r, apperrors.NewInternalError("Failed to load job", err))
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as AppError JSON. Server-side failures are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"path", r.URL.Path,
			"error_code", appErr.ErrorCode,
			"error", err,
			logger.WithTraceContext(r.Context()),
		)
	}
	writeJSON(w, appErr.StatusCode, appErr)
}
