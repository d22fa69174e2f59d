package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"logomotion/internal/domain"
	"logomotion/internal/sqlinline"
	"logomotion/internal/storage"
	"logomotion/pkg/imagedata"
)

type jobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// AnimationsCreate accepts a multipart upload (logo file, prompt text, aspect
// ratio) and enqueues a generation job. Validation failures are reported
// before anything touches storage or the queue.
func (a *App) AnimationsCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	aspect, err := domain.ParseAspectRatio(r.FormValue("aspect_ratio"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "logo image is required")
		return
	}
	defer file.Close()

	logo, err := imagedata.FromReader(file, header.Header.Get("Content-Type"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read logo image")
		return
	}
	if !strings.HasPrefix(logo.MIME, "image/") {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unsupported logo content type %q", logo.MIME))
		return
	}

	logoKey := fmt.Sprintf("uploads/%s/logo%s", uuid.NewString(), extensionForMIME(logo.MIME))
	storedKey, err := a.Store.Write(r.Context(), logoKey, logo.Data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("api: persist uploaded logo failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store logo")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QEnqueueJob, prompt, aspect.String(), storedKey, logo.MIME)
	var jobID string
	if err := row.Scan(&jobID); err != nil {
		a.Logger.Error().Err(err).Msg("api: enqueue animation job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue animation job")
		return
	}
	a.json(w, http.StatusAccepted, jobResponse{JobID: jobID, Status: string(domain.JobStatusQueued)})
}

// AnimationStatus reports the job lifecycle state the SPA polls for.
func (a *App) AnimationStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.loadJob(r, jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "animation job not found")
		return
	}
	payload := map[string]any{
		"job_id":       job.ID,
		"status":       job.Status,
		"prompt":       job.Prompt,
		"aspect_ratio": job.AspectRatio,
		"created_at":   job.CreatedAt,
		"updated_at":   job.UpdatedAt,
	}
	if job.ErrorMessage != "" {
		payload["error"] = job.ErrorMessage
	}
	if job.Status == domain.JobStatusSucceeded {
		payload["video_url"] = fmt.Sprintf("/v1/animations/%s/video", job.ID)
	}
	a.json(w, http.StatusOK, payload)
}

// AnimationVideo streams the finished video binary.
func (a *App) AnimationVideo(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.loadJob(r, jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "animation job not found")
		return
	}
	if job.Status != domain.JobStatusSucceeded {
		a.error(w, http.StatusConflict, "not_ready", fmt.Sprintf("job is %s", job.Status))
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectAssetByJob, jobID)
	var asset domain.Asset
	if err := row.Scan(&asset.ID, &asset.JobID, &asset.StorageKey, &asset.MIME, &asset.Bytes, &asset.SourceURI, &asset.CreatedAt); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "video not found")
		return
	}

	reader, err := a.Store.Open(r.Context(), asset.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "video not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("api: open stored video failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read video")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", asset.MIME)
	if asset.Bytes > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", asset.Bytes))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func (a *App) loadJob(r *http.Request, jobID string) (*domain.Job, error) {
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectJob, jobID)
	var job domain.Job
	var status, aspect string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&job.ID, &status, &job.Prompt, &aspect, &job.LogoKey, &job.LogoMIME, &job.ErrorMessage, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	job.AspectRatio = domain.AspectRatio(aspect)
	job.CreatedAt = createdAt
	job.UpdatedAt = updatedAt
	return &job, nil
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
