package domain

import "time"

// JobStatus enumerates animation job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Job tracks one logo animation request from upload to finished video.
type Job struct {
	ID           string
	Status       JobStatus
	Prompt       string
	AspectRatio  AspectRatio
	LogoKey      string
	LogoMIME     string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Asset is a stored binary produced by a job (currently only the video).
type Asset struct {
	ID         string
	JobID      string
	StorageKey string
	MIME       string
	Bytes      int64
	SourceURI  string
	CreatedAt  time.Time
}
