package handlers

import (
	"encoding/json"
	"net/http"

	"logomotion/internal/infra"
	"logomotion/internal/storage"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	SQL            infra.SQLExecutor
	Store          *storage.FileStore
	Logger         infra.Logger
	MaxUploadBytes int64
}

func NewApp(sql infra.SQLExecutor, store *storage.FileStore, logger infra.Logger, maxUploadBytes int64) *App {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 8 * 1024 * 1024
	}
	return &App{SQL: sql, Store: store, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": code, "message": message})
}
