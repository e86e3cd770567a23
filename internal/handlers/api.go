// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the autopress API.
// Handlers receive their dependencies through the API struct and speak
// JSON; the progress stream endpoints live in stream.go.
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autopress/internal/cache"
	"autopress/internal/markdown"
	"autopress/internal/models"
	"autopress/internal/stream"
)

// TriggerTokenHeader carries the shared secret on manual trigger requests.
const TriggerTokenHeader = "X-Trigger-Token"

// Trigger starts pipeline runs and reacts to schedule changes.
type Trigger interface {
	RunNow(topic string) (*models.Run, error)
	Reconcile()
}

// RunStore is the slice of the run store the API reads.
type RunStore interface {
	FindByID(id uuid.UUID) (*models.Run, error)
	List(limit int) ([]models.Run, error)
}

// ContentStore is the slice of the content store the API needs.
type ContentStore interface {
	FindByID(id uuid.UUID) (*models.Content, error)
	Update(c *models.Content) error
}

// ScheduleStore reads and mutates the singleton schedule configuration.
type ScheduleStore interface {
	Get() (*models.ScheduleConfig, error)
	Update(intervalMinutes int, isActive bool) (*models.ScheduleConfig, error)
}

// API groups the JSON endpoints and their dependencies.
type API struct {
	trigger      Trigger
	runs         RunStore
	content      ContentStore
	schedule     ScheduleStore
	previews     *cache.PreviewCache
	streams      *stream.Mux
	triggerToken string
}

// NewAPI creates the API handler group. previews may be nil when Valkey is
// not configured; triggerToken may be empty in development, which disables
// the token check.
func NewAPI(trigger Trigger, runs RunStore, content ContentStore, schedule ScheduleStore, previews *cache.PreviewCache, streams *stream.Mux, triggerToken string) *API {
	return &API{
		trigger:      trigger,
		runs:         runs,
		content:      content,
		schedule:     schedule,
		previews:     previews,
		streams:      streams,
		triggerToken: triggerToken,
	}
}

// triggerRequest is the optional body of a manual pipeline trigger.
type triggerRequest struct {
	Topic string `json:"topic"`
}

// PipelineRun handles POST /api/pipeline/run. The run record is created
// synchronously and returned with 202; generation proceeds in the
// background. An empty or absent topic means the pipeline picks one.
func (a *API) PipelineRun(w http.ResponseWriter, r *http.Request) {
	if !a.checkTriggerToken(r) {
		writeError(w, http.StatusUnauthorized, "invalid or missing trigger token")
		return
	}

	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	run, err := a.trigger.RunNow(strings.TrimSpace(req.Topic))
	if err != nil {
		slog.Error("manual trigger failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	slog.Info("pipeline run triggered", "run", run.ID, "topic", req.Topic)
	writeJSON(w, http.StatusAccepted, run)
}

// checkTriggerToken compares the request token against the configured
// secret in constant time. An empty configured secret disables the check.
func (a *API) checkTriggerToken(r *http.Request) bool {
	if a.triggerToken == "" {
		return true
	}
	got := r.Header.Get(TriggerTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.triggerToken)) == 1
}

// RunsList handles GET /api/runs. Accepts an optional ?limit= parameter.
func (a *API) RunsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := a.runs.List(limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// RunGet handles GET /api/runs/{id}.
func (a *API) RunGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	run, err := a.runs.FindByID(id)
	if err != nil {
		slog.Error("find run failed", "run", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ContentGet handles GET /api/content/{id}.
func (a *API) ContentGet(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadContent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ContentPreview handles GET /api/content/{id}/preview. The Markdown body
// is rendered to HTML; rendered output is cached per revision when Valkey
// is available.
func (a *API) ContentPreview(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadContent(w, r)
	if !ok {
		return
	}

	key := cache.Key(c.ID, c.UpdatedAt)
	if html, hit := a.previews.Get(r.Context(), key); hit {
		writeHTML(w, html)
		return
	}

	html, err := markdown.ToHTML(c.Body)
	if err != nil {
		slog.Error("render preview failed", "content", c.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}

	a.previews.Set(r.Context(), key, []byte(html))
	writeHTML(w, []byte(html))
}

// ContentPublish handles POST /api/content/{id}/publish. Only content in
// review may be published; the store stamps published_at.
func (a *API) ContentPublish(w http.ResponseWriter, r *http.Request) {
	c, ok := a.loadContent(w, r)
	if !ok {
		return
	}

	if c.Status != models.ContentStatusReview {
		writeError(w, http.StatusConflict, "only content in review can be published")
		return
	}

	c.Status = models.ContentStatusPublished
	if err := a.content.Update(c); err != nil {
		slog.Error("publish content failed", "content", c.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to publish content")
		return
	}

	a.previews.Invalidate(r.Context(), c.ID)

	slog.Info("content published", "content", c.ID, "slug", c.Slug)
	writeJSON(w, http.StatusOK, c)
}

// scheduleRequest is the body of a schedule configuration update.
type scheduleRequest struct {
	IntervalMinutes int  `json:"interval_minutes"`
	IsActive        bool `json:"is_active"`
}

// SchedulerGet handles GET /api/scheduler.
func (a *API) SchedulerGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.schedule.Get()
	if err != nil {
		slog.Error("read schedule config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SchedulerUpdate handles PUT /api/scheduler. The stored configuration is
// updated first, then the running scheduler reconciles against it.
func (a *API) SchedulerUpdate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IntervalMinutes < 1 {
		writeError(w, http.StatusBadRequest, "interval_minutes must be at least 1")
		return
	}

	cfg, err := a.schedule.Update(req.IntervalMinutes, req.IsActive)
	if err != nil {
		slog.Error("update schedule config failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update schedule")
		return
	}

	a.trigger.Reconcile()

	slog.Info("schedule updated", "interval_minutes", cfg.IntervalMinutes, "active", cfg.IsActive)
	writeJSON(w, http.StatusOK, cfg)
}

// loadContent resolves the {id} path parameter to a content record,
// writing the error response itself on failure.
func (a *API) loadContent(w http.ResponseWriter, r *http.Request) (*models.Content, bool) {
	id, ok := pathUUID(w, r)
	if !ok {
		return nil, false
	}

	c, err := a.content.FindByID(id)
	if err != nil {
		slog.Error("find content failed", "content", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load content")
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return nil, false
	}
	return c, true
}

// pathUUID parses the {id} chi path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeHTML writes a rendered preview body.
func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
