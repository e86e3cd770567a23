// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pipeline drives the staged production of one article: category
// assignment, SEO research, writing, humanizing, visual generation, an
// optional interactive widget, and a final review. Stages run strictly in
// order; each is independently fallible, and only a writing failure aborts
// the run. The orchestrator persists the content record after every stage
// and publishes progress events as it goes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"autopress/internal/bus"
	"autopress/internal/models"
	"autopress/internal/prompts"
	"autopress/internal/slug"
)

// Stage names as they appear in progress events and stage results.
const (
	StageCategory    = "Category"
	StageResearch    = "Research"
	StageWriting     = "Writing"
	StageHumanizing  = "Humanizing"
	StageVisuals     = "Visuals"
	StageInteractive = "Interactive"
	StageReview      = "Review"
)

// Generator is the slice of the AI registry the pipeline consumes.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// Uploader stores generated image bytes and returns a public URL.
type Uploader interface {
	UploadImage(ctx context.Context, contentID uuid.UUID, data []byte, contentType string) (string, error)
}

// ContentStore is the subset of the content store the pipeline needs.
type ContentStore interface {
	Create(c *models.Content) (*models.Content, error)
	Update(c *models.Content) error
	SlugExists(slug string) (bool, error)
	ListTitles() ([]string, error)
}

// CategoryStore is the subset of the category store the pipeline needs.
type CategoryStore interface {
	List() ([]models.Category, error)
	FindByName(name string) (*models.Category, error)
	Create(c *models.Category) (*models.Category, error)
}

// AssetStore is the subset of the asset store the pipeline needs.
type AssetStore interface {
	Create(a *models.Asset) (*models.Asset, error)
	Update(a *models.Asset) error
}

// WidgetStore persists interactive blocks.
type WidgetStore interface {
	Create(b *models.InteractiveBlock) (*models.InteractiveBlock, error)
}

// Recorder receives one human-readable line per notable pipeline step.
// The scheduler uses it to build the run record's log. May be nil.
type Recorder func(message string)

// StageResult records the outcome of one stage.
type StageResult struct {
	Stage string `json:"stage"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Result is what a pipeline run returns regardless of partial failure:
// the content record as persisted, per-stage outcomes, and one error entry
// per failed stage. Stages never reached contribute nothing.
type Result struct {
	Content *models.Content `json:"content"`
	Stages  []StageResult   `json:"stages"`
	Errors  []string        `json:"errors"`
}

// Pipeline holds the collaborators of a run. Construct once, share freely;
// concurrent runs each operate on their own records.
type Pipeline struct {
	ai         Generator
	uploader   Uploader // nil when storage is unconfigured
	bus        *bus.Bus
	prompts    *prompts.Library
	content    ContentStore
	categories CategoryStore
	assets     AssetStore
	widgets    WidgetStore
	logger     *slog.Logger
}

// New creates a pipeline. uploader may be nil; image uploads are then
// skipped and placeholders stripped.
func New(gen Generator, uploader Uploader, eventBus *bus.Bus, lib *prompts.Library,
	content ContentStore, categories CategoryStore, assets AssetStore, widgets WidgetStore) *Pipeline {
	return &Pipeline{
		ai:         gen,
		uploader:   uploader,
		bus:        eventBus,
		prompts:    lib,
		content:    content,
		categories: categories,
		assets:     assets,
		widgets:    widgets,
		logger:     slog.Default().With("component", "pipeline"),
	}
}

// runState carries the mutable artifacts a run accumulates across stages.
type runState struct {
	topic    string
	content  *models.Content
	result   *Result
	recorder Recorder
}

// stageFn runs one stage against the state. A non-nil error marks the
// stage failed; fatal controls whether the run continues.
type stageFn func(ctx context.Context, st *runState) error

// Run executes the full stage sequence for one topic. Store errors on the
// content record's own bookkeeping abort the run and are returned; stage
// failures are folded into the result instead. The caller always receives
// a Result when the content record could be created.
func (p *Pipeline) Run(ctx context.Context, topic string, authorID *uuid.UUID, rec Recorder) (*Result, error) {
	st := &runState{
		topic:    topic,
		result:   &Result{},
		recorder: rec,
	}

	p.emit(st, "Pipeline", "run started")

	contentSlug, err := p.uniqueSlug(topic)
	if err != nil {
		return nil, fmt.Errorf("pipeline: derive slug: %w", err)
	}

	created, err := p.content.Create(&models.Content{
		Topic:    topic,
		Slug:     contentSlug,
		AuthorID: authorID,
		Status:   models.ContentStatusProcessing,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create content record: %w", err)
	}
	st.content = created
	st.result.Content = created

	stages := []struct {
		name  string
		fatal bool
		fn    stageFn
	}{
		{StageCategory, false, p.stageCategory},
		{StageResearch, false, p.stageResearch},
		{StageWriting, true, p.stageWriting},
		{StageHumanizing, false, p.stageHumanizing},
		{StageVisuals, false, p.stageVisuals},
		{StageInteractive, false, p.stageInteractive},
		{StageReview, false, p.stageReview},
	}

	aborted := false
	for _, s := range stages {
		p.emit(st, s.name, "stage started")

		stageErr := s.fn(ctx, st)
		if stageErr == nil {
			st.result.Stages = append(st.result.Stages, StageResult{Stage: s.name, OK: true})
		} else {
			p.logger.Warn("stage failed", "stage", s.name, "topic", topic, "error", stageErr)
			p.emit(st, s.name, "stage failed: "+stageErr.Error())
			st.result.Stages = append(st.result.Stages, StageResult{Stage: s.name, Error: stageErr.Error()})
			st.result.Errors = append(st.result.Errors, fmt.Sprintf("%s: %v", s.name, stageErr))
			if s.fatal {
				aborted = true
				break
			}
			continue
		}

		// Persist progress so a later abort keeps earlier artifacts.
		if err := p.content.Update(st.content); err != nil {
			return st.result, fmt.Errorf("pipeline: persist after %s: %w", s.name, err)
		}
	}

	if aborted {
		st.content.Status = models.ContentStatusDraft
	} else {
		st.content.Status = models.ContentStatusReview
	}
	if err := p.content.Update(st.content); err != nil {
		return st.result, fmt.Errorf("pipeline: finalize content record: %w", err)
	}

	if aborted {
		p.emit(st, "Pipeline", "run aborted, record kept as draft")
	} else {
		p.emit(st, "Pipeline", "run completed, record ready for review")
	}

	return st.result, nil
}

// emit publishes a progress event and mirrors it to the recorder.
func (p *Pipeline) emit(st *runState, stage, message string) {
	if p.bus != nil {
		p.bus.Publish(bus.Event{
			Topic:   st.topic,
			Stage:   stage,
			Message: message,
			At:      time.Now(),
		})
	}
	if st.recorder != nil {
		st.recorder(fmt.Sprintf("%s: %s", stage, message))
	}
}

// uniqueSlug derives a slug from the topic, appending a random suffix when
// the plain slug is already taken.
func (p *Pipeline) uniqueSlug(topic string) (string, error) {
	base := slug.Generate(topic)
	if base == "" {
		base = "untitled"
	}

	taken, err := p.content.SlugExists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	return slug.WithSuffix(base), nil
}

// generate calls the text capability with a capped fibonacci retry.
// Transport errors are retried; the last error is returned when attempts
// run out.
func (p *Pipeline) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var out string
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := p.ai.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
