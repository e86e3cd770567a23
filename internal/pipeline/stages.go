// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"autopress/internal/models"
	"autopress/internal/placeholder"
	"autopress/internal/slug"
)

// maxInlineImages bounds how many body placeholders get a generated image.
// Anything beyond that is stripped during cleanup.
const maxInlineImages = 3

// stageCategory asks the AI to pick or propose a category and attaches it.
// The pipeline continues uncategorized on failure.
func (p *Pipeline) stageCategory(ctx context.Context, st *runState) error {
	existing, err := p.categories.List()
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}

	names := make([]string, 0, len(existing))
	for _, c := range existing {
		names = append(names, c.Name)
	}

	userPrompt := fmt.Sprintf("Topic: %s\n\nExisting categories:\n%s",
		st.topic, strings.Join(names, "\n"))

	answer, err := p.generate(ctx, p.prompts.Category, userPrompt)
	if err != nil {
		return fmt.Errorf("category suggestion: %w", err)
	}

	name := firstLine(answer)
	if name == "" {
		return errors.New("category suggestion: empty answer")
	}

	cat, err := p.categories.FindByName(name)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		cat, err = p.categories.Create(&models.Category{
			Name: name,
			Slug: slug.Generate(name),
		})
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
	}

	st.content.CategoryID = &cat.ID
	return nil
}

// stageResearch derives keywords, outline, and meta description. On any
// failure the fixed fallback outline is installed so downstream stages
// always receive a valid plan; the failure is still reported.
func (p *Pipeline) stageResearch(ctx context.Context, st *runState) error {
	answer, err := p.generate(ctx, p.prompts.Research, "Topic: "+st.topic)
	if err == nil {
		var plan *seoPlan
		plan, err = parseSEOPlan(answer)
		if err == nil {
			st.content.Keywords = plan.keywords
			st.content.Outline = plan.outline
			if plan.description != "" {
				st.content.MetaDescription = &plan.description
			}
			return nil
		}
	}

	st.content.Keywords = []string{st.topic}
	st.content.Outline = []models.OutlineSection{
		{Heading: "Introduction"},
		{Heading: "Main Content"},
		{Heading: "Conclusion"},
	}
	return fmt.Errorf("seo research: %w", err)
}

// stageWriting produces the title and body. This is the only fatal stage;
// both transport and parse errors propagate because every later stage
// depends on its output.
func (p *Pipeline) stageWriting(ctx context.Context, st *runState) error {
	var outline strings.Builder
	for _, s := range st.content.Outline {
		outline.WriteString("- " + s.Heading)
		if len(s.Subheadings) > 0 {
			outline.WriteString(" (" + strings.Join(s.Subheadings, ", ") + ")")
		}
		outline.WriteString("\n")
	}

	userPrompt := fmt.Sprintf("Topic: %s\nKeywords: %s\n\nOutline:\n%s",
		st.topic, strings.Join(st.content.Keywords, ", "), outline.String())

	answer, err := p.generate(ctx, p.prompts.Writer, userPrompt)
	if err != nil {
		return fmt.Errorf("writing: %w", err)
	}

	title, body, err := parseTitleBody(answer)
	if err != nil {
		return fmt.Errorf("writing: %w", err)
	}

	st.content.Title = title
	st.content.Body = body
	return nil
}

// stageHumanizing rewrites the body for natural tone. The prior body is
// kept unchanged on failure.
func (p *Pipeline) stageHumanizing(ctx context.Context, st *runState) error {
	answer, err := p.generate(ctx, p.prompts.Humanizer, st.content.Body)
	if err != nil {
		return fmt.Errorf("humanizing: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return errors.New("humanizing: empty rewrite")
	}

	st.content.Body = strings.TrimSpace(answer)
	return nil
}

// stageVisuals generates the thumbnail and up to maxInlineImages body
// images. The thumbnail is tolerated failing silently; per-placeholder
// failures are isolated, and every unsubstituted token is stripped so no
// placeholder dangles in the final body.
func (p *Pipeline) stageVisuals(ctx context.Context, st *runState) error {
	p.generateThumbnail(ctx, st)

	var itemErrs []error
	tokens := placeholder.Extract(st.content.Body)
	for i, ph := range tokens {
		if i >= maxInlineImages {
			break
		}
		if err := p.generateInlineImage(ctx, st, ph); err != nil {
			itemErrs = append(itemErrs, fmt.Errorf("placeholder %d: %w", ph.Number, err))
		}
	}

	st.content.Body = placeholder.Cleanup(st.content.Body)

	return errors.Join(itemErrs...)
}

// generateThumbnail attempts one thumbnail image independent of the body.
// Any failure, or a provider that yields no image, leaves the record
// without a thumbnail.
func (p *Pipeline) generateThumbnail(ctx context.Context, st *runState) {
	if p.uploader == nil {
		return
	}

	prompt := "Cover illustration for an article titled: " + st.content.Title
	data, contentType, err := p.ai.GenerateImage(ctx, prompt)
	if err != nil || data == nil {
		if err != nil {
			p.logger.Debug("thumbnail generation failed", "topic", st.topic, "error", err)
		}
		return
	}

	url, err := p.uploader.UploadImage(ctx, st.content.ID, data, contentType)
	if err != nil {
		p.logger.Debug("thumbnail upload failed", "topic", st.topic, "error", err)
		return
	}
	st.content.ThumbnailURL = &url
}

// generateInlineImage handles one placeholder: reserve the asset row,
// generate, upload, caption, substitute. A failed step leaves the token
// for cleanup to strip.
func (p *Pipeline) generateInlineImage(ctx context.Context, st *runState, ph placeholder.Placeholder) error {
	asset, err := p.assets.Create(&models.Asset{
		ContentID: st.content.ID,
		Prompt:    ph.Prompt,
		Position:  ph.Number,
	})
	if err != nil {
		return fmt.Errorf("reserve asset: %w", err)
	}

	if p.uploader == nil {
		return errors.New("storage unconfigured")
	}

	data, contentType, err := p.ai.GenerateImage(ctx, ph.Prompt)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if data == nil {
		return errors.New("provider yielded no image")
	}

	url, err := p.uploader.UploadImage(ctx, st.content.ID, data, contentType)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	// Alt-text failure is isolated; the image prompt captions the image.
	altText := ph.Prompt
	if alt, err := p.generate(ctx, p.prompts.AltText, ph.Prompt); err == nil && firstLine(alt) != "" {
		altText = firstLine(alt)
	}

	asset.URL = &url
	asset.AltText = &altText
	if err := p.assets.Update(asset); err != nil {
		return fmt.Errorf("record upload: %w", err)
	}

	st.content.Body = placeholder.Substitute(st.content.Body, ph.Token, url, altText)
	return nil
}

// stageInteractive asks whether the article warrants a widget. A NONE
// decision is a success, not a failure.
func (p *Pipeline) stageInteractive(ctx context.Context, st *runState) error {
	userPrompt := fmt.Sprintf("Title: %s\n\n%s", st.content.Title, st.content.Body)
	answer, err := p.generate(ctx, p.prompts.Interactive, userPrompt)
	if err != nil {
		return fmt.Errorf("interactive decision: %w", err)
	}

	decision, err := parseInteractive(answer)
	if err != nil {
		return fmt.Errorf("interactive decision: %w", err)
	}
	if decision == nil {
		return nil
	}

	if _, err := p.widgets.Create(&models.InteractiveBlock{
		ContentID: st.content.ID,
		Kind:      decision.kind,
		Config:    decision.config,
	}); err != nil {
		return fmt.Errorf("persist interactive block: %w", err)
	}
	return nil
}

var imageLinkPattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)

// stageReview runs the holistic polish pass. The rewrite is discarded, and
// the stage fails, if it is empty or drops any image link the body carried.
func (p *Pipeline) stageReview(ctx context.Context, st *runState) error {
	answer, err := p.generate(ctx, p.prompts.Review, st.content.Body)
	if err != nil {
		return fmt.Errorf("final review: %w", err)
	}

	polished := strings.TrimSpace(answer)
	if polished == "" {
		return errors.New("final review: empty rewrite")
	}

	for _, m := range imageLinkPattern.FindAllStringSubmatch(st.content.Body, -1) {
		if !strings.Contains(polished, m[1]) {
			return fmt.Errorf("final review: rewrite dropped image %s", m[1])
		}
	}

	st.content.Body = polished
	return nil
}

// firstLine returns the first non-empty trimmed line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
