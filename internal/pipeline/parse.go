// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// parse.go decodes the line-oriented structured answers the stage prompts
// request. Parsing is deliberately forgiving about ordering and blank
// lines but strict about the presence of required fields.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"autopress/internal/models"
)

// seoPlan is the parsed output of the research stage.
type seoPlan struct {
	keywords    []string
	description string
	outline     []models.OutlineSection
}

// parseSEOPlan reads the KEYWORDS: / DESCRIPTION: / SECTION: format.
// SECTION lines are "heading | sub1; sub2" with the subheadings optional.
func parseSEOPlan(text string) (*seoPlan, error) {
	plan := &seoPlan{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "KEYWORDS:"):
			for _, kw := range strings.Split(strings.TrimPrefix(line, "KEYWORDS:"), ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					plan.keywords = append(plan.keywords, kw)
				}
			}
		case strings.HasPrefix(line, "DESCRIPTION:"):
			plan.description = strings.TrimSpace(strings.TrimPrefix(line, "DESCRIPTION:"))
		case strings.HasPrefix(line, "SECTION:"):
			section := parseSection(strings.TrimPrefix(line, "SECTION:"))
			if section.Heading != "" {
				plan.outline = append(plan.outline, section)
			}
		}
	}

	if len(plan.keywords) == 0 {
		return nil, errors.New("parse seo plan: no keywords")
	}
	if len(plan.outline) == 0 {
		return nil, errors.New("parse seo plan: no sections")
	}
	return plan, nil
}

// parseSection splits "heading | sub1; sub2" into an outline section.
func parseSection(s string) models.OutlineSection {
	heading, subs, _ := strings.Cut(s, "|")
	section := models.OutlineSection{Heading: strings.TrimSpace(heading)}
	for _, sub := range strings.Split(subs, ";") {
		if sub = strings.TrimSpace(sub); sub != "" {
			section.Subheadings = append(section.Subheadings, sub)
		}
	}
	return section
}

// parseTitleBody splits the writer's answer into title and markdown body.
// The first line must carry the TITLE: prefix.
func parseTitleBody(text string) (string, string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", "", errors.New("empty answer")
	}

	line, rest, _ := strings.Cut(trimmed, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "TITLE:") {
		return "", "", errors.New("missing TITLE line")
	}

	title := strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
	if title == "" {
		return "", "", errors.New("empty title")
	}

	body := strings.TrimSpace(rest)
	if body == "" {
		return "", "", errors.New("empty body")
	}
	return title, body, nil
}

// interactiveDecision is a parsed non-NONE answer of the interactive stage.
type interactiveDecision struct {
	kind   models.InteractiveKind
	config json.RawMessage
}

// parseInteractive reads the widget decision. A NONE answer returns
// (nil, nil); otherwise the KIND must be a supported widget and CONFIG
// must be valid JSON.
func parseInteractive(text string) (*interactiveDecision, error) {
	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, "NONE") {
		return nil, nil
	}

	var kind, config string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "KIND:"):
			kind = strings.TrimSpace(strings.TrimPrefix(line, "KIND:"))
		case strings.HasPrefix(line, "CONFIG:"):
			config = strings.TrimSpace(strings.TrimPrefix(line, "CONFIG:"))
		}
	}

	k := models.InteractiveKind(strings.ToLower(kind))
	if !models.ValidInteractiveKind(k) {
		return nil, fmt.Errorf("unsupported widget kind %q", kind)
	}
	if config == "" || !json.Valid([]byte(config)) {
		return nil, errors.New("invalid widget config JSON")
	}

	return &interactiveDecision{kind: k, config: json.RawMessage(config)}, nil
}
