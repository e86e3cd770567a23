// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package prompts holds the system prompts used by the pipeline stages.
// Defaults are embedded at compile time; a deployment can override any of
// them with a YAML file.
package prompts

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Library is the set of stage system prompts.
type Library struct {
	TopicSelection string `yaml:"topic_selection"`
	Category       string `yaml:"category"`
	Research       string `yaml:"research"`
	Writer         string `yaml:"writer"`
	Humanizer      string `yaml:"humanizer"`
	AltText        string `yaml:"alt_text"`
	Interactive    string `yaml:"interactive"`
	Review         string `yaml:"review"`
}

// Load parses the embedded defaults and, when overridePath is non-empty,
// overlays any prompts set in that file. Keys absent from the override keep
// their embedded value.
func Load(overridePath string) (*Library, error) {
	lib := &Library{}
	if err := yaml.Unmarshal(defaultPrompts, lib); err != nil {
		return nil, fmt.Errorf("prompts: parse embedded defaults: %w", err)
	}

	if overridePath == "" {
		return lib, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("prompts: read override %s: %w", overridePath, err)
	}

	var override Library
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("prompts: parse override %s: %w", overridePath, err)
	}
	lib.merge(&override)

	return lib, nil
}

func (l *Library) merge(o *Library) {
	if o.TopicSelection != "" {
		l.TopicSelection = o.TopicSelection
	}
	if o.Category != "" {
		l.Category = o.Category
	}
	if o.Research != "" {
		l.Research = o.Research
	}
	if o.Writer != "" {
		l.Writer = o.Writer
	}
	if o.Humanizer != "" {
		l.Humanizer = o.Humanizer
	}
	if o.AltText != "" {
		l.AltText = o.AltText
	}
	if o.Interactive != "" {
		l.Interactive = o.Interactive
	}
	if o.Review != "" {
		l.Review = o.Review
	}
}
