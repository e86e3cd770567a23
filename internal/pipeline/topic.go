// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ChooseTopic picks a fresh article topic autonomously. Existing titles go
// into the prompt so the model avoids overlap; the instruction is the only
// guard, so a returned duplicate is accepted as-is.
func (p *Pipeline) ChooseTopic(ctx context.Context) (string, error) {
	titles, err := p.content.ListTitles()
	if err != nil {
		return "", fmt.Errorf("choose topic: list titles: %w", err)
	}

	userPrompt := "Existing titles:\n(none)"
	if len(titles) > 0 {
		userPrompt = "Existing titles:\n" + strings.Join(titles, "\n")
	}

	answer, err := p.generate(ctx, p.prompts.TopicSelection, userPrompt)
	if err != nil {
		return "", fmt.Errorf("choose topic: %w", err)
	}

	topic := firstLine(answer)
	if topic == "" {
		return "", errors.New("choose topic: empty answer")
	}
	return topic, nil
}
