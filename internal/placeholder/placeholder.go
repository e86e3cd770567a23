// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package placeholder locates and rewrites image placeholder tokens in
// generated Markdown. The writer model is instructed to mark illustration
// spots with [ASSET_PROMPT_n] tokens; this package extracts an ordered
// prompt list from them (pass 1) and splices generated image references
// back into the document (pass 2). A final cleanup strips tokens that were
// never substituted so no marker leaks into the published body.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder is one extracted token with the prompt that should be used
// to generate its image.
type Placeholder struct {
	Token  string // literal token, e.g. "[ASSET_PROMPT_2]"
	Number int
	Prompt string
}

var (
	tokenPattern = regexp.MustCompile(`\[ASSET_PROMPT_(\d+)\]`)
	// annotation is what may trail a token: a colon-suffixed prompt run to
	// end of line, or an HTML-comment note.
	annotationSuffix = `[ \t]*(?::[ \t]*[^\n]*|<!--.*?-->)?`
	cleanupPattern   = regexp.MustCompile(`\[ASSET_PROMPT_\d+\]` + annotationSuffix)
	blankRuns        = regexp.MustCompile(`\n{3,}`)
	commentNote      = regexp.MustCompile(`^<!--(.*?)-->`)
)

// Extract returns the placeholders of body in order of first appearance.
// The prompt for each token is resolved from, in order of preference: a
// colon-suffixed text run on the same line, an adjacent comment-style
// annotation, the nearest preceding section heading, or a generic fallback.
func Extract(body string) []Placeholder {
	var (
		found   []Placeholder
		seen    = map[int]bool{}
		heading string
	)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			heading = strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
			continue
		}

		for _, loc := range tokenPattern.FindAllStringSubmatchIndex(line, -1) {
			n, err := strconv.Atoi(line[loc[2]:loc[3]])
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true

			found = append(found, Placeholder{
				Token:  line[loc[0]:loc[1]],
				Number: n,
				Prompt: resolvePrompt(line[loc[1]:], heading, n),
			})
		}
	}

	return found
}

// resolvePrompt derives the image prompt from the text trailing a token.
func resolvePrompt(rest, heading string, n int) string {
	rest = strings.TrimLeft(rest, " \t")

	// Explicit colon-suffixed prompt: "[ASSET_PROMPT_2]: custom prompt".
	if strings.HasPrefix(rest, ":") {
		if p := strings.TrimSpace(rest[1:]); p != "" {
			return p
		}
	}

	// Comment-style annotation: "[ASSET_PROMPT_2] <!-- custom prompt -->".
	if m := commentNote.FindStringSubmatch(rest); m != nil {
		if p := strings.TrimSpace(m[1]); p != "" {
			return p
		}
	}

	if heading != "" {
		return "Illustration for: " + heading
	}
	return fmt.Sprintf("section illustration %d", n)
}

// Substitute replaces every occurrence of the literal token, together with
// any trailing colon-text or comment annotation, with a Markdown image
// embed. The match is anchored to the regex-escaped token so numbered
// tokens never cross-match ([ASSET_PROMPT_1] does not touch
// [ASSET_PROMPT_12]).
func Substitute(body, token, url, altText string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(token) + annotationSuffix)
	embed := fmt.Sprintf("![%s](%s)", altText, url)
	return re.ReplaceAllLiteralString(body, embed)
}

// Cleanup strips any remaining tokens and their annotations, then collapses
// the blank-line runs left behind. Running it on an already-clean document
// is a no-op.
func Cleanup(body string) string {
	out := cleanupPattern.ReplaceAllString(body, "")
	return blankRuns.ReplaceAllString(out, "\n\n")
}
