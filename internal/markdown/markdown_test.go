// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "headings and emphasis",
			source: "## Setup\n\nRun the **installer** first.",
			want:   []string{"<h2", ">Setup</h2>", "<strong>installer</strong>"},
		},
		{
			name:   "gfm table",
			source: "| Flag | Default |\n|------|---------|\n| -v | false |",
			want:   []string{"<table>", "<th>Flag</th>", "<td>-v</td>"},
		},
		{
			name:   "image link",
			source: "![a server rack](https://cdn.example/img.png)",
			want:   []string{`<img src="https://cdn.example/img.png"`, `alt="a server rack"`},
		},
		{
			name:   "fenced code block is highlighted",
			source: "```go\nfunc main() {}\n```",
			want:   []string{"<pre", "main"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML("before <script>alert(1)</script> after")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %s", got)
	}
}

func TestToHTMLHeadingIDs(t *testing.T) {
	got, err := ToHTML("## Main Content")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(got, `id="main-content"`) {
		t.Errorf("auto heading id missing: %s", got)
	}
}
