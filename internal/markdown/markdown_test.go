package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "paragraph",
			source: "Senior engineer at Acme.",
			want:   "<p>Senior engineer at Acme.</p>",
		},
		{
			name:   "bold and link",
			source: "**Call me** at [my site](https://example.com)",
			want:   `<a href="https://example.com">my site</a>`,
		},
		{
			name:   "gfm autolink",
			source: "Reach me via https://example.com/contact",
			want:   `<a href="https://example.com/contact">`,
		},
		{
			name:   "gfm strikethrough",
			source: "~~old title~~ new title",
			want:   "<del>old title</del>",
		},
		{
			name:   "heading gets anchor id",
			source: "## About Me",
			want:   `<h2 id="about-me">About Me</h2>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("got %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

// Raw HTML in a description must come out escaped, not executable.
func TestToHTMLEscapesRawHTML(t *testing.T) {
	got, err := ToHTML(`Hello <script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %q", got)
	}
}
