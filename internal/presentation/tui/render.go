// Package tui renders funnel steps for the interactive terminal walker.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/quizkit/quizkit/pkg/funnel"
)

// Renderer styles funnel steps for a terminal.
type Renderer struct {
	profile  termenv.Profile
	markdown *glamour.TermRenderer
}

// NewRenderer detects the terminal color profile.
func NewRenderer() *Renderer {
	// Result bodies are commonly authored in markdown.
	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	return &Renderer{profile: termenv.ColorProfile(), markdown: md}
}

// Step renders one funnel node as styled terminal output.
func (r *Renderer) Step(node funnel.Node) string {
	var sb strings.Builder

	title := termenv.String(node.Label).Foreground(r.profile.Color("#818cf8")).Bold()
	sb.WriteString(fmt.Sprintf("\n%s\n", title))

	switch node.Type {
	case funnel.NodeTypeQuestion:
		if node.Data.Question != "" && node.Data.Question != node.Label {
			sb.WriteString(node.Data.Question + "\n")
		}
		for i, opt := range node.Data.Options {
			num := termenv.String(fmt.Sprintf("  %d)", i+1)).Foreground(r.profile.Color("#a78bfa"))
			sb.WriteString(fmt.Sprintf("%s %s\n", num, opt.Label))
		}
	case funnel.NodeTypeContent:
		if node.Data.HTML != "" {
			sb.WriteString(stripTags(node.Data.HTML) + "\n")
		}
	case funnel.NodeTypeForm:
		for _, field := range node.Data.FormFields {
			marker := " "
			if field.Required {
				marker = "*"
			}
			sb.WriteString(fmt.Sprintf("  %s %s\n", marker, field.Label))
		}
	case funnel.NodeTypeResult:
		if node.Data.Result != nil {
			if node.Data.Result.Body != "" {
				sb.WriteString(r.renderBody(node.Data.Result.Body))
			}
			if node.Data.Result.CTAURL != "" {
				cta := termenv.String(node.Data.Result.CTAURL).Foreground(r.profile.Color("#34d399")).Underline()
				label := node.Data.Result.CTALabel
				if label == "" {
					label = "Next"
				}
				sb.WriteString(fmt.Sprintf("%s: %s\n", label, cta))
			}
		}
	}

	return sb.String()
}

func (r *Renderer) renderBody(body string) string {
	if r.markdown != nil {
		if out, err := r.markdown.Render(body); err == nil {
			return out
		}
	}
	return body + "\n"
}

// Prompt renders an input prompt.
func (r *Renderer) Prompt(text string) string {
	return termenv.String(text+" ").Foreground(r.profile.Color("#e879f9")).String()
}

// Notice renders a dim informational line.
func (r *Renderer) Notice(text string) string {
	return termenv.String(text).Faint().String()
}

// stripTags performs a crude tag removal so content steps read cleanly
// in a terminal. It is display-only; stored markup is never modified.
func stripTags(html string) string {
	var sb strings.Builder
	inTag := false
	for _, ch := range html {
		switch {
		case ch == '<':
			inTag = true
		case ch == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(ch)
		}
	}
	return strings.TrimSpace(sb.String())
}
