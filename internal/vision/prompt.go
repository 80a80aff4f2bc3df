// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// DefaultRolePrompt is the system message.
const DefaultRolePrompt = `You are a PDF document parser. Output the content of the image using markdown and LaTeX syntax.
`

// DefaultPrompt is the base user instruction sent with every page.
const DefaultPrompt = `Using markdown syntax, convert the recognized text in the image to markdown format output. You must:
1. Output and use the same language detected in the image, for example, if a field is detected as English, the output must be in English.
2. Do not explain or output irrelevant text, directly output the content in the image. For example, it is strictly forbidden to output examples like "The following is the markdown text I generated based on the image content:"; instead, output the markdown text directly.
3. Do not wrap the content with ` + "```markdown ```" + `, use $$ $$ for block formulas, $ $ for inline formulas, ignore long straight lines, and ignore page numbers.
To reiterate, do not explain or output irrelevant text, just output the content in the image directly.
`

// DefaultRegionPrompt is appended when the page has labelled regions.
// {{.Labels}} expands to the comma-separated crop file names.
const DefaultRegionPrompt = `Some areas are marked in the image with a red box and label ({{.Labels}}). If the area is a table or image, use ![]() to insert it into the output; otherwise, output the text content directly.
`

// Prompts are the three instructions sent to the model.
type Prompts struct {
	Role   string
	Base   string
	Region *template.Template
}

// NewPrompts builds Prompts from configuration, using the defaults for any
// empty field.
func NewPrompts(cfg types.VisionConfig) (Prompts, error) {
	p := Prompts{Role: cfg.RolePrompt, Base: cfg.Prompt}
	if p.Role == "" {
		p.Role = DefaultRolePrompt
	}
	if p.Base == "" {
		p.Base = DefaultPrompt
	}
	region := cfg.RegionPrompt
	if region == "" {
		region = DefaultRegionPrompt
	}
	tmpl, err := template.New("region").Parse(region)
	if err != nil {
		return Prompts{}, fmt.Errorf("parsing region prompt: %w", err)
	}
	p.Region = tmpl
	return p, nil
}

// DefaultPrompts returns the built-in prompts.
func DefaultPrompts() Prompts {
	p, err := NewPrompts(types.VisionConfig{})
	if err != nil {
		panic(err)
	}
	return p
}

// BuildUserPrompt returns the base prompt, followed by the region prompt
// when the page has labelled regions.
func BuildUserPrompt(p Prompts, labels []string) (string, error) {
	if len(labels) == 0 || p.Region == nil {
		return p.Base, nil
	}
	var buf bytes.Buffer
	buf.WriteString(p.Base)
	data := struct{ Labels string }{Labels: strings.Join(labels, ", ")}
	if err := p.Region.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering region prompt: %w", err)
	}
	return buf.String(), nil
}
