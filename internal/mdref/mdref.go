// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mdref checks that transcribed markdown embeds the region crops
// produced for it.
package mdref

import (
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Report lists how the markdown's image references line up with the crops.
type Report struct {
	Referenced   []string // crops embedded at least once
	Unreferenced []string // crops never embedded
	Unknown      []string // local image references that are not crops
}

// Images returns the destinations of every image node, in document order.
func Images(markdown string) []string {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			out = append(out, string(img.Destination))
		}
		return ast.WalkContinue, nil
	})
	return out
}

// Audit compares the image references in markdown against crop names.
// References are matched by base name so "./0_1.png" and "out/0_1.png"
// both count. Remote URLs and empty destinations are ignored.
func Audit(markdown string, crops []string) Report {
	known := make(map[string]bool, len(crops))
	for _, c := range crops {
		known[c] = false
	}

	unknown := map[string]bool{}
	for _, dest := range Images(markdown) {
		if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "data:") {
			continue
		}
		name := path.Base(dest)
		if _, ok := known[name]; ok {
			known[name] = true
			continue
		}
		unknown[name] = true
	}

	r := Report{Referenced: []string{}, Unreferenced: []string{}, Unknown: []string{}}
	for _, c := range crops {
		if known[c] {
			r.Referenced = append(r.Referenced, c)
		} else {
			r.Unreferenced = append(r.Unreferenced, c)
		}
	}
	for name := range unknown {
		r.Unknown = append(r.Unknown, name)
	}
	sort.Strings(r.Unknown)
	return r
}
