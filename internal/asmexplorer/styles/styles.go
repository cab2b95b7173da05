// Package styles holds the terminal palette and the glamour style used to
// render summaries.
package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Listing colors, shared by the TUI and the plain-text renderer.
var (
	Address  = charmtone.Squid.Hex()
	Mnemonic = charmtone.Malibu.Hex()
	Comment  = charmtone.Guac.Hex()
	Section  = charmtone.Zest.Hex()
	Accent   = charmtone.Charple.Hex()
)

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// MarkdownStyle is the glamour configuration for summaries: headings in
// the accent color, tables and code blocks in the listing palette.
func MarkdownStyle() ansi.StyleConfig {
	heading := func(prefix string) ansi.StyleBlock {
		return ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			Prefix: prefix,
			Color:  stringPtr(charmtone.Malibu.Hex()),
			Bold:   boolPtr(true),
		}}
	}
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(charmtone.Smoke.Hex())},
			Margin:         uintPtr(1),
		},
		Heading: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			BlockSuffix: "\n",
			Color:       stringPtr(charmtone.Malibu.Hex()),
			Bold:        boolPtr(true),
		}},
		H1: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			Prefix:          " ",
			Suffix:          " ",
			Color:           stringPtr(charmtone.Zest.Hex()),
			BackgroundColor: stringPtr(Accent),
			Bold:            boolPtr(true),
		}},
		H2: heading("## "),
		H3: heading("### "),
		Strong: ansi.StylePrimitive{Bold: boolPtr(true)},
		Emph:   ansi.StylePrimitive{Italic: boolPtr(true)},
		Item:   ansi.StylePrimitive{BlockPrefix: "• "},
		Code: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			Color: stringPtr(Mnemonic),
		}},
		CodeBlock: ansi.StyleCodeBlock{StyleBlock: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(Address)},
			Margin:         uintPtr(2),
		}},
		Table: ansi.StyleTable{StyleBlock: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(charmtone.Smoke.Hex())},
		}},
	}
}

// MarkdownRenderer returns a renderer that wraps prose at width.
func MarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStyles(MarkdownStyle()),
		glamour.WithWordWrap(width),
	)
}

// RenderMarkdown renders md for a terminal of the given width. If the
// renderer cannot be built, md is returned unchanged.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := MarkdownRenderer(width - 2)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSuffix(out, "\n")
}
