package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"asmexplorer/internal/disasm"
)

type jsonTree struct {
	Sections []jsonSection `json:"sections"`
}

type jsonSection struct {
	Name      string         `json:"name"`
	Functions []jsonFunction `json:"functions"`
}

type jsonFunction struct {
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Entries []jsonEntry `json:"entries"`
}

// jsonEntry is tagged by Kind: "instruction" carries Address, Raw and,
// when present, Decoded; "text" carries Text.
type jsonEntry struct {
	Kind    string  `json:"kind"`
	Address string  `json:"address,omitempty"`
	Raw     string  `json:"raw,omitempty"`
	Decoded *string `json:"decoded,omitempty"`
	Text    *string `json:"text,omitempty"`
}

// sanitize makes s valid UTF-8 so it survives JSON encoding intact.
func sanitize(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// WriteJSON encodes t as indented JSON.
func WriteJSON(w io.Writer, t *disasm.Tree, opts Options) error {
	out := jsonTree{Sections: make([]jsonSection, 0, len(t.Sections))}
	for _, s := range t.Sections {
		js := jsonSection{Name: sanitize(s.Name), Functions: make([]jsonFunction, 0, len(s.Functions))}
		for _, fn := range s.Functions {
			jf := jsonFunction{
				Name:    sanitize(opts.Name(fn.Name)),
				Address: fmt.Sprintf("0x%x", fn.Address),
				Entries: make([]jsonEntry, 0, len(fn.Entries)),
			}
			for _, e := range fn.Entries {
				disasm.Visit(e,
					func(in disasm.Instruction) {
						je := jsonEntry{
							Kind:    "instruction",
							Address: fmt.Sprintf("0x%x", in.Address),
							Raw:     strings.TrimRight(in.Raw, " "),
						}
						if in.HasDecoded {
							d := sanitize(in.Decoded)
							je.Decoded = &d
						}
						jf.Entries = append(jf.Entries, je)
					},
					func(tx disasm.Text) {
						line := sanitize(tx.Line)
						jf.Entries = append(jf.Entries, jsonEntry{Kind: "text", Text: &line})
					})
			}
			js.Functions = append(js.Functions, jf)
		}
		out.Sections = append(out.Sections, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
