package styles

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# asmexplorer\n\n| Section | Functions |\n|---|---|\n| .text | 2 |\n", 60)
	for _, want := range []string{"asmexplorer", ".text"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output lacks %q:\n%s", want, out)
		}
	}
}
