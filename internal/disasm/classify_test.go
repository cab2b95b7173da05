package disasm

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Line
	}{
		{
			name: "section header",
			line: "Disassembly of section .text:",
			want: Line{Kind: KindSection, SectionName: ".text"},
		},
		{
			name: "section header with wide gap",
			line: "Disassembly of section \t .init_array:",
			want: Line{Kind: KindSection, SectionName: ".init_array"},
		},
		{
			name: "function header",
			line: "0000000000401000 <main>:",
			want: Line{Kind: KindFunction, Address: 0x401000, FunctionName: "main"},
		},
		{
			name: "demangled function header",
			line: "0000000000401a2C <std::vector<int, std::allocator<int> >::push_back(int const&)>:",
			want: Line{
				Kind:         KindFunction,
				Address:      0x401a2c,
				FunctionName: "std::vector<int, std::allocator<int> >::push_back(int const&)",
			},
		},
		{
			name: "instruction with decoded column",
			line: "  401000:\t55\tpush %rbp",
			want: Line{Kind: KindInstruction, Address: 0x401000, Raw: "55", Decoded: "push %rbp", HasDecoded: true},
		},
		{
			name: "instruction without decoded column",
			line: "  401000:\t48 89 e5",
			want: Line{Kind: KindInstruction, Address: 0x401000, Raw: "48 89 e5"},
		},
		{
			name: "instruction with trailing byte padding",
			line: "  401004:\t48 83 ec 10          \tsub    $0x10,%rsp",
			want: Line{
				Kind:       KindInstruction,
				Address:    0x401004,
				Raw:        "48 83 ec 10          ",
				Decoded:    "sub    $0x10,%rsp",
				HasDecoded: true,
			},
		},
		{
			name: "instruction with empty decoded column",
			line: "  401008:\t90\t",
			want: Line{Kind: KindInstruction, Address: 0x401008, Raw: "90", HasDecoded: true},
		},
		{
			name: "uppercase hex",
			line: "  DEADBEEF:\tC3\tret",
			want: Line{Kind: KindInstruction, Address: 0xdeadbeef, Raw: "C3", Decoded: "ret", HasDecoded: true},
		},
		{
			name: "comment",
			line: "; comment line",
			want: Line{Kind: KindText, Text: "; comment line"},
		},
		{
			name: "blank",
			line: "",
			want: Line{Kind: KindText},
		},
		{
			name: "interleaved source",
			line: "int main(void) {",
			want: Line{Kind: KindText, Text: "int main(void) {"},
		},
		{
			name: "file banner",
			line: "a.out:     file format elf64-x86-64",
			want: Line{Kind: KindText, Text: "a.out:     file format elf64-x86-64"},
		},
		{
			name: "overflowing address falls back to zero",
			line: "  1ffffffffffffffff:\t90\tnop",
			want: Line{Kind: KindInstruction, Address: 0, Raw: "90", Decoded: "nop", HasDecoded: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// A section header whose name looks like a function header is still a
	// section header.
	l := Classify("Disassembly of section 0000 <x>:")
	if l.Kind != KindSection {
		t.Fatalf("got %v, want section", l.Kind)
	}
	if l.SectionName != "0000 <x>" {
		t.Errorf("section name = %q", l.SectionName)
	}

	// A function header never falls through to the instruction pattern.
	if k := Classify("401000 <f>:").Kind; k != KindFunction {
		t.Errorf("got %v, want function", k)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		KindText:        "text",
		KindSection:     "section",
		KindFunction:    "function",
		KindInstruction: "instruction",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
