// Package elfx inspects binaries before they are handed to the
// disassembler: content digest, ELF kind and machine, and section headers.
package elfx

import (
	"crypto/sha256"
	"debug/elf"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Info describes an input binary.
type Info struct {
	Path     string
	Digest   string // sha256, lowercase hex
	Size     int64
	Kind     string // executable, library, relocatable, core or unknown
	Machine  string // empty for non-ELF input
	Sections []Section
}

// Section is an ELF section header reduced to what the summary shows.
type Section struct {
	Name string
	Addr uint64
	Size uint64
	Exec bool
}

// Describe reads path. Files that are not ELF get Kind "unknown" and no
// sections; the disassembler may still understand them.
func Describe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	digest, err := digestReader(f)
	if err != nil {
		return nil, err
	}
	info := &Info{Path: path, Digest: digest, Size: fi.Size(), Kind: "unknown"}

	ef, err := elf.NewFile(f)
	if err != nil {
		var fe *elf.FormatError
		if errors.As(err, &fe) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return info, nil
		}
		return nil, fmt.Errorf("read elf: %w", err)
	}
	defer ef.Close()

	info.Kind = kind(ef.Type)
	info.Machine = ef.Machine.String()
	for _, s := range ef.Sections {
		if s.Name == "" {
			continue
		}
		info.Sections = append(info.Sections, Section{
			Name: s.Name,
			Addr: s.Addr,
			Size: s.Size,
			Exec: s.Flags&elf.SHF_EXECINSTR != 0,
		})
	}
	return info, nil
}

// Digest returns the sha256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return digestReader(f)
}

func digestReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("calculate digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func kind(t elf.Type) string {
	switch t {
	case elf.ET_EXEC:
		return "executable"
	case elf.ET_DYN:
		return "library"
	case elf.ET_REL:
		return "relocatable"
	case elf.ET_CORE:
		return "core"
	default:
		return "unknown"
	}
}

// ExecSections returns the sections holding executable code, which are the
// ones objdump -d lists.
func (i *Info) ExecSections() []Section {
	var out []Section
	for _, s := range i.Sections {
		if s.Exec {
			out = append(out, s)
		}
	}
	return out
}
