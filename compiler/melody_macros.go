package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/buzzerlab/tonedelay"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MelodyMacros is the data passed to the melody templates.
type MelodyMacros struct {
	Melody tonedelay.Melody
	Notes  []tonedelay.Note
	// Ident is a valid C identifier derived from the melody name.
	Ident string
	// Title is the human readable name shown by the jukebox.
	Title string
	// Header is the file name the generated .c file includes.
	Header string
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NewMelodyMacros prepares m for the templates. header is the name of the
// header file the sources will be saved as; empty means the melody name.
func NewMelodyMacros(m tonedelay.Melody, header string) *MelodyMacros {
	name := m.Name
	if name == "" {
		name = "melody"
	}
	if header == "" {
		header = name + ".h"
	}
	return &MelodyMacros{
		Melody: m,
		Notes:  m.Notes(),
		Ident:  Ident(name),
		Title:  cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(name)),
		Header: header,
	}
}

// Ident converts s to a lower case C identifier: runs of invalid characters
// become a single underscore and a leading digit gets an underscore prefix.
func Ident(s string) string {
	id := strings.Trim(nonIdent.ReplaceAllString(strings.ToLower(s), "_"), "_")
	if id == "" {
		return "melody"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// Frequencies returns the note frequencies formatted as C double literals.
func (p *MelodyMacros) Frequencies() []string {
	ret := make([]string, len(p.Notes))
	for i, n := range p.Notes {
		s := strconv.FormatFloat(n.Frequency, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		ret[i] = s
	}
	return ret
}

// Durations returns the note durations in whole milliseconds.
func (p *MelodyMacros) Durations() []string {
	ret := make([]string, len(p.Notes))
	for i, n := range p.Notes {
		ret[i] = strconv.FormatUint(uint64(n.Duration), 10)
	}
	return ret
}

func (p *MelodyMacros) Length() int {
	return len(p.Notes)
}
