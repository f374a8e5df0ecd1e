package compiler_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buzzerlab/tonedelay"
	"github.com/buzzerlab/tonedelay/compiler"
)

func TestMelodySources(t *testing.T) {
	comp, err := compiler.New()
	require.NoError(t, err)
	m := tonedelay.Melody{
		Name:      "happy_birthday",
		Tones:     []float64{262, 294.5},
		Delays:    []float64{250, 500, 125},
		ToneCount: 2,
	}
	sources, err := comp.Melody(m, "")
	require.NoError(t, err)
	require.Contains(t, sources, ".h")
	require.Contains(t, sources, ".c")

	h := sources[".h"]
	assert.Contains(t, h, "#ifndef HAPPY_BIRTHDAY_MELODY_H_")
	assert.Contains(t, h, "#define HAPPY_BIRTHDAY_LENGTH 3")
	assert.Contains(t, h, "extern const melody_t happy_birthday_melody;")

	c := sources[".c"]
	assert.Contains(t, c, `#include "happy_birthday.h"`)
	assert.Contains(t, c, "happy_birthday_notes[HAPPY_BIRTHDAY_LENGTH] = {262.0, 294.5, 0.0};")
	assert.Contains(t, c, "happy_birthday_durations[HAPPY_BIRTHDAY_LENGTH] = {250, 500, 125};")
	assert.Contains(t, c, `.p_name = "Happy Birthday",`)
}

func TestMelodyHeaderName(t *testing.T) {
	comp, err := compiler.New()
	require.NoError(t, err)
	m := tonedelay.Melody{Name: "eva", Tones: []float64{440}, Delays: []float64{100}, ToneCount: 1}
	sources, err := comp.Melody(m, "foo.h")
	require.NoError(t, err)
	assert.Contains(t, sources[".c"], `#include "foo.h"`)
	assert.NotContains(t, sources[".c"], "eva.h")
	assert.Contains(t, sources[".c"], "eva_notes")
}

func TestMelodyWithoutNotes(t *testing.T) {
	comp, err := compiler.New()
	require.NoError(t, err)
	_, err = comp.Melody(tonedelay.Melody{Name: "empty"}, "")
	assert.Error(t, err)
}

func TestNewFromTemplates(t *testing.T) {
	dir := t.TempDir()
	tmpl := `{{.Ident}}:{{.Frequencies | join ","}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "melody.h"), []byte(tmpl), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "melody.c"), []byte("{{.Length}}"), 0644))
	comp, err := compiler.NewFromTemplates(dir)
	require.NoError(t, err)
	sources, err := comp.Melody(tonedelay.Melody{Name: "eva", Tones: []float64{440}, Delays: []float64{10}, ToneCount: 1}, "")
	require.NoError(t, err)
	assert.Equal(t, "eva:440.0", sources[".h"])
	assert.Equal(t, "1", sources[".c"])
}

func TestIdent(t *testing.T) {
	tests := map[string]string{
		"eva":            "eva",
		"Happy Birthday": "happy_birthday",
		"2-tone song!":   "_2_tone_song",
		"***":            "melody",
	}
	for in, want := range tests {
		assert.Equal(t, want, compiler.Ident(in), "input %q", in)
	}
	assert.False(t, strings.ContainsAny(compiler.Ident("a.b c"), ". "))
}
