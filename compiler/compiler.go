package compiler

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/buzzerlab/tonedelay"
)

//go:embed templates/*
var defaultTemplates embed.FS

// Compiler turns melodies into C sources for the jukebox firmware.
type Compiler struct {
	Template *template.Template
}

// New returns a new compiler using the built-in templates
func New() (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(defaultTemplates, "templates/*.*")
	if err != nil {
		return nil, fmt.Errorf(`could not parse built-in templates: %v`, err)
	}
	return &Compiler{Template: tmpl}, nil
}

func NewFromTemplates(templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl}, nil
}

// Melody returns the generated sources keyed by file extension (".h", ".c").
// header is the file name the .h source will be written to, so that the .c
// source includes the right file; empty means the melody name plus ".h".
func (com *Compiler) Melody(m tonedelay.Melody, header string) (map[string]string, error) {
	if len(m.Tones) == 0 && len(m.Delays) == 0 {
		return nil, fmt.Errorf("melody %q has no notes", m.Name)
	}
	templates := []string{"melody.h", "melody.c"}
	macros := NewMelodyMacros(m, header)
	retmap := map[string]string{}
	for _, templateName := range templates {
		populatedTemplate, extension, err := com.compile(templateName, macros)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data interface{}) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(templateName)
	return result.String(), extension, err
}
