package tonedelay

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultFilename is the sketch scanned when no path is given.
const DefaultFilename = "eva.ino"

type (
	// Melody holds the values extracted from a sketch. Tones and Delays are
	// kept in the order they appear in the source and are independent of each
	// other: the i-th tone and the i-th delay need not come from neighbouring
	// lines. ToneCount is tracked separately from len(Tones) but always equals
	// it after a successful scan.
	Melody struct {
		Name      string    `yaml:",omitempty" json:",omitempty"`
		Tones     []float64 `yaml:",flow"`
		Delays    []float64 `yaml:",flow"`
		ToneCount int
	}

	// Statement is the kind of a recognized sketch line.
	Statement int

	// Scanner extracts a Melody from sketch source. The zero value is ready to
	// use and logs nothing.
	Scanner struct {
		Logger *zap.Logger
	}

	// MissingValueError is returned when a line is recognized as a tone or
	// delay statement but has no digits to extract.
	MissingValueError struct {
		Filename string
		Line     int
		Kind     Statement
		Text     string
	}
)

const (
	ToneStatement Statement = iota
	DelayStatement
)

var ErrFileNotFound = errors.New("file not found")

func (s Statement) String() string {
	switch s {
	case ToneStatement:
		return "tone"
	case DelayStatement:
		return "delay"
	}
	return fmt.Sprintf("Statement(%d)", int(s))
}

func (e *MissingValueError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%v:%d: %v statement has no numeric value: %q", e.Filename, e.Line, e.Kind, e.Text)
	}
	return fmt.Sprintf("line %d: %v statement has no numeric value: %q", e.Line, e.Kind, e.Text)
}

// Classify reports whether the line is a tone or delay statement. Only
// leading spaces are ignored; a tab-indented line is not recognized.
func Classify(line string) (Statement, bool) {
	l := strings.TrimLeft(line, " ")
	if strings.HasPrefix(l, "tone") {
		return ToneStatement, true
	}
	if strings.HasPrefix(l, "delay") {
		return DelayStatement, true
	}
	return 0, false
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// MaxLineLength bounds a single source line.
const MaxLineLength = 16 << 20

// scanLines splits on "\n", "\r\n" and a lone "\r", and drops the line ending.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			return 0, nil, nil // a "\n" may follow in the next read
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// parseValue converts a digit run. Runs too long for a float64 become +Inf.
func parseValue(digits string) (float64, error) {
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}

// Scan reads sketch source from r using a Scanner that does not log.
func Scan(r io.Reader) (Melody, error) {
	var s Scanner
	return s.Scan(r)
}

// ScanFile scans the sketch at path using a Scanner that does not log.
func ScanFile(path string) (Melody, error) {
	var s Scanner
	return s.ScanFile(path)
}

func (s *Scanner) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// ScanFile opens path and scans it. A nonexistent path yields an error that
// matches both ErrFileNotFound and os.ErrNotExist.
func (s *Scanner) ScanFile(path string) (Melody, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Melody{}, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return Melody{}, fmt.Errorf("could not open %v: %w", path, err)
	}
	defer f.Close()
	m, err := s.scan(f, path)
	if err != nil {
		return Melody{}, err
	}
	m.Name = NameFromPath(path)
	return m, nil
}

// Scan reads r line by line and collects the first number of every tone and
// delay statement. Scanning stops at the first statement without a number.
func (s *Scanner) Scan(r io.Reader) (Melody, error) {
	return s.scan(r, "")
}

func (s *Scanner) scan(r io.Reader, filename string) (Melody, error) {
	log := s.logger()
	m := Melody{Tones: []float64{}, Delays: []float64{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	sc.Split(scanLines)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		kind, ok := Classify(text)
		if !ok {
			continue
		}
		digits := digitRun.FindString(text)
		if digits == "" {
			return Melody{}, &MissingValueError{Filename: filename, Line: lineNo, Kind: kind, Text: text}
		}
		v, err := parseValue(digits)
		if err != nil {
			return Melody{}, fmt.Errorf("line %d: could not parse %q: %w", lineNo, digits, err)
		}
		switch kind {
		case ToneStatement:
			m.Tones = append(m.Tones, v)
			m.ToneCount++
		case DelayStatement:
			m.Delays = append(m.Delays, v)
		}
		log.Debug("statement", zap.Int("line", lineNo), zap.Stringer("kind", kind), zap.Float64("value", v))
	}
	if err := sc.Err(); err != nil {
		return Melody{}, fmt.Errorf("could not read line %d: %w", lineNo+1, err)
	}
	log.Debug("scan finished", zap.Int("tones", m.ToneCount), zap.Int("delays", len(m.Delays)))
	return m, nil
}

// NameFromPath derives a melody name from a sketch file name, e.g.
// "sketches/eva.ino" becomes "eva".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
