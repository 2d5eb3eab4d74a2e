package bibtex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// MaxLineCapacity is the maximum buffer size for reading a single entry line.
const MaxLineCapacity = 1024 * 1024

var (
	entryStartRegex = regexp.MustCompile(`^@([^ {]+) *\{([^,]+),$`)
	fieldRegex      = regexp.MustCompile(`^ *([^ =]+) *= *\{(.+)\},$`)
)

// SyntaxError reports a line that does not fit the entry format.
type SyntaxError struct {
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// IsSyntaxError reports whether err is or wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// Parse reads entries in the format written by Marshal. Each entry starts with
// an "@type {key," line, has one "field = {value}," line per field and ends
// with a line starting with "}". Blank lines between entries are ignored.
func Parse(r io.Reader) ([]*Record, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxLineCapacity)

	var records []*Record
	var current *Record
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "@"):
			if current != nil {
				return nil, &SyntaxError{Line: lineNum, Text: line, Msg: "entry started before previous entry closed"}
			}
			m := entryStartRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, &SyntaxError{Line: lineNum, Text: line, Msg: "malformed entry header"}
			}
			current = NewRecord(m[1])
			current.Key = m[2]

		case strings.HasPrefix(line, "}"):
			if current == nil {
				return nil, &SyntaxError{Line: lineNum, Text: line, Msg: "closing brace outside entry"}
			}
			records = append(records, current)
			current = nil

		default:
			if current == nil {
				return nil, &SyntaxError{Line: lineNum, Text: line, Msg: "field outside entry"}
			}
			m := fieldRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, &SyntaxError{Line: lineNum, Text: line, Msg: "malformed field"}
			}
			current.Set(m[1], m[2])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	if current != nil {
		return nil, &SyntaxError{Line: lineNum, Text: current.Key, Msg: "unterminated entry"}
	}

	return records, nil
}

// ParseString parses entries from a string.
func ParseString(s string) ([]*Record, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile parses entries from a file. A missing file yields no records.
func ParseFile(path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}
