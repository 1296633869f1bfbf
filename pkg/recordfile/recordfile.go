// Package recordfile implements the shared line-oriented delimited-text
// format used by every backing store: UTF-8, a fixed header line, one record
// per line, fields optionally double-quoted to embed the delimiter.
package recordfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Delimiter separates fields within a record line.
const Delimiter = ','

// SplitFields splits a record line on unquoted delimiters. A quote character
// toggles the in-quotes state; afterwards each field is trimmed of
// surrounding whitespace and one surrounding quote pair.
func SplitFields(line string) []string {
	var fields []string
	var buf strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			buf.WriteRune(r)
		case r == Delimiter && !inQuotes:
			fields = append(fields, cleanField(buf.String()))
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	fields = append(fields, cleanField(buf.String()))

	return fields
}

func cleanField(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return s
}

// QuoteField wraps a field in quotes when it could otherwise corrupt the
// record: embedded delimiter, embedded quote, or surrounding whitespace that
// the reader would trim away.
func QuoteField(field string) string {
	if strings.ContainsRune(field, Delimiter) ||
		strings.Contains(field, `"`) ||
		field != strings.TrimSpace(field) {
		return `"` + field + `"`
	}
	return field
}

// JoinFields encodes fields into a single record line. The dialect has no
// quote escaping, so a field holding an unpaired quote followed by a
// delimiter cannot be represented: the quote closes the quoted region early
// and the field splits on read-back.
func JoinFields(fields []string) string {
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, QuoteField(f))
	}
	return strings.Join(quoted, string(Delimiter))
}

// File is one backing store: a path plus the fixed header written as the
// first line. The header line is never treated as data.
type File struct {
	Path   string
	Header string
}

// New returns a File for the given path and header.
func New(path, header string) *File {
	return &File{Path: path, Header: header}
}

// EnsureExists creates the backing file with just the header line, including
// any missing parent directories. An existing file is left untouched.
func (f *File) EnsureExists() error {
	if _, err := os.Stat(f.Path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", f.Path, err)
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(f.Path, []byte(f.Header+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", f.Path, err)
	}
	return nil
}

// Stat returns the modification time and size of the backing file, creating
// it first if absent. The pair identifies one on-disk version of the file.
func (f *File) Stat() (time.Time, int64, error) {
	if err := f.EnsureExists(); err != nil {
		return time.Time{}, 0, err
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to stat %s: %w", f.Path, err)
	}
	return info.ModTime(), info.Size(), nil
}

// ReadLines returns the data lines of the backing file, skipping the header
// and blank lines. A missing file is created empty first.
func (f *File) ReadLines() ([]string, error) {
	if err := f.EnsureExists(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return lines, nil
}

// Rewrite replaces the whole backing file with the header followed by the
// given record lines.
func (f *File) Rewrite(lines []string) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	var b strings.Builder
	b.WriteString(f.Header)
	b.WriteByte('\n')
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(f.Path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", f.Path, err)
	}
	return nil
}

// Append adds one record line to the end of the backing file, creating the
// file with its header first when absent.
func (f *File) Append(line string) error {
	if err := f.EnsureExists(); err != nil {
		return err
	}

	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", f.Path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", f.Path, err)
	}
	return nil
}
