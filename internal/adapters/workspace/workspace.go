// Package workspace reads and appends to a fixed set of operator files
// (markdown notes and CSV sheets) in one directory.
package workspace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Sentinel kinds for workspace errors.
var (
	ErrNotAllowed = errors.New("file is not in the workspace allowlist")
	ErrBadEntry   = errors.New("invalid workspace entry")
	ErrNotFound   = errors.New("workspace file not found")
)

// Kind is the file format.
type Kind string

// Supported kinds.
const (
	Markdown Kind = "markdown"
	CSV      Kind = "csv"
)

// FileInfo describes one allowlisted file.
type FileInfo struct {
	Name       string     `json:"name"`
	Kind       Kind       `json:"kind"`
	Exists     bool       `json:"exists"`
	Size       int64      `json:"size"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// Document is the parsed content of a file. Markdown fills Content; CSV fills
// Header and Rows.
type Document struct {
	Name    string     `json:"name"`
	Kind    Kind       `json:"kind"`
	Content string     `json:"content,omitempty"`
	Header  []string   `json:"header,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Entry is an append request. Markdown uses Text; CSV uses Fields keyed by
// header column, or Values in header order.
type Entry struct {
	Text   string            `json:"text,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Values []string          `json:"values,omitempty"`
}

// Workspace is a directory with an allowlist of file names.
type Workspace struct {
	dir     string
	allowed map[string]Kind
	mu      sync.Mutex
}

// New creates a Workspace. Names with an extension other than .md or .csv
// are ignored.
func New(dir string, names []string) *Workspace {
	w := &Workspace{dir: dir, allowed: map[string]Kind{}}
	for _, n := range names {
		if k, ok := kindOf(n); ok && safeName(n) {
			w.allowed[n] = k
		}
	}
	return w
}

// List describes every allowlisted file, sorted by name.
func (w *Workspace) List() []FileInfo {
	names := make([]string, 0, len(w.allowed))
	for n := range w.allowed {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]FileInfo, 0, len(names))
	for _, n := range names {
		fi := FileInfo{Name: n, Kind: w.allowed[n]}
		if st, err := os.Stat(filepath.Join(w.dir, n)); err == nil {
			mod := st.ModTime().UTC()
			fi.Exists, fi.Size, fi.ModifiedAt = true, st.Size(), &mod
		}
		out = append(out, fi)
	}
	return out
}

// Read returns the parsed file.
func (w *Workspace) Read(name string) (Document, error) {
	kind, path, err := w.resolve(name)
	if err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	doc := Document{Name: name, Kind: kind}
	if kind == Markdown {
		b, err := io.ReadAll(f)
		if err != nil {
			return Document{}, fmt.Errorf("read %s: %w", name, err)
		}
		doc.Content = string(b)
		return doc, nil
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", name, err)
	}
	doc.Rows = [][]string{}
	if len(records) > 0 {
		doc.Header, doc.Rows = records[0], records[1:]
	}
	return doc, nil
}

// Append adds entry to the end of the file, creating it when missing. A new
// CSV file takes its header from the entry's field names.
func (w *Workspace) Append(name string, e Entry) error {
	kind, path, err := w.resolve(name)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if kind == Markdown {
		text := strings.TrimRight(e.Text, "\n")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: text is required", ErrBadEntry)
		}
		return appendBytes(path, []byte(text+"\n"))
	}

	header, err := readHeader(path)
	if err != nil {
		return fmt.Errorf("read header %s: %w", name, err)
	}
	row, newHeader, err := csvRow(header, e)
	if err != nil {
		return err
	}
	var sb strings.Builder
	cw := csv.NewWriter(&sb)
	if header == nil {
		_ = cw.Write(newHeader)
	}
	_ = cw.Write(row)
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return appendBytes(path, []byte(sb.String()))
}

func (w *Workspace) resolve(name string) (Kind, string, error) {
	if !safeName(name) {
		return "", "", fmt.Errorf("%w: %q", ErrNotAllowed, name)
	}
	kind, ok := w.allowed[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrNotAllowed, name)
	}
	return kind, filepath.Join(w.dir, name), nil
}

func csvRow(header []string, e Entry) (row, newHeader []string, err error) {
	if len(e.Values) > 0 {
		if header != nil && len(e.Values) != len(header) {
			return nil, nil, fmt.Errorf("%w: expected %d values, got %d", ErrBadEntry, len(header), len(e.Values))
		}
		if header == nil {
			return nil, nil, fmt.Errorf("%w: fields are required for a new sheet", ErrBadEntry)
		}
		return e.Values, nil, nil
	}
	if len(e.Fields) == 0 {
		return nil, nil, fmt.Errorf("%w: fields or values are required", ErrBadEntry)
	}
	if header == nil {
		for k := range e.Fields {
			newHeader = append(newHeader, k)
		}
		sort.Strings(newHeader)
		header = newHeader
	}
	known := make(map[string]bool, len(header))
	row = make([]string, len(header))
	for i, col := range header {
		known[col] = true
		row[i] = e.Fields[col]
	}
	for k := range e.Fields {
		if !known[k] {
			return nil, nil, fmt.Errorf("%w: unknown column %q", ErrBadEntry, k)
		}
	}
	return row, newHeader, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	h, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return h, err
}

func appendBytes(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func kindOf(name string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return Markdown, true
	case ".csv":
		return CSV, true
	}
	return "", false
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}
