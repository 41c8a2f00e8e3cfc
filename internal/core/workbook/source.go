package workbook

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSourceLocked is returned when the workbook cannot be written because another
	// program holds it open.
	ErrSourceLocked = errors.New("ledger workbook is locked by another program, close it and retry")
	// ErrSourceMissing is returned when the workbook file does not exist.
	ErrSourceMissing = errors.New("ledger workbook not found")
	// ErrSheetNotFound is returned for an unknown sheet name.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrSheetExists is returned when a new generation would overwrite a sheet.
	ErrSheetExists = errors.New("sheet already exists")
	// ErrReadOnlyFormat is returned when writing to a legacy .xls workbook.
	ErrReadOnlyFormat = errors.New("legacy .xls workbooks are read-only")
)

// CellWriter receives cell updates addressed by 0-based (row, col).
type CellWriter interface {
	Set(row, col int, value any) error
}

// Source is the ledger workbook on disk. Every operation opens, reads and (for
// mutations) saves the whole file while holding the source mutex, so runs inside one
// process never interleave. Nothing coordinates with other processes.
type Source struct {
	path string
	mu   sync.Mutex
}

// NewSource returns a source for the workbook at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path is the workbook location.
func (s *Source) Path() string { return s.path }

// Exists reports whether the workbook file is present.
func (s *Source) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *Source) legacy() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".xls")
}

// Sheets lists the generations in workbook order; the newest is last.
func (s *Source) Sheets() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Exists() {
		return nil, ErrSourceMissing
	}
	if s.legacy() {
		grids, err := readLegacy(s.path)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(grids))
		for i, g := range grids {
			names[i] = g.Name
		}
		return names, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// Latest is the name of the newest generation.
func (s *Source) Latest() (string, error) {
	sheets, err := s.Sheets()
	if err != nil {
		return "", err
	}
	if len(sheets) == 0 {
		return "", ErrSheetNotFound
	}
	return sheets[len(sheets)-1], nil
}

// Grid reads one sheet. An empty name selects the newest generation.
func (s *Source) Grid(sheet string) (*Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Exists() {
		return nil, ErrSourceMissing
	}
	if s.legacy() {
		grids, err := readLegacy(s.path)
		if err != nil {
			return nil, err
		}
		if len(grids) == 0 {
			return nil, ErrSheetNotFound
		}
		if sheet == "" {
			return grids[len(grids)-1], nil
		}
		for _, g := range grids {
			if g.Name == sheet {
				return g, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}
	return readGrid(f, name)
}

// RawRows returns a sheet for the editor: every cell as text, formulas as "=...".
func (s *Source) RawRows(sheet string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.legacy() {
		return nil, ErrReadOnlyFormat
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if !slices.Contains(f.GetSheetList(), sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	for r := range rows {
		for c := range rows[r] {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			if formula, err := f.GetCellFormula(sheet, cell); err == nil && formula != "" {
				rows[r][c] = "=" + formula
			}
		}
	}
	return rows, nil
}

// SaveRaw writes editor data back into an existing sheet. Numeric text is stored as
// a number, "" clears the cell and "=..." is stored as a formula.
func (s *Source) SaveRaw(sheet string, data [][]any) error {
	return s.update(func(f *excelize.File) error {
		if !slices.Contains(f.GetSheetList(), sheet) {
			return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
		}
		w := &sheetWriter{f: f, sheet: sheet}
		for r, row := range data {
			for c, val := range row {
				if err := w.Set(r, c, editorValue(val)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// CopyForward copies the newest generation into a new sheet called name, lets fn
// rewrite it and saves the workbook with the new sheet active. It returns the name
// of the copied generation. A failure inside fn leaves nothing saved; a failure
// while saving may leave the file partially written.
func (s *Source) CopyForward(name string, fn func(src *Grid, dst CellWriter) error) (string, error) {
	var from string
	err := s.update(func(f *excelize.File) error {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return ErrSheetNotFound
		}
		if slices.Contains(sheets, name) {
			return fmt.Errorf("%w: %s", ErrSheetExists, name)
		}
		from = sheets[len(sheets)-1]

		src, err := readGrid(f, from)
		if err != nil {
			return err
		}
		srcIdx, err := f.GetSheetIndex(from)
		if err != nil {
			return fmt.Errorf("failed to locate sheet %s: %w", from, err)
		}
		dstIdx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := f.CopySheet(srcIdx, dstIdx); err != nil {
			return fmt.Errorf("failed to copy sheet %s: %w", from, err)
		}
		if err := fn(src, &sheetWriter{f: f, sheet: name}); err != nil {
			return err
		}
		f.SetActiveSheet(dstIdx)
		return nil
	})
	return from, err
}

// Bytes returns the workbook file contents.
func (s *Source) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.ReadFile(s.path)
}

// Replace overwrites the workbook with data.
func (s *Source) Replace(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create workbook directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return classifyWriteErr(err)
	}
	return nil
}

// CopyFrom seeds the workbook from another file.
func (s *Source) CopyFrom(seed string) error {
	in, err := os.Open(seed)
	if err != nil {
		return err
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return s.Replace(data)
}

func (s *Source) update(fn func(f *excelize.File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Exists() {
		return ErrSourceMissing
	}
	if s.legacy() {
		return ErrReadOnlyFormat
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return classifyWriteErr(err)
	}
	return nil
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrSheetNotFound
	}
	if sheet == "" {
		return sheets[len(sheets)-1], nil
	}
	if !slices.Contains(sheets, sheet) {
		return "", fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	return sheet, nil
}

func readGrid(f *excelize.File, sheet string) (*Grid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return NewGrid(sheet, rows), nil
}

func classifyWriteErr(err error) error {
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EBUSY) || isLockViolation(err) {
		return fmt.Errorf("%w: %w", ErrSourceLocked, err)
	}
	return fmt.Errorf("failed to save workbook: %w", err)
}

func editorValue(val any) any {
	s, ok := val.(string)
	if !ok {
		return val
	}
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		return nil
	case IsNumericLabel(trimmed):
		if strings.Contains(trimmed, ".") {
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return f
			}
		} else if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
	}
	return s
}

// sheetWriter writes into one sheet of an open workbook.
type sheetWriter struct {
	f     *excelize.File
	sheet string
}

func (w *sheetWriter) Set(row, col int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if s, ok := value.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "=") {
		return w.f.SetCellFormula(w.sheet, cell, strings.TrimPrefix(strings.TrimSpace(s), "="))
	}
	if value == nil {
		return w.f.SetCellValue(w.sheet, cell, "")
	}
	return w.f.SetCellValue(w.sheet, cell, value)
}
