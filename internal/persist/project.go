// Package persist stores alignment data for a translation project.
//
// Project reads and writes the legacy chapter files under
// alignmentData/<book>/<chapter>.json. Store keeps verse baselines, the
// operation journal, snapshot digests and shown notices in SQLite.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// DataDir is the project directory holding alignment data.
const DataDir = "alignmentData"

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// Project is a translation project directory.
type Project struct {
	root string
}

// NewProject returns the project rooted at root.
func NewProject(root string) *Project {
	return &Project{root: root}
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// ChapterPath returns the path of a chapter's alignment file.
func (p *Project) ChapterPath(book string, chapter int) string {
	return filepath.Join(p.root, ChapterFile(book, chapter))
}

// ChapterFile returns the project-relative path of a chapter's alignment file.
func ChapterFile(book string, chapter int) string {
	return filepath.Join(DataDir, strings.ToLower(book), strconv.Itoa(chapter)+".json")
}

// ReadChapter loads a chapter's legacy alignment data. A missing file
// yields a NotFoundError.
func (p *Project) ReadChapter(book string, chapter int) (alignment.LegacyChapter, error) {
	path := p.ChapterPath(book, chapter)
	data, err := ReadLegacyChapter(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, alerrors.NewNotFound("alignment data", fmt.Sprintf("%s %d", book, chapter))
	}
	return data, err
}

// WriteChapter saves a chapter's legacy alignment data atomically.
func (p *Project) WriteChapter(book string, chapter int, data alignment.LegacyChapter) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal chapter: %w", err)
	}
	return writeAtomic(p.ChapterPath(book, chapter), raw)
}

// Books lists the books that have alignment data.
func (p *Project) Books() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, DataDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, alerrors.NewIO("readdir", DataDir, err)
	}
	var books []string
	for _, e := range entries {
		if e.IsDir() {
			books = append(books, e.Name())
		}
	}
	sort.Strings(books)
	return books, nil
}

// Chapters lists a book's chapters in ascending order.
func (p *Project) Chapters(book string) ([]int, error) {
	dir := filepath.Join(p.root, DataDir, strings.ToLower(book))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, alerrors.NewIO("readdir", dir, err)
	}
	var chapters []int
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if n, err := strconv.Atoi(name); err == nil {
			chapters = append(chapters, n)
		}
	}
	sort.Ints(chapters)
	return chapters, nil
}

// ReadLegacyChapter decodes a legacy chapter file.
func ReadLegacyChapter(path string) (alignment.LegacyChapter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data alignment.LegacyChapter
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &alerrors.ParseError{Format: "alignment data", Path: path, Message: err.Error()}
	}
	return data, nil
}

// ReadTargetChapter decodes a target chapter file mapping verse numbers to
// verse text. Keys that are not verse numbers ("front") are skipped.
func ReadTargetChapter(path string) (map[int]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, alerrors.NewIO("read", path, err)
	}
	var verses map[string]string
	if err := json.Unmarshal(raw, &verses); err != nil {
		return nil, &alerrors.ParseError{Format: "target chapter", Path: path, Message: err.Error()}
	}
	out := make(map[int]string, len(verses))
	for key, text := range verses {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[n] = text
	}
	return out, nil
}

// writeAtomic writes data to a temp file beside path and renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return alerrors.NewIO("mkdir", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return alerrors.NewIO("create", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return alerrors.NewIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return alerrors.NewIO("close", path, err)
	}
	if err := osRename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return alerrors.NewIO("rename", path, err)
	}
	return nil
}
