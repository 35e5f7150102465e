// Package bundle exports and imports a book's alignment data as a
// tar.xz archive.
//
// A bundle holds manifest.json and one alignmentData/<book>/<chapter>.json
// per chapter. The manifest lists each file's BLAKE3 digest; import
// verifies every digest and decodes every chapter before anything is
// written to the project.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	"github.com/FocuswithJustin/JuniperAligner/core/cas"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/internal/persist"
	"github.com/FocuswithJustin/JuniperAligner/internal/validation"
)

// ManifestName is the manifest entry name.
const ManifestName = "manifest.json"

// FormatVersion is the bundle format written by Export.
const FormatVersion = "1"

// Manifest describes a bundle.
type Manifest struct {
	Version   string            `json:"version"`
	Book      string            `json:"book"`
	Chapters  []int             `json:"chapters"`
	CreatedAt string            `json:"created_at"`
	Files     map[string]string `json:"files"`
}

// Export writes every chapter of book in p to w as tar.xz. Entries carry
// createdAt as their modification time so equal data yields equal bytes.
func Export(p *persist.Project, book string, w io.Writer, createdAt time.Time) (Manifest, error) {
	if err := validation.ValidateBookID(book); err != nil {
		return Manifest{}, err
	}
	book = strings.ToLower(book)
	chapters, err := p.Chapters(book)
	if err != nil {
		return Manifest{}, err
	}
	if len(chapters) == 0 {
		return Manifest{}, alerrors.NewNotFound("alignment data", book)
	}

	m := Manifest{
		Version:   FormatVersion,
		Book:      book,
		Chapters:  chapters,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
		Files:     make(map[string]string, len(chapters)),
	}
	contents := make(map[string][]byte, len(chapters))
	for _, ch := range chapters {
		data, err := p.ReadChapter(book, ch)
		if err != nil {
			return Manifest{}, err
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return Manifest{}, fmt.Errorf("failed to marshal chapter %d: %w", ch, err)
		}
		name := entryName(book, ch)
		contents[name] = raw
		m.Files[name] = cas.Blake3Hash(raw)
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	xzw, err := xz.NewWriter(w)
	if err != nil {
		return Manifest{}, fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	if err := writeEntry(tw, ManifestName, manifest, createdAt); err != nil {
		return Manifest{}, err
	}
	for _, ch := range chapters {
		name := entryName(book, ch)
		if err := writeEntry(tw, name, contents[name], createdAt); err != nil {
			return Manifest{}, err
		}
	}
	if err := tw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("failed to close tar: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("failed to close xz: %w", err)
	}
	return m, nil
}

// ExportFile writes the bundle for book to dstPath.
func ExportFile(p *persist.Project, book, dstPath string) (Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return Manifest{}, fmt.Errorf("failed to create parent directory: %w", err)
	}
	var buf bytes.Buffer
	m, err := Export(p, book, &buf, time.Now())
	if err != nil {
		return Manifest{}, err
	}
	if err := os.WriteFile(dstPath, buf.Bytes(), 0644); err != nil {
		return Manifest{}, alerrors.NewIO("write", dstPath, err)
	}
	return m, nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	header := &tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(data)),
		ModTime:  modTime.UTC().Truncate(time.Second),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func entryName(book string, chapter int) string {
	return path.Join(persist.DataDir, book, strconv.Itoa(chapter)+".json")
}

// Import reads a tar.xz bundle from r and writes its chapters into p.
func Import(r io.Reader, p *persist.Project) (Manifest, error) {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return Manifest{}, alerrors.NewParse("bundle", "", err.Error())
	}
	return importTar(tar.NewReader(xzr), p)
}

// ImportFile imports the .tar.xz or .tar.gz bundle at path into p.
func ImportFile(path string, p *persist.Project) (Manifest, error) {
	r, err := NewReader(path)
	if err != nil {
		return Manifest{}, err
	}
	defer r.Close()
	return importTar(r.Reader, p)
}

func importTar(tr *tar.Reader, p *persist.Project) (Manifest, error) {
	entries := make(map[string][]byte)
	err := iterate(tr, func(header *tar.Header, content io.Reader) (bool, error) {
		if header.Typeflag == tar.TypeDir {
			return false, nil
		}
		if header.Typeflag != tar.TypeReg {
			return false, alerrors.NewParse("bundle", header.Name, "unsupported entry type")
		}
		if len(entries) >= validation.MaxBundleEntries {
			return false, alerrors.NewParse("bundle", "", "too many entries")
		}
		name, err := validation.SanitizePath(p.Root(), header.Name)
		if err != nil {
			return false, fmt.Errorf("bundle entry %q: %w", header.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(content, validation.MaxFileSize+1))
		if err != nil {
			return false, fmt.Errorf("read %s: %w", header.Name, err)
		}
		if len(data) > validation.MaxFileSize {
			return false, alerrors.NewParse("bundle", header.Name, "entry too large")
		}
		entries[filepath.ToSlash(name)] = data
		return false, nil
	})
	if err != nil {
		return Manifest{}, err
	}

	raw, ok := entries[ManifestName]
	if !ok {
		return Manifest{}, alerrors.NewParse("bundle", "", "missing "+ManifestName)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, alerrors.NewParse("bundle", ManifestName, err.Error())
	}
	if m.Version != FormatVersion {
		return Manifest{}, alerrors.NewUnsupported("bundle version", m.Version)
	}
	if err := validation.ValidateBookID(m.Book); err != nil {
		return Manifest{}, err
	}

	chapters := make(map[int]alignment.LegacyChapter, len(m.Chapters))
	for _, ch := range m.Chapters {
		name := entryName(strings.ToLower(m.Book), ch)
		data, ok := entries[name]
		if !ok {
			return Manifest{}, alerrors.NewParse("bundle", name, "listed in manifest but missing")
		}
		if want := m.Files[name]; want != cas.Blake3Hash(data) {
			return Manifest{}, alerrors.NewParse("bundle", name, "digest mismatch")
		}
		var chapter alignment.LegacyChapter
		if err := json.Unmarshal(data, &chapter); err != nil {
			return Manifest{}, alerrors.NewParse("bundle", name, err.Error())
		}
		if _, err := alignment.FormatAlignmentData(chapter); err != nil {
			return Manifest{}, fmt.Errorf("%s: %w", name, err)
		}
		chapters[ch] = chapter
	}
	for name := range entries {
		if name != ManifestName && m.Files[name] == "" {
			return Manifest{}, alerrors.NewParse("bundle", name, "not listed in manifest")
		}
	}

	order := make([]int, 0, len(chapters))
	for ch := range chapters {
		order = append(order, ch)
	}
	sort.Ints(order)
	for _, ch := range order {
		if err := p.WriteChapter(m.Book, ch, chapters[ch]); err != nil {
			return Manifest{}, err
		}
	}
	return m, nil
}
