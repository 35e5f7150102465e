// Package validation checks user-supplied paths, book IDs and input files
// before the aligner reads or writes them.
package validation

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// Limits on untrusted input (CWE-400).
const (
	// MaxFileSize is the largest input or bundle entry read (64 MB).
	MaxFileSize = 64 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxBundleEntries caps the number of entries read from a bundle.
	MaxBundleEntries = 4096
)

// Validation errors. All wrap ErrInvalidInput.
var (
	ErrPathTraversal    = fmt.Errorf("path traversal detected: %w", alerrors.ErrInvalidInput)
	ErrPathTooLong      = fmt.Errorf("path too long: %w", alerrors.ErrInvalidInput)
	ErrInvalidCharacter = fmt.Errorf("invalid character in path: %w", alerrors.ErrInvalidInput)
	ErrEmptyPath        = fmt.Errorf("path cannot be empty: %w", alerrors.ErrInvalidInput)
	ErrInvalidBook      = fmt.Errorf("invalid book id: %w", alerrors.ErrInvalidInput)
	ErrFileType         = fmt.Errorf("unexpected file type: %w", alerrors.ErrInvalidInput)
)

var bookPattern = regexp.MustCompile(`^[1-3]?[A-Za-z]{2,16}$`)

// SanitizePath cleans a relative path and rejects anything that would
// escape baseDir. It returns the cleaned relative path.
func SanitizePath(baseDir, userPath string) (string, error) {
	if err := ValidatePath(userPath); err != nil {
		return "", err
	}

	cleanPath := filepath.Clean(filepath.FromSlash(userPath))
	if filepath.IsAbs(cleanPath) || strings.HasPrefix(userPath, "/") {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return cleanPath, nil
}

// ValidatePath checks length and rejects null bytes and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range path {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateBookID accepts OSIS-style book IDs such as "Tit" or "1John".
func ValidateBookID(book string) error {
	if !bookPattern.MatchString(book) {
		return fmt.Errorf("%w: %q", ErrInvalidBook, book)
	}
	return nil
}

// FileType is a detected input file type.
type FileType string

// Input file types the aligner reads.
const (
	FileTypeTarXZ   FileType = "tar.xz"
	FileTypeTarGZ   FileType = "tar.gz"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeXML     FileType = "xml"
	FileTypeJSON    FileType = "json"
	FileTypeUnknown FileType = "unknown"
)

var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeTarGZ, []byte{0x1f, 0x8b}},
	{FileTypeTarXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3")},
}

// ValidateFileType checks that the content of reader matches the type
// implied by filename's extension and returns that type.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	expected := FileTypeFromName(filename)
	detected := detectFileTypeFromMagic(buf)

	switch expected {
	case FileTypeUnknown:
		return FileTypeUnknown, fmt.Errorf("%w: %s", ErrFileType, filename)
	case FileTypeXML, FileTypeJSON:
		if detected == FileTypeUnknown && isLikelyText(buf) {
			return expected, nil
		}
	default:
		if detected == expected {
			return expected, nil
		}
	}
	return FileTypeUnknown, fmt.Errorf("%w: extension suggests %s but content is %s", ErrFileType, expected, detected)
}

// FileTypeFromName returns the type implied by a file name.
func FileTypeFromName(filename string) FileType {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		return FileTypeTarXZ
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FileTypeTarGZ
	}
	switch filepath.Ext(lower) {
	case ".db", ".sqlite", ".sqlite3":
		return FileTypeSQLite
	case ".xml", ".osis":
		return FileTypeXML
	case ".json":
		return FileTypeJSON
	}
	return FileTypeUnknown
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

// isLikelyText reports whether buf looks like UTF-8 or ASCII text.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}
	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b >= 0x20 && b <= 0x7e, b == '\t', b == '\n', b == '\r':
			printable++
		case b < 0x20:
			control++
		}
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
