package validation

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

func TestSanitizePath(t *testing.T) {
	baseDir := "/tmp/test"

	tests := []struct {
		name      string
		baseDir   string
		userPath  string
		want      string
		wantError error
	}{
		{
			name:      "simple valid path",
			baseDir:   baseDir,
			userPath:  "1.json",
			want:      "1.json",
			wantError: nil,
		},
		{
			name:      "nested valid path",
			baseDir:   baseDir,
			userPath:  "alignmentData/tit/1.json",
			want:      filepath.Join("alignmentData", "tit", "1.json"),
			wantError: nil,
		},
		{
			name:      "path with redundant separators",
			baseDir:   baseDir,
			userPath:  "subdir//file.txt",
			want:      filepath.Join("subdir", "file.txt"),
			wantError: nil,
		},
		{
			name:      "path with dot component",
			baseDir:   baseDir,
			userPath:  "./file.txt",
			want:      "file.txt",
			wantError: nil,
		},
		{
			name:      "path traversal with dotdot",
			baseDir:   baseDir,
			userPath:  "../etc/passwd",
			want:      "",
			wantError: ErrPathTraversal,
		},
		{
			name:      "path traversal in middle",
			baseDir:   baseDir,
			userPath:  "subdir/../../etc/passwd",
			want:      "",
			wantError: ErrPathTraversal,
		},
		{
			name:      "absolute path",
			baseDir:   baseDir,
			userPath:  "/etc/passwd",
			want:      "",
			wantError: ErrPathTraversal,
		},
		{
			name:      "empty path",
			baseDir:   baseDir,
			userPath:  "",
			want:      "",
			wantError: ErrEmptyPath,
		},
		{
			name:      "very long path",
			baseDir:   baseDir,
			userPath:  strings.Repeat("a/", 2048) + "file.txt",
			want:      "",
			wantError: ErrPathTooLong,
		},
		{
			name:      "dotted file name is not traversal",
			baseDir:   baseDir,
			userPath:  "..notes.json",
			want:      "..notes.json",
			wantError: nil,
		},
		{
			name:      "control character",
			baseDir:   baseDir,
			userPath:  "a\x00b",
			want:      "",
			wantError: ErrInvalidCharacter,
		},
		{
			name:      "path that would escape after resolution",
			baseDir:   "/tmp/base/subdir",
			userPath:  "a/b/../../../etc/passwd",
			want:      "",
			wantError: ErrPathTraversal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.baseDir, tt.userPath)

			if tt.wantError != nil {
				if err == nil {
					t.Errorf("SanitizePath() expected error %v, got nil", tt.wantError)
					return
				}
				if !errors.Is(err, tt.wantError) {
					t.Errorf("SanitizePath() error = %v, want %v", err, tt.wantError)
				}
				if !errors.Is(err, alerrors.ErrInvalidInput) {
					t.Errorf("SanitizePath() error = %v, want ErrInvalidInput", err)
				}
				return
			}

			if err != nil {
				t.Errorf("SanitizePath() unexpected error: %v", err)
				return
			}

			if got != tt.want {
				t.Errorf("SanitizePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr error
	}{
		{"tit.tar.xz", nil},
		{"/abs/path/ok.xml", nil},
		{"", ErrEmptyPath},
		{strings.Repeat("a", MaxPathLength+1), ErrPathTooLong},
		{"bad\nname", ErrInvalidCharacter},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("ValidatePath(%q) unexpected error: %v", tt.path, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidatePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestValidateBookID(t *testing.T) {
	for _, book := range []string{"Tit", "tit", "1John", "2Cor", "PHM"} {
		if err := ValidateBookID(book); err != nil {
			t.Errorf("ValidateBookID(%q) unexpected error: %v", book, err)
		}
	}
	for _, book := range []string{"", "t", "../tit", "tit/1", "4Kgs", "Tit 1"} {
		if err := ValidateBookID(book); !errors.Is(err, ErrInvalidBook) {
			t.Errorf("ValidateBookID(%q) error = %v, want ErrInvalidBook", book, err)
		}
	}
}

func TestValidateFileType(t *testing.T) {
	xzHeader := []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}
	gzHeader := []byte{0x1f, 0x8b, 0x08}
	tests := []struct {
		name     string
		content  []byte
		filename string
		want     FileType
		wantErr  bool
	}{
		{"tar.xz bundle", xzHeader, "tit.tar.xz", FileTypeTarXZ, false},
		{"tgz bundle", gzHeader, "tit.tgz", FileTypeTarGZ, false},
		{"sqlite database", []byte("SQLite format 3\x00"), "aligner.db", FileTypeSQLite, false},
		{"osis xml", []byte("<osis></osis>"), "ugnt.xml", FileTypeXML, false},
		{"json chapter", []byte(`{"1":"Paul"}`), "1.json", FileTypeJSON, false},
		{"greek json", []byte(`{"1":"Παῦλος δοῦλος"}`), "1.json", FileTypeJSON, false},
		{"xz named json", xzHeader, "1.json", FileTypeUnknown, true},
		{"text named bundle", []byte("hello"), "tit.tar.xz", FileTypeUnknown, true},
		{"unknown extension", []byte("hello"), "notes.txt", FileTypeUnknown, true},
		{"empty json", []byte{}, "1.json", FileTypeUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFileType(bytes.NewReader(tt.content), tt.filename)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFileType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFileType) {
				t.Errorf("ValidateFileType() error = %v, want ErrFileType", err)
			}
			if got != tt.want {
				t.Errorf("ValidateFileType() = %v, want %v", got, tt.want)
			}
		})
	}
}

// errorReader is a reader that always returns an error
type errorReader struct{}

func (e errorReader) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read error")
}

func TestValidateFileType_ReadError(t *testing.T) {
	_, err := ValidateFileType(errorReader{}, "test.json")
	if err == nil {
		t.Fatal("ValidateFileType() expected error from reader, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read file header") {
		t.Errorf("ValidateFileType() error = %v, want error about reading file header", err)
	}
}

func TestFileTypeFromName(t *testing.T) {
	tests := map[string]FileType{
		"TIT.TAR.XZ": FileTypeTarXZ,
		"a.tar.gz":   FileTypeTarGZ,
		"a.sqlite3":  FileTypeSQLite,
		"ugnt.osis":  FileTypeXML,
		"1.JSON":     FileTypeJSON,
		"a.tar":      FileTypeUnknown,
	}
	for name, want := range tests {
		if got := FileTypeFromName(name); got != want {
			t.Errorf("FileTypeFromName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsLikelyText(t *testing.T) {
	tests := []struct {
		buf  []byte
		want bool
	}{
		{[]byte("plain text\n"), true},
		{[]byte{}, false},
		{[]byte{'a', 0, 'b'}, false},
		{bytes.Repeat([]byte{0x01}, 10), false},
	}
	for _, tt := range tests {
		if got := isLikelyText(tt.buf); got != tt.want {
			t.Errorf("isLikelyText(%q) = %v, want %v", tt.buf, got, tt.want)
		}
	}
}
