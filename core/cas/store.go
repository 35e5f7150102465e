// Package cas stores chapter snapshots by content hash and fingerprints
// verse baselines.
//
// Snapshots are stored by SHA-256, with a BLAKE3 pointer file beside each
// one so callers holding either digest can retrieve it.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeebo/blake3"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// tempFileWrite is a function variable for writing to temp files (for testing).
var tempFileWrite = func(f *os.File, data []byte) (int, error) {
	return f.Write(data)
}

// tempFileClose is a function variable for closing temp files (for testing).
var tempFileClose = func(f io.Closer) error {
	return f.Close()
}

// ErrSnapshotNotFound is returned when no snapshot has the given digest.
var ErrSnapshotNotFound = fmt.Errorf("snapshot %w", alerrors.ErrNotFound)

// ErrInvalidHash is returned when a digest is not a 64 character hex string.
var ErrInvalidHash = fmt.Errorf("hash format: %w", alerrors.ErrInvalidInput)

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Digest holds both hashes of a stored snapshot.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

type blake3Pointer struct {
	SHA256 string `json:"sha256"`
}

// Store is a content-addressed snapshot store rooted at a directory.
type Store struct {
	root string
}

// NewStore creates a store at root, creating its directories as needed.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"sha256", "blake3"} {
		if err := os.MkdirAll(filepath.Join(root, "snapshots", dir), 0755); err != nil {
			return nil, alerrors.NewIO("mkdir", root, err)
		}
	}
	return &Store{root: root}, nil
}

// Put stores data and returns its digests. Storing the same bytes twice
// is a no-op.
func (s *Store) Put(data []byte) (Digest, error) {
	d := Digest{SHA256: Hash(data), BLAKE3: Blake3Hash(data)}

	if err := s.writeOnce(s.snapshotPath(d.SHA256), data); err != nil {
		return Digest{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	pointer, err := json.Marshal(blake3Pointer{SHA256: d.SHA256})
	if err != nil {
		return Digest{}, fmt.Errorf("failed to marshal pointer: %w", err)
	}
	if err := s.writeOnce(s.pointerPath(d.BLAKE3), pointer); err != nil {
		return Digest{}, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
	}
	return d, nil
}

// Get returns the snapshot with the given SHA-256 digest.
func (s *Store) Get(sha256Hash string) ([]byte, error) {
	if !hashPattern.MatchString(sha256Hash) {
		return nil, ErrInvalidHash
	}
	data, err := os.ReadFile(s.snapshotPath(sha256Hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, alerrors.NewIO("read", s.snapshotPath(sha256Hash), err)
	}
	return data, nil
}

// GetByBlake3 returns the snapshot with the given BLAKE3 digest.
func (s *Store) GetByBlake3(blake3Hash string) ([]byte, error) {
	if !hashPattern.MatchString(blake3Hash) {
		return nil, ErrInvalidHash
	}
	data, err := os.ReadFile(s.pointerPath(blake3Hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, alerrors.NewIO("read", s.pointerPath(blake3Hash), err)
	}
	var pointer blake3Pointer
	if err := json.Unmarshal(data, &pointer); err != nil {
		return nil, alerrors.NewParse("JSON", s.pointerPath(blake3Hash), err.Error())
	}
	return s.Get(pointer.SHA256)
}

// Exists reports whether a snapshot with the SHA-256 digest is stored.
func (s *Store) Exists(sha256Hash string) bool {
	if !hashPattern.MatchString(sha256Hash) {
		return false
	}
	_, err := os.Stat(s.snapshotPath(sha256Hash))
	return err == nil
}

// snapshotPath is <root>/snapshots/sha256/<first2>/<hash>.
func (s *Store) snapshotPath(hash string) string {
	return filepath.Join(s.root, "snapshots", "sha256", hash[:2], hash)
}

// pointerPath is <root>/snapshots/blake3/<first2>/<hash>.json.
func (s *Store) pointerPath(hash string) string {
	return filepath.Join(s.root, "snapshots", "blake3", hash[:2], hash+".json")
}

// writeOnce writes data to path atomically unless path already exists.
func (s *Store) writeOnce(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create prefix directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFileWrite(tempFile, data); err != nil {
		tempFileClose(tempFile)
		os.Remove(tempPath)
		return fmt.Errorf("failed to write: %w", err)
	}
	if err := tempFileClose(tempFile); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// Rename to final path (atomic on POSIX)
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// Hash computes the SHA-256 hash of data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Blake3Hash computes the BLAKE3 hash of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
