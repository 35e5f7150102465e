package osis

import (
	"os"
	"strings"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	"github.com/FocuswithJustin/JuniperAligner/core/cache"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// fileKey identifies one version of a file on disk.
type fileKey struct {
	path    string
	size    int64
	modTime int64
}

type chapterKey struct {
	file    fileKey
	book    string
	chapter int
}

// Library caches parsed documents and their chapter baselines. A file that
// changes on disk is parsed again.
type Library struct {
	docs     *cache.LRU[fileKey, *Document]
	chapters *cache.LRU[chapterKey, alignment.Baseline]
}

// NewLibrary creates a library holding at most maxDocs parsed documents.
func NewLibrary(maxDocs int) *Library {
	return &Library{
		docs:     cache.New[fileKey, *Document](maxDocs),
		chapters: cache.New[chapterKey, alignment.Baseline](maxDocs * 32),
	}
}

func statKey(path string) (fileKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileKey{}, alerrors.NewIO("stat", path, err)
	}
	return fileKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}, nil
}

// Open returns the parsed document at path.
func (l *Library) Open(path string) (*Document, error) {
	key, err := statKey(path)
	if err != nil {
		return nil, err
	}
	return l.docs.GetOrLoad(key, func() (*Document, error) {
		return ParseFile(path)
	})
}

// Chapter returns one chapter of the document at path. The returned
// baseline is shared and must not be modified.
func (l *Library) Chapter(path, book string, chapter int) (alignment.Baseline, error) {
	doc, err := l.Open(path)
	if err != nil {
		return nil, err
	}
	key, err := statKey(path)
	if err != nil {
		return nil, err
	}
	return l.chapters.GetOrLoad(chapterKey{file: key, book: strings.ToLower(book), chapter: chapter}, func() (alignment.Baseline, error) {
		return doc.Chapter(book, chapter)
	})
}

// Stats reports document cache activity.
func (l *Library) Stats() cache.Stats {
	return l.docs.Stats()
}
