// Package ref parses verse references that name the verse being aligned.
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// Ref is a scripture reference: a book, a chapter, or a verse or verse range.
type Ref struct {
	// Book is the book ID as written (e.g., "Tit", "1John").
	Book string `json:"book"`

	// Chapter is the chapter number (1-indexed, 0 for whole-book references).
	Chapter int `json:"chapter,omitempty"`

	// Verse is the verse number (1-indexed, 0 for whole-chapter references).
	Verse int `json:"verse,omitempty"`

	// VerseEnd is the ending verse for ranges (optional).
	VerseEnd int `json:"verse_end,omitempty"`
}

// refGrammar accepts OSIS IDs ("Tit.1.1") and the colon form ("tit 1:1").
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `parser:"@Int?"`
	BookName   string       `parser:"@Ident"`
	ChapterRef *chapterPart `parser:"( \".\"? @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int        `parser:"@Int"`
	VerseRef *versePart `parser:"( ( \".\" | \":\" ) @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse int  `parser:"@Int"`
	Range *int `parser:"( \"-\" @Int )?"`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[.:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string.
// Supported formats:
//   - "Tit" (book only)
//   - "Tit.1", "tit 1" (book and chapter)
//   - "Tit.1.1", "tit 1:1" (verse)
//   - "Matt.5.3-12" (verse range)
func Parse(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, alerrors.NewParse("reference", "", "empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, &alerrors.ParseError{Format: "reference", Message: fmt.Sprintf("invalid reference %q", s), Err: fmt.Errorf("%w: %v", alerrors.ErrInvalidInput, err)}
	}

	r := &Ref{Book: parsed.BookPrefix + parsed.BookName}
	if parsed.ChapterRef != nil {
		r.Chapter = parsed.ChapterRef.Chapter
		if parsed.ChapterRef.VerseRef != nil {
			r.Verse = parsed.ChapterRef.VerseRef.Verse
			if parsed.ChapterRef.VerseRef.Range != nil {
				r.VerseEnd = *parsed.ChapterRef.VerseRef.Range
			}
		}
	}
	return r, nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(s string) *Ref {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the OSIS ID of the reference.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)

	if r.Chapter > 0 {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(r.Chapter))

		if r.Verse > 0 {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(r.Verse))

			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}

	return sb.String()
}

// BookID returns the lower-case book ID used for alignment data paths.
func (r *Ref) BookID() string {
	return strings.ToLower(r.Book)
}

// IsRange returns true if this reference spans multiple verses.
func (r *Ref) IsRange() bool {
	return r.VerseEnd > 0 && r.VerseEnd > r.Verse
}

// IsVerse reports whether the reference names a single verse.
func (r *Ref) IsVerse() bool {
	return r.Chapter > 0 && r.Verse > 0 && !r.IsRange()
}

// RequireVerse returns ErrNoContext unless r names a single verse.
func (r *Ref) RequireVerse() error {
	if r == nil || !r.IsVerse() {
		return alerrors.ErrNoContext
	}
	return nil
}

// Verses returns the verse numbers covered by a verse or verse range.
func (r *Ref) Verses() []int {
	if r.Verse == 0 {
		return nil
	}
	if !r.IsRange() {
		return []int{r.Verse}
	}
	out := make([]int, 0, r.VerseEnd-r.Verse+1)
	for v := r.Verse; v <= r.VerseEnd; v++ {
		out = append(out, v)
	}
	return out
}

// Contains returns true if this reference contains the other reference.
// Book IDs compare case-insensitively.
func (r *Ref) Contains(other *Ref) bool {
	if !strings.EqualFold(r.Book, other.Book) {
		return false
	}

	// Book-only reference contains all chapters
	if r.Chapter == 0 {
		return true
	}

	if r.Chapter != other.Chapter {
		return false
	}

	// Chapter-only reference contains all verses in that chapter
	if r.Verse == 0 {
		return true
	}

	if r.IsRange() {
		return other.Verse >= r.Verse && other.Verse <= r.VerseEnd
	}

	return r.Verse == other.Verse
}
