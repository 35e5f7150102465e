package alignment

import (
	"strings"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

// Token is a single word occurrence in a source or target sentence.
type Token struct {
	// Text is the surface form of the word.
	Text string `json:"text"`

	// Position is the 0-based index within the owning sentence.
	Position int `json:"position"`

	// Occurrence is the 1-based occurrence of Text within the sentence.
	Occurrence int `json:"occurrence"`

	// Occurrences is how many times Text appears in the sentence.
	Occurrences int `json:"occurrences"`

	// Strong is the Strong's number (source tokens only).
	Strong string `json:"strong,omitempty"`

	// Lemma is the dictionary form (source tokens only).
	Lemma string `json:"lemma,omitempty"`

	// Morph is the morphological code (source tokens only).
	Morph string `json:"morph,omitempty"`
}

// NewToken creates a token with occurrence data defaulted to 1 of 1.
func NewToken(text string, position int) Token {
	return Token{
		Text:        text,
		Position:    position,
		Occurrence:  1,
		Occurrences: 1,
	}
}

// TokenKey identifies a token across sentences.
type TokenKey struct {
	Text        string
	Occurrence  int
	Occurrences int
}

// Key returns the cross-sentence identity of the token.
func (t Token) Key() TokenKey {
	return TokenKey{Text: t.Text, Occurrence: t.Occurrence, Occurrences: t.Occurrences}
}

// String returns the canonical rendering of the token.
func (t Token) String() string {
	return t.Text
}

// Equal reports whether two tokens are the same word occurrence,
// ignoring position.
func (t Token) Equal(other Token) bool {
	return t.Key() == other.Key()
}

// SamePosition reports whether two tokens of one sentence are the same token.
func (t Token) SamePosition(other Token) bool {
	return t.Position == other.Position
}

// Sentence is the ordered token sequence for one side of a verse.
type Sentence []Token

// String joins the canonical token renderings with single spaces.
func (s Sentence) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Clone returns a copy of the sentence.
func (s Sentence) Clone() Sentence {
	if s == nil {
		return nil
	}
	out := make(Sentence, len(s))
	copy(out, s)
	return out
}

// Validate checks that positions run 0..n-1 in order.
func (s Sentence) Validate() error {
	for i, t := range s {
		if t.Position != i {
			return alerrors.NewValidation("position", "token "+t.Text+" is out of order")
		}
	}
	return nil
}

// Index builds a lookup from token identity to position.
func (s Sentence) Index() TokenIndex {
	idx := make(TokenIndex, len(s))
	for _, t := range s {
		if _, exists := idx[t.Key()]; !exists {
			idx[t.Key()] = t.Position
		}
	}
	return idx
}

// TokenIndex maps token identity to position within one sentence.
type TokenIndex map[TokenKey]int

// Lookup returns the position of a token matching t by identity.
func (idx TokenIndex) Lookup(t Token) (int, bool) {
	pos, ok := idx[t.Key()]
	return pos, ok
}

// resolve finds the current position of t in s, or returns an
// AlignmentDataError naming the side.
func resolve(s Sentence, t Token, side alerrors.Side) (int, error) {
	for _, candidate := range s {
		if candidate.Equal(t) {
			return candidate.Position, nil
		}
	}
	return -1, &alerrors.AlignmentDataError{
		Side:        side,
		Text:        t.Text,
		Occurrence:  t.Occurrence,
		Occurrences: t.Occurrences,
	}
}
