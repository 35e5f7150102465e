package ref

import (
	"encoding/json"
	"errors"
	"testing"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

func TestRefJSON(t *testing.T) {
	ref := &Ref{Book: "Tit", Chapter: 1, Verse: 1, VerseEnd: 3}

	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var decoded Ref
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if decoded != *ref {
		t.Errorf("decoded = %+v, want %+v", decoded, *ref)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected *Ref
		wantErr  bool
	}{
		// Book only
		{input: "Tit", expected: &Ref{Book: "Tit"}},
		// Book and chapter
		{input: "Tit.1", expected: &Ref{Book: "Tit", Chapter: 1}},
		{input: "tit 2", expected: &Ref{Book: "tit", Chapter: 2}},
		// Verse
		{input: "Tit.1.1", expected: &Ref{Book: "Tit", Chapter: 1, Verse: 1}},
		{input: "tit 1:4", expected: &Ref{Book: "tit", Chapter: 1, Verse: 4}},
		// Verse range
		{input: "Matt.5.3-12", expected: &Ref{Book: "Matt", Chapter: 5, Verse: 3, VerseEnd: 12}},
		// Books with numbers
		{input: "1John.3.16", expected: &Ref{Book: "1John", Chapter: 3, Verse: 16}},
		{input: "2Cor.5.21", expected: &Ref{Book: "2Cor", Chapter: 5, Verse: 21}},
		// Error cases
		{input: "", wantErr: true},
		{input: "123", wantErr: true},
		{input: "Tit.abc", wantErr: true},
		{input: "Tit.1.1.1", wantErr: true},
	}

	for _, tt := range tests {
		ref, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error", tt.input)
			} else if !errors.Is(err, alerrors.ErrInvalidInput) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidInput", tt.input, err)
			}
			continue
		}

		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if *ref != *tt.expected {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.input, *ref, *tt.expected)
		}
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		ref      *Ref
		expected string
	}{
		{&Ref{Book: "Tit"}, "Tit"},
		{&Ref{Book: "Tit", Chapter: 1}, "Tit.1"},
		{&Ref{Book: "Tit", Chapter: 1, Verse: 1}, "Tit.1.1"},
		{&Ref{Book: "Matt", Chapter: 5, Verse: 3, VerseEnd: 12}, "Matt.5.3-12"},
		{MustParse("tit 1:4"), "tit.1.4"},
	}

	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.expected {
			t.Errorf("Ref.String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestRefBookID(t *testing.T) {
	if got := MustParse("1John.3.16").BookID(); got != "1john" {
		t.Errorf("BookID() = %q, want %q", got, "1john")
	}
}

func TestRefIsRange(t *testing.T) {
	tests := []struct {
		ref     *Ref
		isRange bool
		isVerse bool
	}{
		{&Ref{Book: "Tit", Chapter: 1}, false, false},
		{&Ref{Book: "Tit", Chapter: 1, Verse: 1}, false, true},
		{&Ref{Book: "Tit", Chapter: 1, Verse: 1, VerseEnd: 1}, false, true},
		{&Ref{Book: "Tit", Chapter: 1, Verse: 1, VerseEnd: 3}, true, false},
	}

	for _, tt := range tests {
		if got := tt.ref.IsRange(); got != tt.isRange {
			t.Errorf("Ref{%s}.IsRange() = %v, want %v", tt.ref, got, tt.isRange)
		}
		if got := tt.ref.IsVerse(); got != tt.isVerse {
			t.Errorf("Ref{%s}.IsVerse() = %v, want %v", tt.ref, got, tt.isVerse)
		}
	}
}

func TestRefRequireVerse(t *testing.T) {
	var missing *Ref
	if err := missing.RequireVerse(); !errors.Is(err, alerrors.ErrNoContext) {
		t.Errorf("nil RequireVerse() = %v, want ErrNoContext", err)
	}
	if err := MustParse("Tit.1").RequireVerse(); !errors.Is(err, alerrors.ErrNoContext) {
		t.Errorf("chapter RequireVerse() = %v, want ErrNoContext", err)
	}
	if err := MustParse("Tit.1.1").RequireVerse(); err != nil {
		t.Errorf("verse RequireVerse() = %v, want nil", err)
	}
}

func TestRefVerses(t *testing.T) {
	got := MustParse("Tit.1.2-4").Verses()
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Verses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Verses()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if got := MustParse("Tit.1").Verses(); got != nil {
		t.Errorf("chapter Verses() = %v, want nil", got)
	}
}

func TestRefContains(t *testing.T) {
	tests := []struct {
		ref      *Ref
		other    *Ref
		contains bool
	}{
		// Book contains all chapters
		{&Ref{Book: "Tit"}, &Ref{Book: "tit", Chapter: 1, Verse: 1}, true},
		// Different book
		{&Ref{Book: "Tit"}, &Ref{Book: "Phlm", Chapter: 1, Verse: 1}, false},
		// Chapter contains all verses
		{&Ref{Book: "Tit", Chapter: 1}, &Ref{Book: "Tit", Chapter: 1, Verse: 5}, true},
		// Different chapter
		{&Ref{Book: "Tit", Chapter: 1}, &Ref{Book: "Tit", Chapter: 2, Verse: 1}, false},
		// Exact verse match
		{&Ref{Book: "Tit", Chapter: 1, Verse: 1}, &Ref{Book: "Tit", Chapter: 1, Verse: 1}, true},
		// Verse range
		{&Ref{Book: "Matt", Chapter: 5, Verse: 3, VerseEnd: 12}, &Ref{Book: "Matt", Chapter: 5, Verse: 5}, true},
		{&Ref{Book: "Matt", Chapter: 5, Verse: 3, VerseEnd: 12}, &Ref{Book: "Matt", Chapter: 5, Verse: 15}, false},
	}

	for _, tt := range tests {
		if got := tt.ref.Contains(tt.other); got != tt.contains {
			t.Errorf("Ref{%s}.Contains(Ref{%s}) = %v, want %v", tt.ref, tt.other, got, tt.contains)
		}
	}
}
