// Package osis loads source-language verses from OSIS XML.
//
// Words are the <w> elements of a verse. Their lemma attribute carries the
// Strong's number ("strong:G3972") and the dictionary form
// ("lemma:Παῦλος"); morph carries the parsing code ("robinson:N-NSM").
// Both container verses (<verse osisID="Tit.1.1">...</verse>) and milestone
// verses (<verse sID="Tit.1.1"/> ... <verse eID="Tit.1.1"/>) are read.
package osis

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
	"github.com/FocuswithJustin/JuniperAligner/internal/tokenize"
)

var (
	verseExpr = xpath.MustCompile("//verse")
	wordExpr  = xpath.MustCompile(".//w")
)

// Document is a parsed OSIS document.
type Document struct {
	root *xmlquery.Node
}

// Verse is one source verse.
type Verse struct {
	Ref    *ref.Ref
	Tokens alignment.Sentence
}

// Text returns the normalised verse text.
func (v Verse) Text() string {
	return v.Tokens.String()
}

// Parse parses OSIS data. Entity expansion is disabled.
func Parse(data []byte) (*Document, error) {
	if err := checkWellFormed(data); err != nil {
		return nil, alerrors.NewParse("osis", "", err.Error())
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, alerrors.NewParse("osis", "", err.Error())
	}
	return &Document{root: root}, nil
}

// ParseFile parses the OSIS file at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerrors.NewIO("read", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		var pe *alerrors.ParseError
		if alerrors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Entity = map[string]string{}
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Verses returns every verse in document order.
func (d *Document) Verses() ([]Verse, error) {
	var verses []Verse
	for _, n := range xmlquery.QuerySelectorAll(d.root, verseExpr) {
		id := n.SelectAttr("osisID")
		if sid := n.SelectAttr("sID"); sid != "" {
			if id == "" {
				id = sid
			}
			r, err := ref.Parse(firstID(id))
			if err != nil {
				return nil, err
			}
			verses = append(verses, Verse{Ref: r, Tokens: alignment.Number(milestoneWords(n, sid))})
			continue
		}
		if id == "" || n.SelectAttr("eID") != "" {
			continue
		}
		r, err := ref.Parse(firstID(id))
		if err != nil {
			return nil, err
		}
		var tokens []alignment.Token
		for _, w := range xmlquery.QuerySelectorAll(n, wordExpr) {
			tokens = append(tokens, wordTokens(w)...)
		}
		verses = append(verses, Verse{Ref: r, Tokens: alignment.Number(tokens)})
	}
	return verses, nil
}

// Chapter returns the verses of one chapter as a baseline.
func (d *Document) Chapter(book string, chapter int) (alignment.Baseline, error) {
	verses, err := d.Verses()
	if err != nil {
		return nil, err
	}
	baseline := make(alignment.Baseline)
	for _, v := range verses {
		if strings.EqualFold(v.Ref.Book, book) && v.Ref.Chapter == chapter {
			baseline[v.Ref.Verse] = v.Tokens
		}
	}
	if len(baseline) == 0 {
		return nil, alerrors.NewNotFound("chapter", fmt.Sprintf("%s.%d", book, chapter))
	}
	return baseline, nil
}

// Verse returns the tokens of the verse named by r.
func (d *Document) Verse(r *ref.Ref) (alignment.Sentence, error) {
	if err := r.RequireVerse(); err != nil {
		return nil, err
	}
	chapter, err := d.Chapter(r.Book, r.Chapter)
	if err != nil {
		return nil, err
	}
	tokens, ok := chapter[r.Verse]
	if !ok {
		return nil, alerrors.NewNotFound("verse", r.String())
	}
	return tokens, nil
}

// firstID returns the first of a space separated osisID list.
func firstID(id string) string {
	if i := strings.IndexByte(id, ' '); i >= 0 {
		return id[:i]
	}
	return id
}

// milestoneWords collects <w> elements after start up to the matching eID.
func milestoneWords(start *xmlquery.Node, sid string) []alignment.Token {
	var tokens []alignment.Token
	for n := nextInDocument(start, true); n != nil; {
		if n.Type == xmlquery.ElementNode {
			switch n.Data {
			case "verse":
				if n.SelectAttr("eID") == sid || n.SelectAttr("sID") != "" {
					return tokens
				}
			case "w":
				tokens = append(tokens, wordTokens(n)...)
				n = nextInDocument(n, false)
				continue
			}
		}
		n = nextInDocument(n, true)
	}
	return tokens
}

// nextInDocument returns the node after n in document order, optionally
// skipping n's children.
func nextInDocument(n *xmlquery.Node, descend bool) *xmlquery.Node {
	if descend && n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// wordTokens converts a <w> element into tokens. A <w> holding several
// words yields one token per word, each carrying the element's attributes.
func wordTokens(w *xmlquery.Node) []alignment.Token {
	strong, lemma := parseLemma(w.SelectAttr("lemma"))
	morph := stripPrefix(w.SelectAttr("morph"))
	var tokens []alignment.Token
	for _, text := range tokenize.Split(w.InnerText()) {
		tokens = append(tokens, alignment.Token{
			Text:   text,
			Strong: strong,
			Lemma:  lemma,
			Morph:  morph,
		})
	}
	return tokens
}

// parseLemma splits an OSIS lemma attribute into Strong's number and lemma.
func parseLemma(attr string) (strong, lemma string) {
	for _, part := range strings.Fields(attr) {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			if lemma == "" {
				lemma = tokenize.NormalizeWord(part)
			}
			continue
		}
		switch {
		case strings.HasPrefix(key, "strong"):
			if strong == "" {
				strong = value
			}
		case strings.HasPrefix(key, "lemma"):
			if lemma == "" {
				lemma = tokenize.NormalizeWord(value)
			}
		}
	}
	return strong, lemma
}

func stripPrefix(attr string) string {
	attr = strings.TrimSpace(attr)
	if i := strings.IndexByte(attr, ' '); i >= 0 {
		attr = attr[:i]
	}
	if _, value, ok := strings.Cut(attr, ":"); ok {
		return value
	}
	return attr
}
