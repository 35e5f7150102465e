package osis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
)

const containerOSIS = `<?xml version="1.0" encoding="UTF-8"?>
<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace">
  <osisText osisIDWork="UGNT">
    <div type="book" osisID="Tit">
      <chapter osisID="Tit.1">
        <verse osisID="Tit.1.1">
          <w lemma="strong:G39720 lemma:Παῦλος" morph="robinson:N-NSM">Παῦλος</w>,
          <w lemma="strong:G14010 lemma:δοῦλος" morph="robinson:N-NSM">δοῦλος</w>
          <w lemma="strong:G23160 lemma:θεός" morph="robinson:N-GSM">θεοῦ</w>,
          <w lemma="strong:G11610 lemma:δέ" morph="robinson:CONJ">δὲ</w>
          <w lemma="strong:G23160 lemma:θεός" morph="robinson:N-GSM">θεοῦ</w>
        </verse>
        <verse osisID="Tit.1.2">
          <w lemma="strong:G19090">ἐπ’</w>
        </verse>
      </chapter>
    </div>
  </osisText>
</osis>`

const milestoneOSIS = `<osis><osisText>
<chapter osisID="Phlm.1">
<verse sID="Phlm.1.1" osisID="Phlm.1.1"/><w lemma="strong:G3972">Παῦλος</w> <w lemma="strong:G1198" morph="N-NSM">δέσμιος</w><verse eID="Phlm.1.1"/>
<verse sID="Phlm.1.2" osisID="Phlm.1.2"/><w>καὶ</w><verse eID="Phlm.1.2"/>
</chapter>
</osisText></osis>`

func TestVersesContainer(t *testing.T) {
	doc, err := Parse([]byte(containerOSIS))
	require.NoError(t, err)

	verses, err := doc.Verses()
	require.NoError(t, err)
	require.Len(t, verses, 2)

	v := verses[0]
	assert.Equal(t, "Tit.1.1", v.Ref.String())
	assert.Equal(t, "Παῦλος δοῦλος θεοῦ δὲ θεοῦ", v.Text())
	require.NoError(t, v.Tokens.Validate())

	first := v.Tokens[0]
	assert.Equal(t, "G39720", first.Strong)
	assert.Equal(t, "Παῦλος", first.Lemma)
	assert.Equal(t, "N-NSM", first.Morph)

	theou := v.Tokens[4]
	assert.Equal(t, 2, theou.Occurrence)
	assert.Equal(t, 2, theou.Occurrences)
	assert.Equal(t, "θεός", theou.Lemma)

	assert.Equal(t, "ἐπ", verses[1].Text())
}

func TestVersesMilestone(t *testing.T) {
	doc, err := Parse([]byte(milestoneOSIS))
	require.NoError(t, err)

	verses, err := doc.Verses()
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "Παῦλος δέσμιος", verses[0].Text())
	assert.Equal(t, "N-NSM", verses[0].Tokens[1].Morph)
	assert.Equal(t, "G1198", verses[0].Tokens[1].Strong)
	assert.Equal(t, "καὶ", verses[1].Text())
}

func TestChapterAndVerse(t *testing.T) {
	doc, err := Parse([]byte(containerOSIS))
	require.NoError(t, err)

	chapter, err := doc.Chapter("tit", 1)
	require.NoError(t, err)
	assert.Len(t, chapter, 2)

	tokens, err := doc.Verse(ref.MustParse("Tit.1.2"))
	require.NoError(t, err)
	assert.Len(t, tokens, 1)

	_, err = doc.Chapter("Tit", 2)
	assert.True(t, errors.Is(err, alerrors.ErrNotFound))

	_, err = doc.Verse(ref.MustParse("Tit.1.9"))
	assert.True(t, errors.Is(err, alerrors.ErrNotFound))

	_, err = doc.Verse(ref.MustParse("Tit.1"))
	assert.True(t, errors.Is(err, alerrors.ErrNoContext))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("<osis><verse>"))
	assert.True(t, errors.Is(err, alerrors.ErrInvalidInput))

	_, err = Parse([]byte(`<!DOCTYPE x [<!ENTITY e "boom">]><osis>&e;</osis>`))
	assert.Error(t, err, "entities are not expanded")

	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<osis>"), 0600))
	_, err = ParseFile(path)
	var pe *alerrors.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestParseLemma(t *testing.T) {
	tests := []struct {
		attr, strong, lemma string
	}{
		{"strong:G3972 lemma:Παῦλος", "G3972", "Παῦλος"},
		{"x-strongMorph:TH8804 strong:H1254", "H1254", ""},
		{"lemma.TR:λόγος", "", "λόγος"},
		{"λόγος", "", "λόγος"},
		{"", "", ""},
	}
	for _, tt := range tests {
		strong, lemma := parseLemma(tt.attr)
		assert.Equal(t, tt.strong, strong, tt.attr)
		assert.Equal(t, tt.lemma, lemma, tt.attr)
	}
}
