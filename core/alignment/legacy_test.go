package alignment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

func selectorState() State {
	v := &Verse{
		SourceTokens: words("olleh"),
		TargetTokens: words("hello", "world"),
		Alignments:   []Alignment{al(ints(0), ints(0))},
		Suggestions:  []Alignment{},
	}
	return stateWith(1, 1, v)
}

func TestLegacyChapterAlignments(t *testing.T) {
	got, err := LegacyChapterAlignments(selectorState(), 1)
	require.NoError(t, err)

	want := LegacyChapter{
		"1": {
			Alignments: []LegacyAlignment{{
				TopWords:    []TopWord{{Word: "olleh", Occurrence: 1, Occurrences: 1}},
				BottomWords: []BottomWord{{Word: "hello", Occurrence: 1, Occurrences: 1, Type: BottomWordType}},
			}},
			WordBank: []BottomWord{{Word: "world", Occurrence: 1, Occurrences: 1, Type: BottomWordType}},
		},
	}
	assert.Equal(t, want, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":{
		"alignments":[{
			"topWords":[{"word":"olleh","strong":"","lemma":"","morph":"","occurrence":1,"occurrences":1}],
			"bottomWords":[{"word":"hello","occurrence":1,"occurrences":1,"type":"bottomWord"}]
		}],
		"wordBank":[{"word":"world","occurrence":1,"occurrences":1,"type":"bottomWord"}]
	}}`, string(data))

	_, err = LegacyChapterAlignments(selectorState(), 2)
	assert.True(t, errors.Is(err, alerrors.ErrNotFound))
}

func titusWithTargets() *Verse {
	v := titus()
	v.TargetTokens = words("Paul", "a", "servant", "of", "God", "and", "an", "apostle")
	v.Alignments = []Alignment{
		al(ints(0), ints(0)),
		al(ints(1), ints(1, 2)),
		al(ints(2), ints(4)),
		al(ints(3), ints(6, 7)),
		al(ints(4), ints(5)),
	}
	return v
}

func TestLegacyRoundTrip(t *testing.T) {
	v := titusWithTargets()
	legacy, err := LegacyChapterAlignments(stateWith(1, 1, v), 1)
	require.NoError(t, err)
	require.Len(t, legacy["1"].WordBank, 1)
	assert.Equal(t, "of", legacy["1"].WordBank[0].Word)

	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	var decoded LegacyChapter
	require.NoError(t, json.Unmarshal(data, &decoded))

	verses, err := MigrateChapterAlignments(decoded, Baseline{1: v.SourceTokens}, Baseline{1: v.TargetTokens})
	require.NoError(t, err)
	got := verses[1]
	require.NotNil(t, got)

	requireAlignments(t, v.Alignments, got.Alignments)
	assert.Equal(t, v.SourceTokens, got.SourceTokens)
	assert.Equal(t, v.TargetTokens, got.TargetTokens)
	require.NoError(t, got.Validate())
}

func TestFormatAlignmentData(t *testing.T) {
	data := LegacyChapter{
		"2": {
			Alignments: []LegacyAlignment{
				{TopWords: []TopWord{{Word: "b", Occurrence: 1, Occurrences: 1}}, BottomWords: []BottomWord{{Word: "y", Occurrence: 1, Occurrences: 1}}},
				{TopWords: []TopWord{{Word: "a", Occurrence: 1, Occurrences: 1}}, BottomWords: []BottomWord{}},
			},
			WordBank: []BottomWord{{Word: "x", Occurrence: 1, Occurrences: 1}},
		},
	}
	formatted, err := FormatAlignmentData(data)
	require.NoError(t, err)
	fv := formatted[2]
	assert.Equal(t, []Token{{Text: "b", Occurrence: 1, Occurrences: 1}, {Text: "a", Occurrence: 1, Occurrences: 1}}, fv.SourceTokens)
	assert.Equal(t, []Token{{Text: "y", Occurrence: 1, Occurrences: 1}, {Text: "x", Occurrence: 1, Occurrences: 1}}, fv.TargetTokens)
	require.Len(t, fv.Alignments, 2)

	verses, err := NormalizeAlignmentData(formatted, Baseline{2: words("a", "b")}, Baseline{2: words("x", "y")})
	require.NoError(t, err)
	got := verses[2]
	assert.Equal(t, "a b", got.SourceTokens.String())
	assert.Equal(t, "x y", got.TargetTokens.String())
	requireAlignments(t, []Alignment{al(ints(0), nil), al(ints(1), ints(1))}, got.Alignments)
	assert.NotNil(t, got.Suggestions)
}

func TestFormatAlignmentDataBadVerseKey(t *testing.T) {
	_, err := FormatAlignmentData(LegacyChapter{"one": {}})
	assert.True(t, errors.Is(err, alerrors.ErrInvalidInput))
}

func TestMigrateUnexpectedToken(t *testing.T) {
	data := LegacyChapter{
		"3": {
			Alignments: []LegacyAlignment{{TopWords: []TopWord{{Word: "foo", Occurrence: 1, Occurrences: 1}}}},
			WordBank:   []BottomWord{},
		},
	}
	_, err := MigrateChapterAlignments(data, Baseline{3: words("bar")}, Baseline{3: words("baz")})
	require.Error(t, err)

	var dataErr *alerrors.AlignmentDataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, alerrors.SideSource, dataErr.Side)
	assert.Equal(t, 3, dataErr.Verse)
	assert.Equal(t, `unexpected source token "foo" (1 of 1) for verse 3`, err.Error())
}

func TestTopWordStrongsFallback(t *testing.T) {
	var w TopWord
	require.NoError(t, json.Unmarshal([]byte(`{"word":"Παῦλος","strongs":"G39720","occurrence":1,"occurrences":1}`), &w))
	assert.Equal(t, "G39720", w.Strong)

	require.NoError(t, json.Unmarshal([]byte(`{"word":"Παῦλος","strong":"G1","strongs":"G2"}`), &w))
	assert.Equal(t, "G1", w.Strong)
}
