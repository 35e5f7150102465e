package alignment

import "context"

// Tokenizer splits verse text into a sentence.
type Tokenizer interface {
	Tokenize(text string) Sentence
}

// Predictor proposes alignments for a verse pair.
type Predictor interface {
	Predict(ctx context.Context, source, target Sentence) ([]Prediction, error)
}

// Number assigns positions and occurrence data to tokens in order and
// returns the resulting sentence. Other token fields are kept.
func Number(tokens []Token) Sentence {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t.Text]++
	}
	seen := make(map[string]int, len(counts))
	out := make(Sentence, len(tokens))
	for i, t := range tokens {
		seen[t.Text]++
		t.Position = i
		t.Occurrence = seen[t.Text]
		t.Occurrences = counts[t.Text]
		out[i] = t
	}
	return out
}

// NewSentence builds a numbered sentence from plain words.
func NewSentence(texts ...string) Sentence {
	tokens := make([]Token, len(texts))
	for i, w := range texts {
		tokens[i] = Token{Text: w}
	}
	return Number(tokens)
}
