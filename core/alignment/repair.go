package alignment

// Repair reconciles a verse's alignments against freshly tokenized
// sentences.
//
// Tokens are matched by identity (text, occurrence, occurrences). Matched
// tokens move to their new positions, unmatched ones are dropped from their
// ngrams. An alignment that loses all of its source tokens is removed and its
// target tokens fall back to the word bank; one that loses all of its target
// tokens stays, unaligned. Fresh source tokens that no alignment covers get
// a singleton alignment. When stored data claims a token twice the first
// claim, in alignment order, wins. Suggestions are always cleared.
//
// The input verse is not modified.
func Repair(v *Verse, source, target Sentence) *Verse {
	sourceMap := remap(v.SourceTokens, source.Index())
	targetMap := remap(v.TargetTokens, target.Index())

	claimedSource := make(map[int]bool)
	claimedTarget := make(map[int]bool)
	alignments := make([]Alignment, 0, len(v.Alignments))

	for _, a := range v.Alignments {
		next := Alignment{SourceNgram: Ngram{}, TargetNgram: Ngram{}}
		for _, old := range a.SourceNgram {
			pos, ok := sourceMap[old]
			if !ok || claimedSource[pos] {
				continue
			}
			claimedSource[pos] = true
			next.SourceNgram = next.SourceNgram.Insert(pos)
		}
		if next.SourceNgram.IsEmpty() {
			continue
		}
		for _, old := range a.TargetNgram {
			pos, ok := targetMap[old]
			if !ok || claimedTarget[pos] {
				continue
			}
			claimedTarget[pos] = true
			next.TargetNgram = next.TargetNgram.Insert(pos)
		}
		alignments = append(alignments, next)
	}

	for _, t := range source {
		if !claimedSource[t.Position] {
			alignments = append(alignments, Alignment{SourceNgram: Ngram{t.Position}, TargetNgram: Ngram{}})
		}
	}
	sortAlignments(alignments)

	return &Verse{
		SourceTokens: source.Clone(),
		TargetTokens: target.Clone(),
		Alignments:   alignments,
		Suggestions:  []Alignment{},
	}
}

// RepairAndInspect repairs the verse and reports whether its alignments
// changed as a result.
func RepairAndInspect(v *Verse, source, target Sentence) (*Verse, bool) {
	repaired := Repair(v, source, target)
	return repaired, !alignmentsEqual(v.Alignments, repaired.Alignments)
}

// remap maps stale positions in old to positions in the fresh sentence
// behind index. Stale tokens missing from the fresh sentence are absent
// from the result.
func remap(old Sentence, index TokenIndex) map[int]int {
	out := make(map[int]int, len(old))
	for _, t := range old {
		if pos, ok := index.Lookup(t); ok {
			out[t.Position] = pos
		}
	}
	return out
}
