// Package alignment provides the word-alignment data model for a verse pair
// and the algorithms that keep it consistent while it is edited.
//
// A verse holds two ordered sentences (source and target) and a list of
// alignments pairing a source ngram with a (possibly empty) target ngram.
// Ngrams are sorted sets of token positions within their sentence.
//
// # Invariants
//
// After every editing operation (align, unalign, insert, reset, repair and
// their rendered forms, with UnalignRenderedSourceToken only as the first
// half of a MoveSourceToken plan):
//
//   - every source position appears in exactly one alignment's source ngram
//   - target ngrams are mutually disjoint; unaligned target tokens live in
//     the implicit word bank
//   - source ngrams are non-empty
//   - alignments are ordered by ascending minimum source position
//
// SetChapterAlignments, SetSourceTokens and SetTargetTokens store what they
// are given without checking it; Verse.Validate checks these invariants
// and the session runs it after every dispatch.
//
// # State transitions
//
// State is a chapter → verse → Verse mapping. Operations are value types
// (AlignTargetToken, RepairVerse, SetAlignmentSuggestions, ...) applied by
// Apply, which returns a new State and never mutates its input. ApplyAll
// applies a sequence atomically; MoveSourceToken plans the two-step
// unalign-then-align sequence used when a source token is dragged between
// alignments.
//
// # Suggestions
//
// Machine suggestions are stored beside the confirmed alignments and are
// overlaid on them by Render. The overlay is advisory: confirmed alignments
// are never rewritten by it. The rendered operations (AlignRenderedTargetToken
// and friends) accept or reject what the overlay shows.
//
// # Identity
//
// Tokens are matched across sentences by TokenKey (text, occurrence,
// occurrences), never by position. Repair, legacy migration and suggestion
// translation all resolve tokens through a TokenIndex built once per sentence.
package alignment
