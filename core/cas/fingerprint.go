package cas

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a BLAKE3 digest over the given texts. Each part is
// length-prefixed, so ("ab", "c") and ("a", "bc") differ.
//
// Verse baselines are fingerprinted from their normalized source and
// target text; predictions computed against one baseline carry its
// fingerprint and are discarded once the verse is repaired.
func Fingerprint(parts ...string) string {
	h := blake3.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
