package search

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint generates a stable hash of the document slice. The
// fingerprint changes when any document's content or the document order
// changes, enabling cache invalidation for strategies that hold derived
// state such as a bleve index or embedding vectors.
func Fingerprint(docs []Document) string {
	h := sha256.New()

	for _, doc := range docs {
		h.Write([]byte(doc.Name))
		h.Write([]byte{0}) // separator
		h.Write([]byte(doc.Description))
		h.Write([]byte{0})
		h.Write([]byte(doc.Text))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
