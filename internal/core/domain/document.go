package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DocIDLength is the fixed width of a document identifier in hex characters.
const DocIDLength = 16

// Document is the metadata record for an ingested file.
// Its identity is derived from the file bytes, never from the filename.
type Document struct {
	// ID is the content digest of the source file (see NewDocID).
	ID string `json:"id"`

	// Filename is the base name of the file at ingestion time.
	Filename string `json:"filename"`

	// Path is the absolute path the file was ingested from.
	Path string `json:"filepath"`

	// Format is the lower-case extension used to pick an extractor.
	Format string `json:"format"`

	// SizeBytes is the size of the source file.
	SizeBytes int64 `json:"size"`

	// IngestedAt is when the document was last ingested.
	IngestedAt time.Time `json:"uploaded_at"`

	// ContentLength is the number of characters of extracted text.
	ContentLength int `json:"content_length"`

	// ChunkCount is the number of chunks produced from the extracted text.
	ChunkCount int `json:"chunks_count"`

	// Sequence is the insertion order assigned by the metadata store.
	// Re-ingesting identical content keeps the original sequence.
	Sequence int64 `json:"seq"`
}

// Chunk is an offset-tagged span of a document's extracted text.
// Chunks are created as a batch per ingestion and never mutated.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string `json:"doc_id"`

	// Position is the ordinal position within the document.
	Position int `json:"position"`

	// Text is the trimmed chunk content.
	Text string `json:"text"`

	// Start is the inclusive character offset into the extracted text.
	Start int `json:"start"`

	// End is the exclusive character offset into the extracted text.
	End int `json:"end"`

	// Length is the number of characters in Text.
	Length int `json:"length"`
}

// DocumentInfo extends a Document with its storage footprint.
type DocumentInfo struct {
	Document

	// StorageBytes is the size of the document's chunk sidecar.
	StorageBytes int64
}

// NewDocID derives the document identifier from file content.
// Identical bytes always produce the same identifier.
func NewDocID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:DocIDLength]
}

// IsValidDocID reports whether id has the shape produced by NewDocID.
func IsValidDocID(id string) bool {
	if len(id) != DocIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
