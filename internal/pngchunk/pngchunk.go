// Package pngchunk builds PNG tEXt chunks and splices them into an existing
// PNG byte stream immediately before the terminal IEND chunk. Chunk values
// are always base64-encoded UTF-8 JSON, never raw JSON, so the payload stays
// transport-safe for keyword-scanning tools. The package never decodes pixel
// data and supports no chunk type other than tEXt.
package pngchunk

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// pngSignature is the fixed 8-byte prefix of every PNG stream.
var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

const (
	chunkTypeText = "tEXt"
	chunkTypeIEND = "IEND"

	// PNG keywords are 1-79 bytes of Latin-1.
	maxKeywordLen = 79
)

// Format errors.
var (
	ErrNotPNG         = errors.New("data is not a PNG stream")
	ErrMissingIEND    = errors.New("PNG stream has no IEND chunk")
	ErrInvalidKeyword = errors.New("invalid tEXt keyword")
)

// Chunk describes one tEXt chunk to embed: a keyword and the JSON payload
// that becomes its base64 value.
type Chunk struct {
	Key  string
	JSON string
}

// BuildTextChunk encodes jsonStr as base64(UTF-8) and emits a complete tEXt
// chunk: big-endian data length, chunk type, keyword + NUL + value, and the
// CRC-32 of type and data. Returns ErrInvalidKeyword when key is empty,
// longer than 79 bytes, or contains characters outside Latin-1.
func BuildTextChunk(key, jsonStr string) ([]byte, error) {
	if err := validateKeyword(key); err != nil {
		return nil, err
	}

	value := base64.StdEncoding.EncodeToString([]byte(jsonStr))

	data := make([]byte, 0, len(key)+1+len(value))
	for _, r := range key {
		// Latin-1: one byte per code point.
		data = append(data, byte(r))
	}
	data = append(data, 0x00)
	data = append(data, value...)

	// CRC covers the chunk type and data, not the length field.
	crc := crc32.NewIEEE()
	crc.Write([]byte(chunkTypeText))
	crc.Write(data)

	out := make([]byte, 0, 12+len(data))
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, chunkTypeText...)
	out = append(out, data...)
	out = binary.BigEndian.AppendUint32(out, crc.Sum32())
	return out, nil
}

// EmbedChunks returns a new buffer with every chunk spliced in caller order
// immediately before the IEND chunk of png. Every byte before and after the
// insertion point is preserved, including nonstandard trailing bytes after
// IEND, so the output length equals the input length plus the sum of the
// emitted chunk lengths. An empty chunk list returns an unmodified copy.
//
// Returns ErrNotPNG when the signature is missing and ErrMissingIEND when
// the chunk walk reaches the end of the buffer without finding a terminal
// chunk.
func EmbedChunks(png []byte, chunks []Chunk) ([]byte, error) {
	iendStart, err := findIEND(png)
	if err != nil {
		return nil, err
	}

	built := make([][]byte, 0, len(chunks))
	total := 0
	for _, c := range chunks {
		b, err := BuildTextChunk(c.Key, c.JSON)
		if err != nil {
			return nil, fmt.Errorf("building %q chunk: %w", c.Key, err)
		}
		built = append(built, b)
		total += len(b)
	}

	out := make([]byte, 0, len(png)+total)
	out = append(out, png[:iendStart]...)
	for _, b := range built {
		out = append(out, b...)
	}
	out = append(out, png[iendStart:]...)
	return out, nil
}

// findIEND walks the chunk sequence by declared lengths and returns the
// offset where the IEND chunk begins (its length field). A forward walk is
// bounds-checked at every step; a truncated or corrupt stream surfaces as
// ErrMissingIEND rather than a panic.
func findIEND(png []byte) (int, error) {
	if len(png) < len(pngSignature) || !bytes.Equal(png[:len(pngSignature)], pngSignature) {
		return 0, ErrNotPNG
	}

	off := len(pngSignature)
	for off+8 <= len(png) {
		length := int64(binary.BigEndian.Uint32(png[off : off+4]))
		typ := string(png[off+4 : off+8])
		if typ == chunkTypeIEND {
			return off, nil
		}

		next := int64(off) + 8 + length + 4
		if next > int64(len(png)) {
			break
		}
		off = int(next)
	}
	return 0, ErrMissingIEND
}

// validateKeyword enforces the tEXt keyword precondition: 1-79 bytes, all
// within Latin-1. Anything else is undefined per the PNG spec and rejected.
func validateKeyword(key string) error {
	if key == "" || len(key) > maxKeywordLen {
		return fmt.Errorf("%w: %q", ErrInvalidKeyword, key)
	}
	for _, r := range key {
		if r > 0xFF {
			return fmt.Errorf("%w: %q contains non-Latin-1 character", ErrInvalidKeyword, key)
		}
	}
	return nil
}
