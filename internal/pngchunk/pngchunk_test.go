package pngchunk

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testPNG encodes a small raster through the standard library codec so that
// fixtures are always structurally valid PNG streams.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

// parseChunks walks a PNG stream and returns the chunk types in order.
func parseChunks(t *testing.T, data []byte) []string {
	t.Helper()
	if !bytes.Equal(data[:8], pngSignature) {
		t.Fatal("missing signature")
	}
	var chunkTypes []string
	off := 8
	for off+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		chunkTypes = append(chunkTypes, typ)
		off += 8 + length + 4
		if typ == "IEND" {
			break
		}
	}
	return chunkTypes
}

func TestBuildTextChunkRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  string
		json string
	}{
		{name: "simple payload", key: "chara", json: `{"name":"Eve"}`},
		{name: "empty payload", key: "ccv3", json: ""},
		{name: "unicode payload", key: "swelld", json: `{"name":"Évë ☂"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, err := BuildTextChunk(tt.key, tt.json)
			if err != nil {
				t.Fatalf("BuildTextChunk: %v", err)
			}

			length := int(binary.BigEndian.Uint32(chunk[:4]))
			if got := len(chunk); got != 12+length {
				t.Fatalf("chunk length = %d, want %d", got, 12+length)
			}
			if typ := string(chunk[4:8]); typ != "tEXt" {
				t.Fatalf("chunk type = %q", typ)
			}

			data := chunk[8 : 8+length]
			nul := bytes.IndexByte(data, 0x00)
			if nul < 0 {
				t.Fatal("no NUL separator in chunk data")
			}
			if got := string(data[:nul]); got != tt.key {
				t.Errorf("keyword = %q, want %q", got, tt.key)
			}

			decoded, err := base64.StdEncoding.DecodeString(string(data[nul+1:]))
			if err != nil {
				t.Fatalf("value is not base64: %v", err)
			}
			if string(decoded) != tt.json {
				t.Errorf("round-tripped JSON = %q, want %q", decoded, tt.json)
			}
		})
	}
}

func TestBuildTextChunkCRCFixture(t *testing.T) {
	// Reference CRC-32 (zlib polynomial) of "tEXt" + "chara" + NUL +
	// base64(`{"name":"Eve"}`), computed with an independent implementation.
	const wantCRC = 0x3b246cec

	chunk, err := BuildTextChunk("chara", `{"name":"Eve"}`)
	if err != nil {
		t.Fatalf("BuildTextChunk: %v", err)
	}
	got := binary.BigEndian.Uint32(chunk[len(chunk)-4:])
	if got != wantCRC {
		t.Errorf("CRC = %#x, want %#x", got, wantCRC)
	}
}

func TestBuildTextChunkInvalidKeyword(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "non-latin-1", key: "chāra"},
		{name: "too long", key: string(bytes.Repeat([]byte{'k'}, 80))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildTextChunk(tt.key, "{}"); !errors.Is(err, ErrInvalidKeyword) {
				t.Errorf("expected ErrInvalidKeyword, got %v", err)
			}
		})
	}
}

func TestEmbedChunksLengthLaw(t *testing.T) {
	base := testPNG(t)
	chunks := []Chunk{
		{Key: "chara", JSON: `{"name":"Eve"}`},
		{Key: "ccv3", JSON: `{"name":"Eve"}`},
	}

	out, err := EmbedChunks(base, chunks)
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}

	wantLen := len(base)
	for _, c := range chunks {
		b, err := BuildTextChunk(c.Key, c.JSON)
		if err != nil {
			t.Fatalf("BuildTextChunk: %v", err)
		}
		wantLen += len(b)
	}
	if len(out) != wantLen {
		t.Errorf("output length = %d, want %d", len(out), wantLen)
	}
}

func TestEmbedChunksOutputDecodes(t *testing.T) {
	base := testPNG(t)
	out, err := EmbedChunks(base, []Chunk{{Key: "swelld", JSON: `{"type":"swelldreams-character"}`}})
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}

	// A conformant decoder must still read the image; unknown ancillary
	// chunks are skipped.
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 4 || got.Dy() != 4 {
		t.Errorf("decoded bounds = %v", got)
	}
}

func TestEmbedChunksPlacementBeforeIEND(t *testing.T) {
	base := testPNG(t)
	out, err := EmbedChunks(base, []Chunk{
		{Key: "chara", JSON: "{}"},
		{Key: "ccv3", JSON: "{}"},
	})
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}

	chunkTypes := parseChunks(t, out)
	if len(chunkTypes) < 3 {
		t.Fatalf("too few chunks: %v", chunkTypes)
	}
	if chunkTypes[len(chunkTypes)-1] != "IEND" {
		t.Errorf("last chunk = %q, want IEND", chunkTypes[len(chunkTypes)-1])
	}
	if chunkTypes[len(chunkTypes)-2] != "tEXt" || chunkTypes[len(chunkTypes)-3] != "tEXt" {
		t.Errorf("tEXt chunks not immediately before IEND: %v", chunkTypes)
	}
}

func TestEmbedChunksPreservesHeadAndTail(t *testing.T) {
	base := testPNG(t)
	// Nonstandard trailing bytes after IEND must survive.
	trailing := append(append([]byte{}, base...), []byte("TRAILER")...)

	out, err := EmbedChunks(trailing, []Chunk{{Key: "chara", JSON: "{}"}})
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}

	if !bytes.HasSuffix(out, []byte("TRAILER")) {
		t.Error("trailing bytes after IEND were dropped")
	}
	if !bytes.HasPrefix(out, base[:len(base)-12]) {
		t.Error("bytes before the insertion point were modified")
	}
}

func TestEmbedChunksZeroChunks(t *testing.T) {
	base := testPNG(t)
	out, err := EmbedChunks(base, nil)
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}
	if !bytes.Equal(out, base) {
		t.Error("zero-chunk embed modified the buffer")
	}
	// Output must be a copy, not an alias of the input.
	if len(out) > 0 {
		out[0] ^= 0xFF
		if base[0] == out[0] {
			t.Error("output aliases the input buffer")
		}
	}
}

func TestEmbedChunksFormatErrors(t *testing.T) {
	base := testPNG(t)

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{name: "empty input", input: nil, wantErr: ErrNotPNG},
		{name: "wrong signature", input: []byte("GIF89a not a png at all"), wantErr: ErrNotPNG},
		{name: "truncated before IEND", input: base[:len(base)-12], wantErr: ErrMissingIEND},
		{name: "signature only", input: base[:8], wantErr: ErrMissingIEND},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EmbedChunks(tt.input, []Chunk{{Key: "chara", JSON: "{}"}})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
