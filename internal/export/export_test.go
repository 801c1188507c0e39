package export

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/swelldreams/cardpress/internal/avatar"
	"github.com/swelldreams/cardpress/pkg/types"
)

func exportTestCharacter() types.Character {
	return types.Character{
		CharacterID:   "c1",
		Name:          "Eve Moreau",
		Description:   "a wanderer",
		ActiveStoryID: "s1",
		Stories: []types.Story{
			{
				StoryID:                "s1",
				Name:                   "Main",
				ActiveWelcomeMessageID: "w1",
				WelcomeMessages:        []types.WelcomeMessage{{MessageID: "w1", Text: "Hi"}},
			},
			{
				StoryID:         "s2",
				Name:            "Side",
				WelcomeMessages: []types.WelcomeMessage{{MessageID: "w2", Text: "Hello again"}},
			},
		},
		Reminders: []types.ConstantReminder{
			{Keys: []string{"forest"}, Text: "The forest is cursed."},
		},
	}
}

func writeAvatarFile(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 200, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "avatar.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// textChunks walks a PNG stream and returns keyword → decoded JSON for
// every tEXt chunk.
func textChunks(t *testing.T, data []byte) map[string]string {
	t.Helper()
	found := map[string]string{}
	off := 8
	for off+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		if typ == "tEXt" {
			payload := data[off+8 : off+8+length]
			nul := bytes.IndexByte(payload, 0x00)
			if nul < 0 {
				t.Fatal("tEXt chunk without NUL separator")
			}
			decoded, err := base64.StdEncoding.DecodeString(string(payload[nul+1:]))
			if err != nil {
				t.Fatalf("chunk value is not base64: %v", err)
			}
			found[string(payload[:nul])] = string(decoded)
		}
		if typ == "IEND" {
			break
		}
		off += 8 + length + 4
	}
	return found
}

func TestExportCardProfile(t *testing.T) {
	e := New(t.TempDir())
	res, err := e.Export(Request{
		Character:  exportTestCharacter(),
		Profile:    types.ProfileCard,
		AvatarPath: writeAvatarFile(t),
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("reading card: %v", err)
	}
	if len(data) != res.Size {
		t.Errorf("Size = %d, file has %d bytes", res.Size, len(data))
	}

	// Result is a decodable PNG at the canonical card size.
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("card does not decode: %v", err)
	}
	if img.Bounds().Dx() != avatar.CardWidth || img.Bounds().Dy() != avatar.CardHeight {
		t.Errorf("card bounds = %v", img.Bounds())
	}

	chunks := textChunks(t, data)
	if len(chunks) != 2 {
		t.Fatalf("chunk keys = %v, want chara and ccv3", chunks)
	}
	if chunks["chara"] != chunks["ccv3"] {
		t.Error("chara and ccv3 payloads differ")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(chunks["chara"]), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["spec"] != "chara_card_v3" {
		t.Errorf("spec = %v", payload["spec"])
	}
	if payload["first_mes"] != "Hi" {
		t.Errorf("first_mes = %v", payload["first_mes"])
	}
	if _, hasNative := chunks["swelld"]; hasNative {
		t.Error("card export carries a swelld chunk")
	}

	if filepath.Base(filepath.Dir(res.Path)) != "card" {
		t.Errorf("card not under profile directory: %s", res.Path)
	}
	if filepath.Base(res.Path) != "Eve_Moreau.png" {
		t.Errorf("filename = %s", filepath.Base(res.Path))
	}
}

func TestExportNativeProfile(t *testing.T) {
	e := New(t.TempDir())
	res, err := e.Export(Request{
		Character:  exportTestCharacter(),
		Profile:    types.ProfileNative,
		StoryIDs:   []string{"s1"},
		AvatarPath: writeAvatarFile(t),
		EmbedFlows: true,
		Flows:      []types.Flow{{FlowID: "f1", Name: "Greeter"}},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	chunks := textChunks(t, data)
	if len(chunks) != 1 {
		t.Fatalf("chunk keys = %v, want swelld only", chunks)
	}

	var envelope struct {
		Type       string `json:"type"`
		Version    string `json:"version"`
		ExportedAt string `json:"exportedAt"`
		Data       struct {
			Name       string        `json:"name"`
			Stories    []types.Story `json:"stories"`
			AvatarData string        `json:"avatarData"`
		} `json:"data"`
		Flows []types.Flow `json:"flows"`
	}
	if err := json.Unmarshal([]byte(chunks["swelld"]), &envelope); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}

	if envelope.Type != "swelldreams-character" || envelope.Version != "1.5" {
		t.Errorf("envelope header = %s/%s", envelope.Type, envelope.Version)
	}
	if envelope.ExportedAt == "" {
		t.Error("exportedAt missing")
	}
	if len(envelope.Data.Stories) != 1 || envelope.Data.Stories[0].StoryID != "s1" {
		t.Errorf("stories not filtered: %+v", envelope.Data.Stories)
	}
	if len(envelope.Flows) != 1 {
		t.Errorf("flows = %+v", envelope.Flows)
	}

	// The embedded avatar is the clean pre-overlay raster, so it must
	// differ from the displayed pixels, which carry the logo badge.
	prefix := "data:image/png;base64,"
	if len(envelope.Data.AvatarData) <= len(prefix) || envelope.Data.AvatarData[:len(prefix)] != prefix {
		t.Fatalf("avatarData is not a data URI")
	}
	clean, err := base64.StdEncoding.DecodeString(envelope.Data.AvatarData[len(prefix):])
	if err != nil {
		t.Fatalf("avatarData is not base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(clean)); err != nil {
		t.Fatalf("avatarData does not decode: %v", err)
	}
	if bytes.Equal(clean, data[:len(clean)]) {
		t.Error("embedded avatar should differ from the overlaid card bytes")
	}
}

func TestExportNativeWithoutFlows(t *testing.T) {
	e := New(t.TempDir())
	res, err := e.Export(Request{
		Character:  exportTestCharacter(),
		Profile:    types.ProfileNative,
		AvatarPath: writeAvatarFile(t),
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, _ := os.ReadFile(res.Path)
	chunks := textChunks(t, data)

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(chunks["swelld"]), &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["flows"]; ok {
		t.Error("flows key present without embedding")
	}
}

func TestExportMissingAvatarUsesPlaceholder(t *testing.T) {
	e := New(t.TempDir())
	res, err := e.Export(Request{
		Character:  exportTestCharacter(),
		Profile:    types.ProfileCard,
		AvatarPath: filepath.Join(t.TempDir(), "missing.png"),
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("placeholder card does not decode: %v", err)
	}
}

func TestExportFailuresProduceNoFile(t *testing.T) {
	outDir := t.TempDir()

	t.Run("unknown profile", func(t *testing.T) {
		e := New(outDir)
		_, err := e.Export(Request{Character: exportTestCharacter(), Profile: "both"})
		if !errors.Is(err, types.ErrProfileUnknown) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("corrupt avatar file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.png")
		if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
			t.Fatal(err)
		}
		e := New(outDir)
		_, err := e.Export(Request{
			Character:  exportTestCharacter(),
			Profile:    types.ProfileCard,
			AvatarPath: path,
		})
		if !errors.Is(err, avatar.ErrUndecodable) {
			t.Errorf("error = %v", err)
		}
	})

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed exports left files: %v", entries)
	}
}

func TestExportOverwrites(t *testing.T) {
	e := New(t.TempDir())
	req := Request{
		Character:  exportTestCharacter(),
		Profile:    types.ProfileCard,
		AvatarPath: writeAvatarFile(t),
	}

	first, err := e.Export(req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Export(req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Path != second.Path {
		t.Errorf("paths differ: %s vs %s", first.Path, second.Path)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Eve", "Eve"},
		{"Eve Moreau", "Eve_Moreau"},
		{"Eve/../../etc", "Eve_______etc"},
		{"héros №1", "h_ros__1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExportSuffixDisambiguates(t *testing.T) {
	e := New(t.TempDir())
	req := Request{
		Character:  exportTestCharacter(),
		Profile:    types.ProfileCard,
		AvatarPath: writeAvatarFile(t),
		Suffix:     "v2",
	}
	res, err := e.Export(req)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.Path) != "Eve_Moreau_v2.png" {
		t.Errorf("filename = %s", filepath.Base(res.Path))
	}
}
