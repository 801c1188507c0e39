// Package export orchestrates the character export pipeline: resolve an
// avatar, normalize it, apply the profile's visual treatment, build the
// metadata payload, splice it into the PNG as tEXt chunks, and persist the
// finished card. The whole pipeline runs on a single call path; the file is
// written once, after the full buffer is assembled, so a failed export
// never leaves a partial card on disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/swelldreams/cardpress/internal/avatar"
	"github.com/swelldreams/cardpress/internal/pngchunk"
	"github.com/swelldreams/cardpress/pkg/card"
	"github.com/swelldreams/cardpress/pkg/types"
)

// Chunk keywords. Interchange cards carry the payload twice, under both
// keys, for compatibility with readers expecting either; native exports use
// the swelld key alone.
const (
	KeyChara  = "chara"
	KeyCCv3   = "ccv3"
	KeySwelld = "swelld"
)

// Request describes one export call. The character is a caller-supplied
// snapshot; nothing is read back from storage during the pipeline.
type Request struct {
	Character  types.Character
	Profile    string // types.ProfileCard or types.ProfileNative
	StoryIDs   []string
	AvatarPath string

	// EmbedFlows attaches Flows to a native export when the list is
	// non-empty. Ignored for card exports.
	EmbedFlows bool
	Flows      []types.Flow

	// Suffix is an optional filename disambiguator supplied by the caller.
	// Exports with equal sanitized names otherwise overwrite each other.
	Suffix string
}

// Result reports where the card was written.
type Result struct {
	Path    string
	Profile string
	Size    int
}

// Exporter writes finished cards under OutDir, in one subdirectory per
// profile.
type Exporter struct {
	OutDir string
}

// New creates an Exporter rooted at outDir.
func New(outDir string) *Exporter {
	return &Exporter{OutDir: outDir}
}

// Export runs the full pipeline for one character. Avatar read errors
// (other than absence, which falls back to a placeholder) and malformed
// base rasters are fatal; no output file is produced on any error.
func (e *Exporter) Export(req Request) (Result, error) {
	if !types.ValidProfile(req.Profile) {
		return Result{}, fmt.Errorf("%w: %q", types.ErrProfileUnknown, req.Profile)
	}
	ch := req.Character

	raw, err := avatar.Load(req.AvatarPath, ch.Name)
	if err != nil {
		return Result{}, err
	}

	base, err := avatar.Normalize(raw)
	if err != nil {
		return Result{}, err
	}

	// Captured before any visual treatment so the native envelope can
	// restore the original avatar on re-import.
	cleanURI := avatar.DataURI(base)

	if req.Profile == types.ProfileNative {
		base, err = avatar.Overlay(base)
		if err != nil {
			return Result{}, err
		}
	}

	chunks, err := e.buildChunks(req, cleanURI)
	if err != nil {
		return Result{}, err
	}

	out, err := pngchunk.EmbedChunks(base, chunks)
	if err != nil {
		return Result{}, err
	}

	dir := filepath.Join(e.OutDir, req.Profile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, exportFileName(ch.Name, req.Suffix))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing card: %w", err)
	}

	return Result{Path: path, Profile: req.Profile, Size: len(out)}, nil
}

// buildChunks produces the chunk descriptor list for the requested profile:
// two byte-identical payloads for interchange cards, one envelope for
// native exports.
func (e *Exporter) buildChunks(req Request, cleanURI string) ([]pngchunk.Chunk, error) {
	switch req.Profile {
	case types.ProfileCard:
		payload, err := json.Marshal(card.Convert(req.Character, selectStories(req.Character, req.StoryIDs)))
		if err != nil {
			return nil, fmt.Errorf("marshaling card payload: %w", err)
		}
		js := string(payload)
		return []pngchunk.Chunk{
			{Key: KeyChara, JSON: js},
			{Key: KeyCCv3, JSON: js},
		}, nil

	case types.ProfileNative:
		env := card.BuildNativeExport(req.Character, req.StoryIDs, card.NativeOptions{
			AvatarData: cleanURI,
			EmbedFlows: req.EmbedFlows,
			Flows:      req.Flows,
		})
		payload, err := json.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("marshaling native payload: %w", err)
		}
		return []pngchunk.Chunk{{Key: KeySwelld, JSON: string(payload)}}, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrProfileUnknown, req.Profile)
}

// selectStories resolves the caller's story id selection to an ordered
// story list. An empty selection means all stories, in record order.
func selectStories(ch types.Character, ids []string) []types.Story {
	if len(ids) == 0 {
		return ch.Stories
	}
	out := make([]types.Story, 0, len(ids))
	for _, id := range ids {
		if s := ch.StoryByID(id); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// SanitizeFileName replaces every character outside [A-Za-z0-9] with an
// underscore. The mapping is a pure function of the input; collision
// handling is the caller's responsibility via the request suffix.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func exportFileName(name, suffix string) string {
	base := SanitizeFileName(name)
	if suffix != "" {
		base += "_" + SanitizeFileName(suffix)
	}
	return base + ".png"
}
