package card

import (
	"time"

	"github.com/swelldreams/cardpress/pkg/types"
)

// Native envelope identification.
const (
	NativeType    = "swelldreams-character"
	NativeVersion = "1.5"
)

// timeNow is overridable in tests.
var timeNow = time.Now

// NativeExport is the full-fidelity envelope carried by the swelld chunk.
// Flows is present only when flow embedding was requested and at least one
// flow was supplied.
type NativeExport struct {
	Type       string       `json:"type"`
	Version    string       `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Data       NativeData   `json:"data"`
	Flows      []types.Flow `json:"flows,omitempty"`
}

// NativeData is the exported character record. AvatarData, when set, holds
// the pre-overlay avatar as a data URI so a re-import can restore the
// original image even though the displayed PNG pixels carry the logo.
type NativeData struct {
	types.Character
	AvatarData string `json:"avatarData,omitempty"`
}

// NativeOptions controls optional parts of the envelope.
type NativeOptions struct {
	// AvatarData is attached verbatim under data.avatarData when non-empty.
	AvatarData string

	// EmbedFlows requests flow embedding; Flows is ignored when false.
	EmbedFlows bool
	Flows      []types.Flow
}

// BuildNativeExport deep-clones the character, filters its stories to the
// selection id set, and wraps the result in the native envelope with an
// ISO-8601 timestamp captured at call time. An empty selection leaves all
// stories in place; filtering only applies when ids were supplied.
func BuildNativeExport(ch types.Character, selection []string, opts NativeOptions) NativeExport {
	clone := ch.Clone()

	if len(selection) > 0 {
		selected := make(map[string]bool, len(selection))
		for _, id := range selection {
			selected[id] = true
		}
		kept := make([]types.Story, 0, len(clone.Stories))
		for _, s := range clone.Stories {
			if selected[s.StoryID] {
				kept = append(kept, s)
			}
		}
		clone.Stories = kept
	}

	out := NativeExport{
		Type:       NativeType,
		Version:    NativeVersion,
		ExportedAt: timeNow().UTC().Format(time.RFC3339),
		Data: NativeData{
			Character:  clone,
			AvatarData: opts.AvatarData,
		},
	}
	if opts.EmbedFlows && len(opts.Flows) > 0 {
		out.Flows = opts.Flows
	}
	return out
}
