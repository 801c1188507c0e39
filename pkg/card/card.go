package card

import (
	"fmt"
	"strings"

	"github.com/swelldreams/cardpress/pkg/types"
)

// Interchange schema identification.
const (
	SpecName    = "chara_card_v3"
	SpecVersion = "3.0"
)

// Fixed character_book parameters. These mirror what mainstream card
// readers expect as defaults; per-entry scan depth still passes through.
const (
	bookScanDepth   = 10
	bookTokenBudget = 2048
)

// CardV3 is the top-level interchange record. The six mirror fields are
// duplicated inside Data for compatibility with readers of either layout.
type CardV3 struct {
	Spec        string   `json:"spec"`
	SpecVersion string   `json:"spec_version"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Personality string   `json:"personality"`
	Scenario    string   `json:"scenario"`
	FirstMes    string   `json:"first_mes"`
	MesExample  string   `json:"mes_example"`
	Avatar      string   `json:"avatar"`
	Tags        []string `json:"tags"`
	Data        CardData `json:"data"`
}

// CardData is the nested data object: mirror fields plus extensions.
type CardData struct {
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Personality        string         `json:"personality"`
	Scenario           string         `json:"scenario"`
	FirstMes           string         `json:"first_mes"`
	MesExample         string         `json:"mes_example"`
	Creator            string         `json:"creator"`
	Tags               []string       `json:"tags"`
	AlternateGreetings []string       `json:"alternate_greetings"`
	CharacterBook      *CharacterBook `json:"character_book,omitempty"`
}

// CharacterBook is the lorebook wrapper. It is attached only when the
// character has at least one constant reminder; an empty book is omitted
// entirely, not serialized as an empty object.
type CharacterBook struct {
	Name              string      `json:"name"`
	ScanDepth         int         `json:"scan_depth"`
	TokenBudget       int         `json:"token_budget"`
	RecursiveScanning bool        `json:"recursive_scanning"`
	Entries           []BookEntry `json:"entries"`
}

// BookEntry is one lorebook entry derived from a constant reminder.
type BookEntry struct {
	Keys           []string `json:"keys"`
	Content        string   `json:"content"`
	Enabled        bool     `json:"enabled"`
	InsertionOrder int      `json:"insertion_order"`
	CaseSensitive  bool     `json:"case_sensitive"`
	Constant       bool     `json:"constant"`
	ScanDepth      *int     `json:"scan_depth,omitempty"`
	Name           string   `json:"name"`
	Comment        string   `json:"comment"`
}

// Convert builds the interchange record from a character and the ordered
// list of caller-selected stories. The active story (ActiveStoryID match,
// else the first selected) supplies first_mes and the example transcript;
// every other selected story contributes its welcome text, when non-empty,
// to alternate_greetings in input order.
func Convert(ch types.Character, stories []types.Story) CardV3 {
	active := activeStory(ch, stories)

	firstMes := ""
	mesExample := ""
	if active != nil {
		if w := active.ActiveWelcome(); w != nil {
			firstMes = w.Text
		}
		mesExample = exampleTranscript(active.ExampleDialogues)
	}

	greetings := []string{}
	for i := range stories {
		if active != nil && stories[i].StoryID == active.StoryID {
			continue
		}
		if w := stories[i].ActiveWelcome(); w != nil && w.Text != "" {
			greetings = append(greetings, w.Text)
		}
	}

	tags := ch.Tags
	if tags == nil {
		tags = []string{}
	}

	out := CardV3{
		Spec:        SpecName,
		SpecVersion: SpecVersion,
		Name:        ch.Name,
		Description: ch.Description,
		Personality: ch.Personality,
		Scenario:    ch.Scenario,
		FirstMes:    firstMes,
		MesExample:  mesExample,
		Avatar:      "none",
		Tags:        tags,
		Data: CardData{
			Name:               ch.Name,
			Description:        ch.Description,
			Personality:        ch.Personality,
			Scenario:           ch.Scenario,
			FirstMes:           firstMes,
			MesExample:         mesExample,
			Creator:            ch.Creator,
			Tags:               tags,
			AlternateGreetings: greetings,
			CharacterBook:      characterBook(ch),
		},
	}
	return out
}

// activeStory returns the selected story matching the character's
// ActiveStoryID, falling back to the first selected story. Nil when the
// selection is empty.
func activeStory(ch types.Character, stories []types.Story) *types.Story {
	if len(stories) == 0 {
		return nil
	}
	for i := range stories {
		if stories[i].StoryID == ch.ActiveStoryID {
			return &stories[i]
		}
	}
	return &stories[0]
}

// exampleTranscript flattens example dialogues into the <START>-delimited
// transcript format. Dialogues with neither side filled in are skipped so
// the transcript never contains empty turns.
func exampleTranscript(dialogues []types.ExampleDialogue) string {
	var blocks []string
	for _, d := range dialogues {
		if d.User == "" && d.Char == "" {
			continue
		}
		lines := []string{"<START>"}
		if d.User != "" {
			lines = append(lines, "{{user}}: "+d.User)
		}
		if d.Char != "" {
			lines = append(lines, "{{char}}: "+d.Char)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n")
}

// characterBook converts constant reminders to a lorebook, or nil when the
// character has none.
func characterBook(ch types.Character) *CharacterBook {
	if len(ch.Reminders) == 0 {
		return nil
	}

	entries := make([]BookEntry, 0, len(ch.Reminders))
	for i, r := range ch.Reminders {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("Entry %d", i+1)
		}
		keys := r.Keys
		if keys == nil {
			keys = []string{}
		}
		entries = append(entries, BookEntry{
			Keys:           keys,
			Content:        r.Text,
			Enabled:        r.IsEnabled(),
			InsertionOrder: r.EffectivePriority(i),
			CaseSensitive:  r.CaseSensitive,
			Constant:       r.Constant,
			ScanDepth:      r.ScanDepth,
			Name:           name,
			Comment:        name,
		})
	}

	return &CharacterBook{
		Name:        fmt.Sprintf("%s's Lorebook", ch.Name),
		ScanDepth:   bookScanDepth,
		TokenBudget: bookTokenBudget,
		Entries:     entries,
	}
}
