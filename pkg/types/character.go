package types

import "time"

// Character is a dialogue persona together with its story branches and lore.
// A character is the unit of storage in the library and the unit of export:
// every export call receives a snapshot of one character plus a story
// selection.
type Character struct {
	CharacterID   string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Personality   string             `json:"personality"`
	Scenario      string             `json:"scenario"`
	Creator       string             `json:"creator,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	ActiveStoryID string             `json:"activeStoryId,omitempty"`
	Stories       []Story            `json:"stories"`
	Reminders     []ConstantReminder `json:"constantReminders,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Clone returns a deep copy of the character. The copy shares no mutable
// state with the original, so callers may filter or annotate it without
// affecting the library's in-memory record.
func (c Character) Clone() Character {
	out := c

	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}

	if c.Stories != nil {
		out.Stories = make([]Story, len(c.Stories))
		for i, s := range c.Stories {
			out.Stories[i] = s.clone()
		}
	}

	if c.Reminders != nil {
		out.Reminders = make([]ConstantReminder, len(c.Reminders))
		for i, r := range c.Reminders {
			out.Reminders[i] = r.clone()
		}
	}

	return out
}

// StoryByID returns the story with the given id, or nil if absent.
func (c *Character) StoryByID(id string) *Story {
	for i := range c.Stories {
		if c.Stories[i].StoryID == id {
			return &c.Stories[i]
		}
	}
	return nil
}
