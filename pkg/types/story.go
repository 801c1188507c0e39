package types

// Story is one narrative branch of a character. Each story carries its own
// welcome messages (the opening line shown to the user) and example
// dialogues (sample exchanges used to prime a model).
type Story struct {
	StoryID                string            `json:"id"`
	Name                   string            `json:"name"`
	ActiveWelcomeMessageID string            `json:"activeWelcomeMessageId,omitempty"`
	WelcomeMessages        []WelcomeMessage  `json:"welcomeMessages,omitempty"`
	ExampleDialogues       []ExampleDialogue `json:"exampleDialogues,omitempty"`
}

// WelcomeMessage is one candidate opening line for a story.
type WelcomeMessage struct {
	MessageID string `json:"id"`
	Text      string `json:"text"`
}

// ExampleDialogue is a single sample exchange. Either side may be empty;
// a dialogue with both sides empty carries no content.
type ExampleDialogue struct {
	User string `json:"user,omitempty"`
	Char string `json:"char,omitempty"`
}

// ActiveWelcome returns the story's active welcome message: the one matching
// ActiveWelcomeMessageID, or the first message when there is no match or no
// id is set. Returns nil when the story has no welcome messages.
func (s *Story) ActiveWelcome() *WelcomeMessage {
	if len(s.WelcomeMessages) == 0 {
		return nil
	}
	for i := range s.WelcomeMessages {
		if s.WelcomeMessages[i].MessageID == s.ActiveWelcomeMessageID {
			return &s.WelcomeMessages[i]
		}
	}
	return &s.WelcomeMessages[0]
}

func (s Story) clone() Story {
	out := s
	if s.WelcomeMessages != nil {
		out.WelcomeMessages = make([]WelcomeMessage, len(s.WelcomeMessages))
		copy(out.WelcomeMessages, s.WelcomeMessages)
	}
	if s.ExampleDialogues != nil {
		out.ExampleDialogues = make([]ExampleDialogue, len(s.ExampleDialogues))
		copy(out.ExampleDialogues, s.ExampleDialogues)
	}
	return out
}
