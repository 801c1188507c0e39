package types

import "testing"

func TestStoryActiveWelcome(t *testing.T) {
	tests := []struct {
		name  string
		story Story
		want  string // expected text; "" means nil result
	}{
		{
			name: "id match selects that message",
			story: Story{
				ActiveWelcomeMessageID: "w2",
				WelcomeMessages: []WelcomeMessage{
					{MessageID: "w1", Text: "first"},
					{MessageID: "w2", Text: "second"},
				},
			},
			want: "second",
		},
		{
			name: "no match falls back to first message",
			story: Story{
				ActiveWelcomeMessageID: "gone",
				WelcomeMessages: []WelcomeMessage{
					{MessageID: "w1", Text: "first"},
				},
			},
			want: "first",
		},
		{
			name: "no id set falls back to first message",
			story: Story{
				WelcomeMessages: []WelcomeMessage{
					{MessageID: "w1", Text: "first"},
				},
			},
			want: "first",
		},
		{
			name:  "no messages returns nil",
			story: Story{ActiveWelcomeMessageID: "w1"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.story.ActiveWelcome()
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %q, got nil", tt.want)
			}
			if got.Text != tt.want {
				t.Errorf("ActiveWelcome().Text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}
