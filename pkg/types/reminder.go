package types

// Defaults applied to optional reminder fields.
const (
	DefaultReminderScanDepth = 10
	defaultPriorityBase      = 100
)

// ConstantReminder is one lore entry attached to a character: a piece of
// text injected into context whenever one of its keys is scanned. Optional
// fields use pointers so that "not set" is distinguishable from a zero
// value; use the accessor methods rather than reading pointers directly.
type ConstantReminder struct {
	Name          string   `json:"name,omitempty"`
	Keys          []string `json:"keys,omitempty"`
	Text          string   `json:"text,omitempty"`
	CaseSensitive bool     `json:"caseSensitive,omitempty"`
	Constant      bool     `json:"constant,omitempty"`
	ScanDepth     *int     `json:"scanDepth,omitempty"`
	Enabled       *bool    `json:"enabled,omitempty"`
	Priority      *int     `json:"priority,omitempty"`
}

// IsEnabled reports whether the reminder is enabled. Unset means enabled.
func (r ConstantReminder) IsEnabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// EffectivePriority returns the reminder's priority, or the stable default
// for position index when no priority is set. The default base preserves
// source order for unprioritized reminders.
func (r ConstantReminder) EffectivePriority(index int) int {
	if r.Priority == nil {
		return defaultPriorityBase + index
	}
	return *r.Priority
}

func (r ConstantReminder) clone() ConstantReminder {
	out := r
	if r.Keys != nil {
		out.Keys = make([]string, len(r.Keys))
		copy(out.Keys, r.Keys)
	}
	if r.ScanDepth != nil {
		v := *r.ScanDepth
		out.ScanDepth = &v
	}
	if r.Enabled != nil {
		v := *r.Enabled
		out.Enabled = &v
	}
	if r.Priority != nil {
		v := *r.Priority
		out.Priority = &v
	}
	return out
}
