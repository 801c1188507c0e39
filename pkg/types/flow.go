package types

import "encoding/json"

// Flow is an automation definition attached to a character. The definition
// is authored in the node-graph editor and treated as an opaque JSON payload
// here: the exporter embeds it verbatim and never interprets it.
type Flow struct {
	FlowID     string          `json:"id"`
	Name       string          `json:"name"`
	Definition json.RawMessage `json:"definition,omitempty"`
}
