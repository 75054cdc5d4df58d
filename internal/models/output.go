// Package models defines the data structures passed between the collector,
// the scheduler and the Waybar writer.
package models

import "github.com/Guliveer/powerbar/internal/kind"

// DeviceSnapshot is one device's state as read during a single refresh.
// Snapshots are never stored across refreshes.
type DeviceSnapshot struct {
	Path       string
	Kind       kind.Kind
	Percentage float64
	Model      string
}

// Output is a single line of Waybar custom-module JSON.
// Nil fields are omitted from the serialized form.
type Output struct {
	Text       string   `json:"text"`
	Tooltip    *string  `json:"tooltip,omitempty"`
	Class      *string  `json:"class,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
}
