// Package kind defines the UPower device kinds and the comma-separated
// kind filter used to select which devices are reported.
package kind

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a UPower device type as reported by the Device.Type property.
//
// The UPower D-Bus documentation only lists types up to Phone, but upower
// itself defines the full range below.
type Kind uint32

const (
	Unknown Kind = iota
	LinePower
	Battery
	Ups
	Monitor
	Mouse
	Keyboard
	Pda
	Phone
	MediaPlayer
	Tablet
	Computer
	GamingInput
	Pen
	Touchpad
	Modem
	Network
	Headset
	Speakers
	Headphones
	Video
	OtherAudio
	RemoteControl
	Printer
	Scanner
	Camera
	Wearable
	Toy
	Generic
	Last
)

// names is indexed by Kind.
var names = [...]string{
	Unknown:       "unknown",
	LinePower:     "line-power",
	Battery:       "battery",
	Ups:           "ups",
	Monitor:       "monitor",
	Mouse:         "mouse",
	Keyboard:      "keyboard",
	Pda:           "pda",
	Phone:         "phone",
	MediaPlayer:   "media-player",
	Tablet:        "tablet",
	Computer:      "computer",
	GamingInput:   "gaming-input",
	Pen:           "pen",
	Touchpad:      "touchpad",
	Modem:         "modem",
	Network:       "network",
	Headset:       "headset",
	Speakers:      "speakers",
	Headphones:    "headphones",
	Video:         "video",
	OtherAudio:    "other-audio",
	RemoteControl: "remote-control",
	Printer:       "printer",
	Scanner:       "scanner",
	Camera:        "camera",
	Wearable:      "wearable",
	Toy:           "toy",
	Generic:       "generic",
	Last:          "last",
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, len(names))
	for i, n := range names {
		m[n] = Kind(i)
	}
	return m
}()

// ErrUnknownKindName is returned when a name does not match any Kind.
var ErrUnknownKindName = errors.New("unknown device kind")

// ParseError reports the offending name. It unwraps to ErrUnknownKindName.
type ParseError struct {
	Name string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q (valid kinds: %s)", ErrUnknownKindName, e.Name, strings.Join(Names(), ", "))
}

func (e *ParseError) Unwrap() error { return ErrUnknownKindName }

// FromCode maps a numeric UPower type to a Kind. Codes outside the known
// range map to Unknown.
func FromCode(code uint32) Kind {
	if code >= uint32(len(names)) {
		return Unknown
	}
	return Kind(code)
}

// Parse resolves a canonical kind name. Surrounding whitespace and case are
// ignored.
func Parse(name string) (Kind, error) {
	k, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Unknown, &ParseError{Name: strings.TrimSpace(name)}
	}
	return k, nil
}

// String returns the canonical kebab-case name.
func (k Kind) String() string {
	if int(k) >= len(names) {
		return names[Unknown]
	}
	return names[k]
}

// Names returns every canonical kind name in code order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names[:])
	return out
}
