// Package model defines the core data types shared across quill.
package model

// Mode selects which push channel and which grammar a suggestion list uses.
type Mode int

const (
	ModeRealtime Mode = iota
	ModeBatch
)

func (m Mode) String() string {
	switch m {
	case ModeRealtime:
		return "realtime"
	case ModeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "realtime", "rt", "cursor":
		return ModeRealtime, true
	case "batch", "suggestions":
		return ModeBatch, true
	default:
		return ModeRealtime, false
	}
}

// Record is one addressable suggestion produced by parsing a completed buffer.
type Record struct {
	// ID is the index of the source line that produced the record. Unique
	// within one parse result only.
	ID int `json:"id"`
	// Ordinal is the literal numeric prefix ("1. "), batch mode only.
	Ordinal string `json:"ordinal,omitempty"`
	// Text is the candidate sentence, trimmed and prefix-stripped. Never empty.
	Text string `json:"text"`
	// Explanation is the free text attached after a 설명: marker.
	Explanation string `json:"explanation,omitempty"`
}

// Tone is a style mode passed to the backend untouched.
type Tone string

const (
	ToneEmotional   Tone = "감성적"
	ToneLogical     Tone = "논리적"
	ToneExplanatory Tone = "설명적"
	ToneNarrative   Tone = "서사적"
	ToneAuto        Tone = "자동"
)

var knownTones = []Tone{ToneAuto, ToneEmotional, ToneLogical, ToneExplanatory, ToneNarrative}

// Tones returns the known tone set in display order.
func Tones() []Tone {
	out := make([]Tone, len(knownTones))
	copy(out, knownTones)
	return out
}

// Known reports whether t is one of the enumerated tones.
func (t Tone) Known() bool {
	for _, k := range knownTones {
		if k == t {
			return true
		}
	}
	return false
}

// Next cycles to the following known tone. Unknown tones restart the cycle.
func (t Tone) Next() Tone {
	for i, k := range knownTones {
		if k == t {
			return knownTones[(i+1)%len(knownTones)]
		}
	}
	return knownTones[0]
}

// Payload is the request body shared by every backend call.
type Payload struct {
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

// Correction is one detected writing error.
type Correction struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
}
