package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	minLevel = 1
	maxLevel = 5
)

// Level is a 1..5 self-reported score. The web form posts these as strings,
// so both JSON numbers and numeric strings are accepted. Anything else is unset.
type Level int

// UnmarshalJSON implements json.Unmarshaler
func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = 0
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*l = Level(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			*l = 0
			return nil
		}
		*l = Level(n)
	default:
		*l = 0
	}
	return nil
}

func (l Level) clamp() int {
	n := int(l)
	if n < minLevel {
		return minLevel
	}
	if n > maxLevel {
		return maxLevel
	}
	return n
}

// Traits is the user's current mood and stress
type Traits struct {
	Mood   Level `json:"mood"`
	Stress Level `json:"stress"`
}

const (
	promptIntro      = "You are a compassionate mental health support assistant. "
	promptLowMood    = "They seem to be feeling low, so provide extra encouragement and gentle support. "
	promptHighMood   = "They seem to be in a positive mood, so maintain that energy while being helpful. "
	promptHighStress = "They're experiencing high stress, so focus on calming, practical coping strategies. "
	promptLowStress  = "Their stress level is manageable, so you can explore deeper topics. "
	promptClosing    = "Always be empathetic, non-judgmental, and provide helpful, evidence-based mental health support. Keep responses concise and actionable."
)

// SystemPrompt builds the system message from fixed fragments.
// Traits only shape the prompt when both mood and stress are set.
func SystemPrompt(traits *Traits) string {
	var b strings.Builder
	b.WriteString(promptIntro)

	if traits != nil && traits.Mood != 0 && traits.Stress != 0 {
		mood, stress := traits.Mood.clamp(), traits.Stress.clamp()

		b.WriteString("The user's current mood level is ")
		b.WriteString(strconv.Itoa(mood))
		b.WriteString("/5 and stress level is ")
		b.WriteString(strconv.Itoa(stress))
		b.WriteString("/5. ")

		switch {
		case mood <= 2:
			b.WriteString(promptLowMood)
		case mood >= 4:
			b.WriteString(promptHighMood)
		}
		switch {
		case stress >= 4:
			b.WriteString(promptHighStress)
		case stress <= 2:
			b.WriteString(promptLowStress)
		}
	}

	b.WriteString(promptClosing)
	return b.String()
}
