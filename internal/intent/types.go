package intent

// Intent is the NLU payload the dialogue manager publishes when an
// utterance was recognized, in the Hermes shape.
type Intent struct {
	SessionID string `json:"sessionId"`
	SiteID    string `json:"siteId,omitempty"`
	Input     string `json:"input,omitempty"`
	Intent    Ref    `json:"intent"`
	Slots     []Slot `json:"slots,omitempty"`
}

// Ref names the recognized intent.
type Ref struct {
	Name       string  `json:"intentName"`
	Confidence float64 `json:"confidenceScore,omitempty"`
}

// Slot is one named value extracted from the utterance.
type Slot struct {
	Name     string `json:"slotName"`
	Entity   string `json:"entity,omitempty"`
	RawValue string `json:"rawValue"`
	Value    Value  `json:"value"`
}

// Value is the resolved slot value.
type Value struct {
	Kind  string `json:"kind,omitempty"`
	Value string `json:"value"`
}

// EndSession asks the dialogue manager to close the session and speak text.
type EndSession struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// itemsSlot is the slot name carrying requested item names.
const itemsSlot = "Items"

// Items returns the raw value of every Items slot, in slot order.
// Duplicates are kept; slot order is the extraction order, which is what
// the response must echo.
func (in *Intent) Items() []string {
	var names []string
	for _, slot := range in.Slots {
		if slot.Name == itemsSlot {
			names = append(names, slot.RawValue)
		}
	}
	return names
}
