package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// MessageType names a background-to-foreground message.
type MessageType string

const (
	QuickAddFood    MessageType = "QUICK_ADD_FOOD"
	OpenCustomModal MessageType = "OPEN_CUSTOM_MODAL"
)

// Message is the envelope posted to a foreground client.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CustomModalPayload asks the foreground to open the custom entry flow.
type CustomModalPayload struct {
	MealType domain.MealType `json:"mealType"`
}

func NewQuickAdd(draft domain.EntryDraft) (Message, error) {
	return newMessage(QuickAddFood, draft)
}

func NewOpenCustom(meal domain.MealType) (Message, error) {
	return newMessage(OpenCustomModal, CustomModalPayload{MealType: meal})
}

func newMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Message{Type: t, Payload: raw}, nil
}

// QuickAdd decodes a QUICK_ADD_FOOD payload.
func (m Message) QuickAdd() (domain.EntryDraft, error) {
	var d domain.EntryDraft
	if m.Type != QuickAddFood {
		return d, fmt.Errorf("message is %s, not %s", m.Type, QuickAddFood)
	}
	if err := json.Unmarshal(m.Payload, &d); err != nil {
		return d, fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return d, nil
}

// CustomModal decodes an OPEN_CUSTOM_MODAL payload.
func (m Message) CustomModal() (CustomModalPayload, error) {
	var p CustomModalPayload
	if m.Type != OpenCustomModal {
		return p, fmt.Errorf("message is %s, not %s", m.Type, OpenCustomModal)
	}
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return p, nil
}
