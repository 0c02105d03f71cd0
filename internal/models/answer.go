package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// AnswerValue is the type-specific representation of a response to one question.
// The concrete variants are ChoiceAnswer, BlankAnswer, DragDropAnswer and CodeAnswer.
type AnswerValue interface {
	Kind() QuestionType
	IsEmpty() bool
	isAnswerValue()
}

type ChoiceAnswer struct {
	Key string
}

func (ChoiceAnswer) Kind() QuestionType { return SingleChoice }
func (a ChoiceAnswer) IsEmpty() bool    { return a.Key == "" }
func (ChoiceAnswer) isAnswerValue()     {}

type CodeAnswer struct {
	Source string
}

func (CodeAnswer) Kind() QuestionType { return FreeTextCode }
func (a CodeAnswer) IsEmpty() bool    { return strings.TrimSpace(a.Source) == "" }
func (CodeAnswer) isAnswerValue()     {}

// BlankAnswer is a sparse ordered sequence of blank fills. Gaps are allowed and
// the value is copied on every write, so a stored BlankAnswer never changes.
type BlankAnswer struct {
	values map[int]string
	length int
}

func (BlankAnswer) Kind() QuestionType { return FillInBlank }
func (BlankAnswer) isAnswerValue()     {}

func (a BlankAnswer) IsEmpty() bool {
	for _, v := range a.values {
		if v != "" {
			return false
		}
	}
	return true
}

// NewBlankAnswer builds a dense sequence from values.
func NewBlankAnswer(values ...string) BlankAnswer {
	out := BlankAnswer{values: make(map[int]string, len(values)), length: len(values)}
	for i, v := range values {
		out.values[i] = v
	}
	return out
}

// Len is one past the highest index ever written.
func (a BlankAnswer) Len() int { return a.length }

// Get returns the fill at index and whether it was ever set.
func (a BlankAnswer) Get(index int) (string, bool) {
	v, ok := a.values[index]
	return v, ok
}

// WithBlank returns a copy with index set to value, growing the sequence if needed.
func (a BlankAnswer) WithBlank(index int, value string) BlankAnswer {
	out := BlankAnswer{values: make(map[int]string, len(a.values)+1), length: a.length}
	for k, v := range a.values {
		out.values[k] = v
	}
	out.values[index] = value
	if index >= out.length {
		out.length = index + 1
	}
	return out
}

// Values returns the wire form: one entry per position, nil for gaps.
func (a BlankAnswer) Values() []*string {
	out := make([]*string, a.length)
	for i := 0; i < a.length; i++ {
		if v, ok := a.values[i]; ok {
			v := v
			out[i] = &v
		}
	}
	return out
}

// DragDropAnswer maps target slot ids to placed item ids. Unfilled slots are absent.
type DragDropAnswer struct {
	placements map[string]string
}

func (DragDropAnswer) Kind() QuestionType { return DragDrop }
func (a DragDropAnswer) IsEmpty() bool    { return len(a.placements) == 0 }
func (DragDropAnswer) isAnswerValue()     {}

func NewDragDropAnswer(placements map[string]string) DragDropAnswer {
	out := DragDropAnswer{placements: make(map[string]string, len(placements))}
	for k, v := range placements {
		out.placements[k] = v
	}
	return out
}

// Item returns the item placed in slotID.
func (a DragDropAnswer) Item(slotID string) (string, bool) {
	v, ok := a.placements[slotID]
	return v, ok
}

// Placements returns a copy of the slot→item mapping.
func (a DragDropAnswer) Placements() map[string]string {
	return NewDragDropAnswer(a.placements).placements
}

// SlotOf returns the first slot (in sorted order) holding itemID.
func (a DragDropAnswer) SlotOf(itemID string) (string, bool) {
	slots := make([]string, 0, len(a.placements))
	for slot, item := range a.placements {
		if item == itemID {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return "", false
	}
	sort.Strings(slots)
	return slots[0], true
}

// WithPlacement returns a copy with itemID placed in slotID (last write wins).
func (a DragDropAnswer) WithPlacement(slotID, itemID string) DragDropAnswer {
	out := NewDragDropAnswer(a.placements)
	out.placements[slotID] = itemID
	return out
}

// Without returns a copy with slotID cleared. Other slots are untouched.
func (a DragDropAnswer) Without(slotID string) DragDropAnswer {
	out := NewDragDropAnswer(a.placements)
	delete(out.placements, slotID)
	return out
}

// WithoutItem returns a copy with itemID removed from every slot.
func (a DragDropAnswer) WithoutItem(itemID string) DragDropAnswer {
	out := NewDragDropAnswer(a.placements)
	for slot, item := range out.placements {
		if item == itemID {
			delete(out.placements, slot)
		}
	}
	return out
}

// EmptyAnswer is the placeholder submitted for an unanswered question of type t.
func EmptyAnswer(t QuestionType) AnswerValue {
	switch t {
	case SingleChoice:
		return ChoiceAnswer{}
	case FillInBlank:
		return BlankAnswer{}
	case DragDrop:
		return DragDropAnswer{}
	default:
		return CodeAnswer{}
	}
}

// EncodeAnswer serializes an answer into the userAnswer wire field.
func EncodeAnswer(v AnswerValue) (json.RawMessage, error) {
	switch a := v.(type) {
	case ChoiceAnswer:
		return json.Marshal(a.Key)
	case CodeAnswer:
		return json.Marshal(a.Source)
	case BlankAnswer:
		return json.Marshal(a.Values())
	case DragDropAnswer:
		if a.placements == nil {
			return json.RawMessage("{}"), nil
		}
		return json.Marshal(a.placements)
	case nil:
		return nil, fmt.Errorf("encode answer: nil value")
	default:
		return nil, fmt.Errorf("encode answer: unsupported variant %T", v)
	}
}

// DecodeAnswer parses a userAnswer wire field for a question of type t.
func DecodeAnswer(t QuestionType, raw json.RawMessage) (AnswerValue, error) {
	switch t {
	case SingleChoice:
		var key string
		if err := json.Unmarshal(raw, &key); err != nil {
			return nil, fmt.Errorf("decode choice answer: %w", err)
		}
		return ChoiceAnswer{Key: key}, nil
	case FreeTextCode:
		var src string
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, fmt.Errorf("decode code answer: %w", err)
		}
		return CodeAnswer{Source: src}, nil
	case FillInBlank:
		var values []*string
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil, fmt.Errorf("decode blank answer: %w", err)
		}
		out := BlankAnswer{values: make(map[int]string), length: len(values)}
		for i, v := range values {
			if v != nil {
				out.values[i] = *v
			}
		}
		return out, nil
	case DragDrop:
		var placements map[string]string
		if err := json.Unmarshal(raw, &placements); err != nil {
			return nil, fmt.Errorf("decode drag-drop answer: %w", err)
		}
		return NewDragDropAnswer(placements), nil
	default:
		return nil, fmt.Errorf("decode answer: unsupported question type %q", t)
	}
}
