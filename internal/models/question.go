package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BlankMarker is the placeholder token that denotes a fill-in or drop target inside question text.
const BlankMarker = "_____"

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	FreeTextCode QuestionType = "free_text_code"
	FillInBlank  QuestionType = "fill_in_blank"
	DragDrop     QuestionType = "drag_drop"
)

// QuestionTypes lists every supported type in wire-id order.
var QuestionTypes = []QuestionType{SingleChoice, FreeTextCode, FillInBlank, DragDrop}

// QuestionTypeFromID maps the backend's numeric questionTypeID to a QuestionType.
func QuestionTypeFromID(id int) (QuestionType, bool) {
	if id < 1 || id > len(QuestionTypes) {
		return "", false
	}
	return QuestionTypes[id-1], true
}

// ID returns the backend's numeric questionTypeID, or 0 for unknown types.
func (t QuestionType) ID() int {
	for i, qt := range QuestionTypes {
		if qt == t {
			return i + 1
		}
	}
	return 0
}

func (t QuestionType) Valid() bool {
	return t.ID() != 0
}

// Option is one selectable choice or one draggable item.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question is immutable once delivered by the question source.
type Question struct {
	ID                  string       `json:"questionID"`
	Type                QuestionType `json:"-"`
	TypeID              int          `json:"questionTypeID"`
	Text                string       `json:"questionText"`
	Options             []Option     `json:"-"`
	Blanks              []string     `json:"blanks,omitempty"`
	Constraints         string       `json:"constraints,omitempty"`
	ExpectedAnswerCount int          `json:"expectedAnswerCount,omitempty"`
	Tags                []string     `json:"tags,omitempty"`
	AvgTimeSeconds      int          `json:"avgTimeSeconds,omitempty"`
}

type questionWire struct {
	ID                  json.RawMessage `json:"questionID"`
	TypeID              int             `json:"questionTypeID"`
	Text                string          `json:"questionText"`
	Options             json.RawMessage `json:"options"`
	Blanks              []string        `json:"blanks"`
	Constraints         json.RawMessage `json:"constraints"`
	ExpectedAnswerCount int             `json:"expectedAnswerCount"`
	Tags                []string        `json:"tags"`
	AvgTimeSeconds      int             `json:"avgTimeSeconds"`
}

// UnmarshalJSON accepts the backend shape: numeric or string ids, options as an
// object (single choice) or an array (drag-drop items), constraints as text or JSON.
// Malformed payload fields degrade to empty values instead of failing the whole list.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode question: %w", err)
	}

	q.ID = rawID(w.ID)
	q.TypeID = w.TypeID
	q.Type, _ = QuestionTypeFromID(w.TypeID)
	q.Text = w.Text
	q.Options = decodeOptions(w.Options)
	q.Blanks = w.Blanks
	q.Constraints = rawText(w.Constraints)
	q.ExpectedAnswerCount = w.ExpectedAnswerCount
	q.Tags = w.Tags
	q.AvgTimeSeconds = w.AvgTimeSeconds
	return nil
}

// MarshalJSON writes options back in the shape the type expects.
func (q Question) MarshalJSON() ([]byte, error) {
	type alias Question
	out := struct {
		alias
		Options any `json:"options,omitempty"`
	}{alias: alias(q)}
	if out.TypeID == 0 {
		out.TypeID = q.Type.ID()
	}

	if len(q.Options) > 0 {
		if q.Type == DragDrop {
			items := make([]string, len(q.Options))
			for i, o := range q.Options {
				items[i] = o.Text
			}
			out.Options = items
		} else {
			set := make(map[string]string, len(q.Options))
			for _, o := range q.Options {
				set[o.Key] = o.Text
			}
			out.Options = set
		}
	}
	return json.Marshal(out)
}

// BlankCount is the number of blank markers in the prompt.
func (q *Question) BlankCount() int {
	return strings.Count(q.Text, BlankMarker)
}

// PromptParts splits the prompt around blank markers; len(parts) == BlankCount()+1.
func (q *Question) PromptParts() []string {
	return strings.Split(q.Text, BlankMarker)
}

// SlotIDs returns the drop targets of a drag-drop question: the declared blank
// list when present, otherwise the marker positions "0".."n-1".
func (q *Question) SlotIDs() []string {
	if len(q.Blanks) > 0 {
		return q.Blanks
	}
	n := q.BlankCount()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}

// HasSlot reports whether slotID is a drop target of this question.
func (q *Question) HasSlot(slotID string) bool {
	for _, id := range q.SlotIDs() {
		if id == slotID {
			return true
		}
	}
	return false
}

// HasOption reports whether key names one of the question's options.
func (q *Question) HasOption(key string) bool {
	for _, o := range q.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// IsOptionalBlank reports whether the blank at index lies beyond the expected answers.
// Questions without an expected-answer count treat every blank as required.
func (q *Question) IsOptionalBlank(index int) bool {
	return q.ExpectedAnswerCount > 0 && index >= q.ExpectedAnswerCount
}

func decodeOptions(raw json.RawMessage) []Option {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '{':
		var set map[string]string
		if err := json.Unmarshal(raw, &set); err != nil {
			return nil
		}
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		opts := make([]Option, 0, len(keys))
		for _, k := range keys {
			opts = append(opts, Option{Key: k, Text: set[k]})
		}
		return opts
	case '[':
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		// Drag-drop items travel by their text, so the text doubles as the key.
		opts := make([]Option, 0, len(items))
		for _, item := range items {
			opts = append(opts, Option{Key: item, Text: item})
		}
		return opts
	}
	return nil
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// QuestionSet is what the question source returns for a lesson.
type QuestionSet struct {
	LessonID  string     `json:"lesson_id"`
	Questions []Question `json:"questions"`
	Message   string     `json:"message,omitempty"`
}
