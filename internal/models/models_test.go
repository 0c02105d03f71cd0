package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionUnmarshal_BackendShapes(t *testing.T) {
	payload := `[
		{"questionID": 17, "questionTypeID": 1, "questionText": "Pick one",
		 "options": {"b": "Beta", "a": "Alpha"}},
		{"questionID": "q2", "questionTypeID": 4, "questionText": "_____ then _____",
		 "options": ["load", "store"], "constraints": {"max": 2}},
		{"questionID": "q3", "questionTypeID": 9, "questionText": "?", "options": 42}
	]`

	var qs []Question
	require.NoError(t, json.Unmarshal([]byte(payload), &qs))
	require.Len(t, qs, 3)

	assert.Equal(t, "17", qs[0].ID)
	assert.Equal(t, SingleChoice, qs[0].Type)
	assert.Equal(t, []Option{{Key: "a", Text: "Alpha"}, {Key: "b", Text: "Beta"}}, qs[0].Options)

	assert.Equal(t, DragDrop, qs[1].Type)
	assert.Equal(t, []Option{{Key: "load", Text: "load"}, {Key: "store", Text: "store"}}, qs[1].Options)
	assert.JSONEq(t, `{"max": 2}`, qs[1].Constraints)
	assert.Equal(t, []string{"0", "1"}, qs[1].SlotIDs())

	assert.False(t, qs[2].Type.Valid())
	assert.Empty(t, qs[2].Options)
}

func TestQuestionMarshal_OptionsFollowType(t *testing.T) {
	choice := Question{ID: "1", Type: SingleChoice, Options: []Option{{Key: "a", Text: "Alpha"}}}
	data, err := json.Marshal(choice)
	require.NoError(t, err)
	assert.JSONEq(t, `{"questionID":"1","questionTypeID":1,"questionText":"","options":{"a":"Alpha"}}`, string(data))

	drag := Question{ID: "2", Type: DragDrop, Options: []Option{{Key: "x", Text: "x"}}}
	data, err = json.Marshal(drag)
	require.NoError(t, err)
	assert.JSONEq(t, `{"questionID":"2","questionTypeID":4,"questionText":"","options":["x"]}`, string(data))
}

func TestQuestion_Blanks(t *testing.T) {
	q := Question{Type: FillInBlank, Text: "a _____ b _____ c", ExpectedAnswerCount: 1}

	assert.Equal(t, 2, q.BlankCount())
	assert.Equal(t, []string{"a ", " b ", " c"}, q.PromptParts())
	assert.False(t, q.IsOptionalBlank(0))
	assert.True(t, q.IsOptionalBlank(1))

	declared := Question{Type: DragDrop, Text: "_____", Blanks: []string{"s1"}}
	assert.True(t, declared.HasSlot("s1"))
	assert.False(t, declared.HasSlot("0"))
}

func TestQuestionTypeIDs(t *testing.T) {
	for i, qt := range QuestionTypes {
		got, ok := QuestionTypeFromID(i + 1)
		require.True(t, ok)
		assert.Equal(t, qt, got)
		assert.Equal(t, i+1, qt.ID())
	}
	_, ok := QuestionTypeFromID(0)
	assert.False(t, ok)
	assert.Equal(t, 0, QuestionType("essay").ID())
}

func TestBlankAnswer_SparseWrites(t *testing.T) {
	a := BlankAnswer{}.WithBlank(2, "x")
	b := a.WithBlank(0, "y")

	assert.Equal(t, 3, a.Len())
	_, ok := a.Get(0)
	assert.False(t, ok, "earlier value must not change")

	raw, err := EncodeAnswer(b)
	require.NoError(t, err)
	assert.JSONEq(t, `["y", null, "x"]`, string(raw))

	decoded, err := DecodeAnswer(FillInBlank, raw)
	require.NoError(t, err)
	assert.Equal(t, b.Values(), decoded.(BlankAnswer).Values())
	assert.True(t, NewBlankAnswer("", "").IsEmpty())
}

func TestDragDropAnswer_Placements(t *testing.T) {
	a := NewDragDropAnswer(nil).WithPlacement("s1", "first").WithPlacement("s2", "first")

	slot, ok := a.SlotOf("first")
	require.True(t, ok)
	assert.Equal(t, "s1", slot)

	cleared := a.Without("s1")
	_, ok = cleared.Item("s1")
	assert.False(t, ok)
	item, _ := cleared.Item("s2")
	assert.Equal(t, "first", item)

	assert.True(t, a.WithoutItem("first").IsEmpty())

	raw, err := EncodeAnswer(DragDropAnswer{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestEncodeDecodeAnswer_Scalars(t *testing.T) {
	raw, err := EncodeAnswer(ChoiceAnswer{Key: "b"})
	require.NoError(t, err)
	v, err := DecodeAnswer(SingleChoice, raw)
	require.NoError(t, err)
	assert.Equal(t, ChoiceAnswer{Key: "b"}, v)

	raw, err = EncodeAnswer(CodeAnswer{Source: "print(1)"})
	require.NoError(t, err)
	v, err = DecodeAnswer(FreeTextCode, raw)
	require.NoError(t, err)
	assert.Equal(t, CodeAnswer{Source: "print(1)"}, v)

	_, err = EncodeAnswer(nil)
	assert.Error(t, err)
	_, err = DecodeAnswer(QuestionType("essay"), raw)
	assert.Error(t, err)
	assert.True(t, CodeAnswer{Source: "  \n"}.IsEmpty())
}

func TestMission_IndexRoundTrip(t *testing.T) {
	m := &Mission{Chapters: []Chapter{
		{Questions: make([]Question, 2)},
		{Questions: make([]Question, 3)},
		{Questions: make([]Question, 1)},
	}}

	assert.Equal(t, []int{0, 2, 5}, m.ChapterOffsets())
	assert.Len(t, m.Questions(), 6)

	for global := 0; global < 6; global++ {
		ch, local, err := m.LocalIndex(global)
		require.NoError(t, err)
		back, err := m.GlobalIndex(ch, local)
		require.NoError(t, err)
		assert.Equal(t, global, back)
	}

	_, _, err := m.LocalIndex(6)
	assert.Error(t, err)
	_, err = m.GlobalIndex(1, 3)
	assert.Error(t, err)
	_, err = m.GlobalIndex(3, 0)
	assert.Error(t, err)
}
