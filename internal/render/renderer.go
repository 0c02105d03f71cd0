package render

import (
	"sort"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// State is the lifecycle position of one question widget.
type State string

const (
	StateUnanswered    State = "unanswered"
	StateAnswered      State = "answered"
	StateGraded        State = "graded"
	StateHintRequested State = "hint_requested"
)

// Empty-state reasons shown instead of a broken widget.
const (
	ReasonNoOptions   = "no options available"
	ReasonNoBlanks    = "no blanks in question text"
	ReasonNoSlots     = "no drop targets available"
	ReasonNoItems     = "no items available"
	ReasonUnsupported = "unsupported question type"
)

const (
	FeedbackCorrect   = "Correct!"
	FeedbackIncorrect = "Incorrect"
)

// DefaultHintMinRetry is the stricter gating variant: hints after three attempts.
const DefaultHintMinRetry = 3

// HintPolicy decides when a returned hint may be offered.
// MinRetries 0 offers every hint unconditionally.
type HintPolicy struct {
	MinRetries int
}

func DefaultHintPolicy() HintPolicy {
	return HintPolicy{MinRetries: DefaultHintMinRetry}
}

// Allows reports whether the hint attached to res can be requested.
func (p HintPolicy) Allows(res models.SubmissionResult) bool {
	return res.Hint != "" && res.Retry >= p.MinRetries
}

// Input is everything a widget builder reads for one question.
type Input struct {
	Question    *models.Question
	Number      int
	Answer      models.AnswerValue
	Result      *models.SubmissionResult
	HintVisible bool
	HintPaid    bool
}

type Widget struct {
	QuestionID  string              `json:"question_id"`
	Number      int                 `json:"number"`
	Type        models.QuestionType `json:"type"`
	State       State               `json:"state"`
	Prompt      string              `json:"prompt"`
	Segments    []string            `json:"segments,omitempty"`
	Choices     []ChoiceView        `json:"choices,omitempty"`
	Blanks      []BlankView         `json:"blanks,omitempty"`
	Slots       []SlotView          `json:"slots,omitempty"`
	Items       []ItemView          `json:"items,omitempty"`
	Code        *CodeView           `json:"code,omitempty"`
	Disabled    bool                `json:"disabled"`
	Empty       bool                `json:"empty,omitempty"`
	EmptyReason string              `json:"empty_reason,omitempty"`
	Feedback    *FeedbackView       `json:"feedback,omitempty"`
}

type ChoiceView struct {
	Key      string `json:"key"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

type BlankView struct {
	Index    int    `json:"index"`
	Value    string `json:"value"`
	Optional bool   `json:"optional"`
}

type SlotView struct {
	ID        string `json:"id"`
	Item      string `json:"item,omitempty"`
	Filled    bool   `json:"filled"`
	Clearable bool   `json:"clearable"`
}

type ItemView struct {
	Key  string `json:"key"`
	Text string `json:"text"`
	Slot string `json:"slot,omitempty"`
}

type CodeView struct {
	Source      string `json:"source"`
	Constraints string `json:"constraints,omitempty"`
}

type FeedbackView struct {
	Correct bool      `json:"correct"`
	Label   string    `json:"label"`
	Text    string    `json:"text,omitempty"`
	Points  int       `json:"points"`
	Retry   int       `json:"retry"`
	Hint    *HintView `json:"hint,omitempty"`
}

// HintView is present only when a hint exists and the policy allows it.
// Text is filled only while the hint is shown.
type HintView struct {
	Paid    bool   `json:"paid"`
	Visible bool   `json:"visible"`
	Text    string `json:"text,omitempty"`
}

// Renderer turns questions into view models. It never fails: malformed
// question payloads produce an empty widget with a reason.
type Renderer struct {
	policy HintPolicy
}

func NewRenderer(policy HintPolicy) *Renderer {
	return &Renderer{policy: policy}
}

func (r *Renderer) Policy() HintPolicy {
	return r.policy
}

func (r *Renderer) Render(in Input) Widget {
	q := in.Question
	w := Widget{
		QuestionID: q.ID,
		Number:     in.Number,
		Type:       q.Type,
		Prompt:     q.Text,
		State:      stateOf(in),
		Disabled:   in.Result != nil,
	}

	switch q.Type {
	case models.SingleChoice:
		buildChoice(&w, q, in.Answer)
	case models.FillInBlank:
		buildBlanks(&w, q, in.Answer)
	case models.DragDrop:
		buildDragDrop(&w, q, in.Answer)
	case models.FreeTextCode:
		buildCode(&w, q, in.Answer)
	default:
		w.Empty, w.EmptyReason = true, ReasonUnsupported
	}

	if in.Result != nil {
		w.Feedback = r.feedback(*in.Result, in.HintVisible, in.HintPaid)
	}
	return w
}

func stateOf(in Input) State {
	switch {
	case in.Result != nil && in.HintVisible:
		return StateHintRequested
	case in.Result != nil:
		return StateGraded
	case in.Answer != nil && !in.Answer.IsEmpty():
		return StateAnswered
	default:
		return StateUnanswered
	}
}

func (r *Renderer) feedback(res models.SubmissionResult, hintVisible, hintPaid bool) *FeedbackView {
	fb := &FeedbackView{
		Correct: res.IsCorrect,
		Label:   FeedbackIncorrect,
		Text:    res.Feedback,
		Points:  res.Points,
		Retry:   res.Retry,
	}
	if res.IsCorrect {
		fb.Label = FeedbackCorrect
	}
	if r.policy.Allows(res) {
		fb.Hint = &HintView{Paid: hintPaid, Visible: hintVisible}
		if hintVisible {
			fb.Hint.Text = res.Hint
		}
	}
	return fb
}

func buildChoice(w *Widget, q *models.Question, answer models.AnswerValue) {
	if len(q.Options) == 0 {
		w.Empty, w.EmptyReason = true, ReasonNoOptions
		return
	}
	selected, _ := answer.(models.ChoiceAnswer)

	opts := make([]models.Option, len(q.Options))
	copy(opts, q.Options)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })

	w.Choices = make([]ChoiceView, 0, len(opts))
	for _, o := range opts {
		w.Choices = append(w.Choices, ChoiceView{
			Key:      o.Key,
			Text:     o.Text,
			Selected: o.Key == selected.Key,
		})
	}
}

func buildBlanks(w *Widget, q *models.Question, answer models.AnswerValue) {
	n := q.BlankCount()
	if n == 0 {
		w.Empty, w.EmptyReason = true, ReasonNoBlanks
		return
	}
	filled, _ := answer.(models.BlankAnswer)

	w.Segments = q.PromptParts()
	w.Blanks = make([]BlankView, n)
	for i := range w.Blanks {
		v, _ := filled.Get(i)
		w.Blanks[i] = BlankView{Index: i, Value: v, Optional: q.IsOptionalBlank(i)}
	}
}

func buildDragDrop(w *Widget, q *models.Question, answer models.AnswerValue) {
	slots := q.SlotIDs()
	switch {
	case len(slots) == 0:
		w.Empty, w.EmptyReason = true, ReasonNoSlots
		return
	case len(q.Options) == 0:
		w.Empty, w.EmptyReason = true, ReasonNoItems
		return
	}
	placed, _ := answer.(models.DragDropAnswer)

	w.Segments = q.PromptParts()
	w.Slots = make([]SlotView, 0, len(slots))
	for _, id := range slots {
		item, ok := placed.Item(id)
		w.Slots = append(w.Slots, SlotView{
			ID:        id,
			Item:      item,
			Filled:    ok,
			Clearable: ok && !w.Disabled,
		})
	}
	w.Items = make([]ItemView, 0, len(q.Options))
	for _, o := range q.Options {
		slot, _ := placed.SlotOf(o.Key)
		w.Items = append(w.Items, ItemView{Key: o.Key, Text: o.Text, Slot: slot})
	}
}

func buildCode(w *Widget, q *models.Question, answer models.AnswerValue) {
	src, _ := answer.(models.CodeAnswer)
	w.Code = &CodeView{Source: src.Source, Constraints: q.Constraints}
}
