package session

import (
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
)

// GradingState tells the store which questions already have a result.
type GradingState interface {
	Has(questionID string) bool
}

// ChangeListener is called with the id of the single question whose answer changed.
type ChangeListener func(questionID string)

// AnswerStore holds the in-progress answer per question. Every mutation is
// checked against the question's type and rejected once the question is graded.
type AnswerStore struct {
	questions       map[string]*models.Question
	answers         map[string]models.AnswerValue
	graded          GradingState
	singleOccupancy bool
	listeners       []ChangeListener
}

type AnswerStoreOption func(*AnswerStore)

// WithSingleOccupancy makes a drag-drop item occupy at most one slot at a time.
func WithSingleOccupancy(on bool) AnswerStoreOption {
	return func(s *AnswerStore) { s.singleOccupancy = on }
}

func NewAnswerStore(questions []models.Question, graded GradingState, opts ...AnswerStoreOption) *AnswerStore {
	s := &AnswerStore{
		answers: make(map[string]models.AnswerValue),
		graded:  graded,
	}
	for _, o := range opts {
		o(s)
	}
	s.load(questions)
	return s
}

func (s *AnswerStore) load(questions []models.Question) {
	s.questions = make(map[string]*models.Question, len(questions))
	for i := range questions {
		q := questions[i]
		s.questions[q.ID] = &q
	}
}

// Subscribe registers a listener for per-question changes.
func (s *AnswerStore) Subscribe(fn ChangeListener) {
	s.listeners = append(s.listeners, fn)
}

// Get returns the current answer for questionID, or the type's empty placeholder.
func (s *AnswerStore) Get(questionID string) models.AnswerValue {
	if v, ok := s.answers[questionID]; ok {
		return v
	}
	if q, ok := s.questions[questionID]; ok {
		return models.EmptyAnswer(q.Type)
	}
	return nil
}

// HasAnswer reports whether a non-empty answer exists for questionID.
func (s *AnswerStore) HasAnswer(questionID string) bool {
	v, ok := s.answers[questionID]
	return ok && !v.IsEmpty()
}

// Set replaces the whole value for a question.
func (s *AnswerStore) Set(questionID string, value models.AnswerValue) error {
	q, err := s.mutable(questionID)
	if err != nil {
		return err
	}
	if value == nil || value.Kind() != q.Type {
		return fmt.Errorf("%w: %s question given %T", ErrShapeMismatch, q.Type, value)
	}
	if dd, ok := value.(models.DragDropAnswer); ok {
		placed := make(map[string]string)
		for slot, item := range dd.Placements() {
			if err := checkPlacement(q, slot, item); err != nil {
				return err
			}
			if other, dup := placed[item]; dup && s.singleOccupancy {
				return fmt.Errorf("%w: %q in %q and %q", ErrItemOccupied, item, other, slot)
			}
			placed[item] = slot
		}
	}
	if b, ok := value.(models.BlankAnswer); ok && b.Len() > q.BlankCount() {
		return fmt.Errorf("%w: %d values for %d blanks", ErrBlankOutOfRange, b.Len(), q.BlankCount())
	}
	s.commit(questionID, value)
	return nil
}

// SetBlank writes one slot of a fill-in-blank answer, growing the sequence as needed.
func (s *AnswerStore) SetBlank(questionID string, index int, value string) error {
	q, err := s.mutable(questionID)
	if err != nil {
		return err
	}
	if q.Type != models.FillInBlank {
		return fmt.Errorf("%w: blank edit on %s question", ErrShapeMismatch, q.Type)
	}
	if index < 0 || index >= q.BlankCount() {
		return fmt.Errorf("%w: index %d, %d blanks", ErrBlankOutOfRange, index, q.BlankCount())
	}
	current, _ := s.answers[questionID].(models.BlankAnswer)
	s.commit(questionID, current.WithBlank(index, value))
	return nil
}

// SetDragSlot places itemID into slotID. With single occupancy on, the item is
// first removed from any other slot it holds.
func (s *AnswerStore) SetDragSlot(questionID, slotID, itemID string) error {
	q, err := s.mutable(questionID)
	if err != nil {
		return err
	}
	if q.Type != models.DragDrop {
		return fmt.Errorf("%w: slot edit on %s question", ErrShapeMismatch, q.Type)
	}
	if err := checkPlacement(q, slotID, itemID); err != nil {
		return err
	}
	current, _ := s.answers[questionID].(models.DragDropAnswer)
	if s.singleOccupancy {
		current = current.WithoutItem(itemID)
	}
	s.commit(questionID, current.WithPlacement(slotID, itemID))
	return nil
}

// ClearDragSlot removes the mapping for slotID only.
func (s *AnswerStore) ClearDragSlot(questionID, slotID string) error {
	q, err := s.mutable(questionID)
	if err != nil {
		return err
	}
	if q.Type != models.DragDrop {
		return fmt.Errorf("%w: slot edit on %s question", ErrShapeMismatch, q.Type)
	}
	if !q.HasSlot(slotID) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	current, _ := s.answers[questionID].(models.DragDropAnswer)
	s.commit(questionID, current.Without(slotID))
	return nil
}

// Reset drops every answer and reloads the question definitions.
func (s *AnswerStore) Reset(questions []models.Question) {
	s.answers = make(map[string]models.AnswerValue)
	s.load(questions)
}

func (s *AnswerStore) mutable(questionID string) (*models.Question, error) {
	q, ok := s.questions[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	if s.graded != nil && s.graded.Has(questionID) {
		return nil, ErrAnswerFrozen
	}
	return q, nil
}

func (s *AnswerStore) commit(questionID string, value models.AnswerValue) {
	s.answers[questionID] = value
	for _, fn := range s.listeners {
		fn(questionID)
	}
}

func checkPlacement(q *models.Question, slotID, itemID string) error {
	if !q.HasSlot(slotID) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	if !q.HasOption(itemID) {
		return fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	return nil
}
