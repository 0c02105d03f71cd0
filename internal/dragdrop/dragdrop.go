// Package dragdrop turns drag gestures into drag-drop answers.
//
// The input mechanism (pointer events, keyboard reordering, touch) only needs
// to speak InputChannel; placements always go through the session's AnswerStore.
package dragdrop

import (
	"fmt"

	"github.com/SAP-F-2025/learning-engine/internal/models"
	"github.com/SAP-F-2025/learning-engine/internal/session"
)

// InputChannel is what an input device drives for one drag-drop question.
type InputChannel interface {
	BeginDrag(itemID string) error
	CompleteDrop(slotID, itemID string) error
}

// Controller tracks the item being dragged for each drag-drop question of a session.
// Callers hold the session lock.
type Controller struct {
	session *session.Session
	pending map[string]string
}

func NewController(s *session.Session) *Controller {
	return &Controller{
		session: s,
		pending: make(map[string]string),
	}
}

// Channel binds the controller to one question.
func (c *Controller) Channel(questionID string) InputChannel {
	return channel{c: c, questionID: questionID}
}

// BeginDrag records itemID as the payload in transit for questionID.
func (c *Controller) BeginDrag(questionID, itemID string) error {
	q, err := c.question(questionID)
	if err != nil {
		return err
	}
	if !q.HasOption(itemID) {
		return fmt.Errorf("%w: %q", session.ErrUnknownItem, itemID)
	}
	c.pending[questionID] = itemID
	return nil
}

// Pending returns the item currently being dragged for questionID.
func (c *Controller) Pending(questionID string) (string, bool) {
	item, ok := c.pending[questionID]
	return item, ok
}

// CompleteDrop places itemID into slotID. An empty itemID uses the payload
// from the preceding BeginDrag. The first successful drop stamps the
// question's start time.
func (c *Controller) CompleteDrop(questionID, slotID, itemID string) error {
	if _, err := c.question(questionID); err != nil {
		return err
	}
	if itemID == "" {
		pending, ok := c.pending[questionID]
		if !ok {
			return session.ErrNoPendingPayload
		}
		itemID = pending
	}

	now := c.session.Now()
	if err := c.session.Answers.SetDragSlot(questionID, slotID, itemID); err != nil {
		return err
	}
	c.session.Timers.StampStart(questionID, now)
	delete(c.pending, questionID)
	return nil
}

// Clear empties one slot. Other slots keep their items.
func (c *Controller) Clear(questionID, slotID string) error {
	return c.session.Answers.ClearDragSlot(questionID, slotID)
}

// Reset forgets every payload in transit.
func (c *Controller) Reset() {
	c.pending = make(map[string]string)
}

func (c *Controller) question(questionID string) (*models.Question, error) {
	q, ok := c.session.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", session.ErrUnknownQuestion, questionID)
	}
	if q.Type != models.DragDrop {
		return nil, fmt.Errorf("%w: drag on %s question", session.ErrShapeMismatch, q.Type)
	}
	if c.session.Results.Has(questionID) {
		return nil, session.ErrAnswerFrozen
	}
	return q, nil
}

type channel struct {
	c          *Controller
	questionID string
}

func (ch channel) BeginDrag(itemID string) error {
	return ch.c.BeginDrag(ch.questionID, itemID)
}

func (ch channel) CompleteDrop(slotID, itemID string) error {
	return ch.c.CompleteDrop(ch.questionID, slotID, itemID)
}
