package render

import (
	"github.com/SAP-F-2025/learning-engine/internal/session"
)

// Board caches one widget per question of a session and rebuilds only the
// widgets that were invalidated. Answer edits invalidate through the store's
// change notifications; grading, hints and resets are invalidated by the caller.
//
// Board is not safe for concurrent use; callers hold the session lock.
type Board struct {
	session  *session.Session
	renderer *Renderer
	widgets  map[string]Widget
	builds   int
}

func NewBoard(s *session.Session, renderer *Renderer) *Board {
	b := &Board{
		session:  s,
		renderer: renderer,
		widgets:  make(map[string]Widget),
	}
	s.Answers.Subscribe(b.Invalidate)
	return b
}

// Invalidate drops the cached widget of one question.
func (b *Board) Invalidate(questionID string) {
	delete(b.widgets, questionID)
}

// InvalidateAll drops every cached widget.
func (b *Board) InvalidateAll() {
	b.widgets = make(map[string]Widget)
}

// Widget returns the current view of one question.
func (b *Board) Widget(questionID string) (Widget, bool) {
	if w, ok := b.widgets[questionID]; ok {
		return w, true
	}
	pos, ok := b.session.Position(questionID)
	if !ok {
		return Widget{}, false
	}
	w := b.build(pos)
	return w, true
}

// Widgets returns the view of every question in presentation order.
func (b *Board) Widgets() []Widget {
	questions := b.session.Questions()
	out := make([]Widget, 0, len(questions))
	for i, q := range questions {
		if w, ok := b.widgets[q.ID]; ok {
			out = append(out, w)
			continue
		}
		out = append(out, b.build(i))
	}
	return out
}

func (b *Board) build(pos int) Widget {
	s := b.session
	q := &s.Questions()[pos]

	in := Input{
		Question:    q,
		Number:      pos + 1,
		Answer:      s.Answers.Get(q.ID),
		HintVisible: s.Hints.Visible(q.ID),
		HintPaid:    s.Hints.Paid(q.ID),
	}
	if res, ok := s.Results.Get(q.ID); ok {
		in.Result = &res
	}

	w := b.renderer.Render(in)
	b.widgets[q.ID] = w
	b.builds++
	return w
}
