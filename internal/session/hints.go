package session

// HintState tracks, per question, whether the hint was paid for and whether it is shown.
// Visibility is independent from the result so a paid hint can be toggled for free.
type HintState struct {
	paid    map[string]bool
	visible map[string]bool
}

func NewHintState() *HintState {
	return &HintState{
		paid:    make(map[string]bool),
		visible: make(map[string]bool),
	}
}

func (h *HintState) Paid(questionID string) bool    { return h.paid[questionID] }
func (h *HintState) Visible(questionID string) bool { return h.visible[questionID] }

// Reveal marks the hint as paid and shows it.
func (h *HintState) Reveal(questionID string) {
	h.paid[questionID] = true
	h.visible[questionID] = true
}

// Toggle flips visibility of a paid hint. Unpaid hints stay hidden.
func (h *HintState) Toggle(questionID string) bool {
	if !h.paid[questionID] {
		return false
	}
	h.visible[questionID] = !h.visible[questionID]
	return h.visible[questionID]
}

func (h *HintState) Reset() {
	h.paid = make(map[string]bool)
	h.visible = make(map[string]bool)
}
