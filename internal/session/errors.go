package session

import "errors"

var (
	ErrUnknownQuestion  = errors.New("question not in session")
	ErrAnswerFrozen     = errors.New("answer is frozen after grading")
	ErrShapeMismatch    = errors.New("answer shape does not match question type")
	ErrBlankOutOfRange  = errors.New("blank index out of range")
	ErrUnknownSlot      = errors.New("slot is not a drop target of this question")
	ErrUnknownItem      = errors.New("item is not one of the question's draggable items")
	ErrItemOccupied     = errors.New("item is already placed in another slot")
	ErrRequestInFlight  = errors.New("another request is in flight for this session")
	ErrNoPendingPayload = errors.New("no item is being dragged")
)
