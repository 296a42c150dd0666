package modal

import (
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formmodal/pkg/formstate"
	"github.com/goliatone/go-formmodal/pkg/model"
)

// DefaultMaxDepth bounds how many parent levels may be suspended at once.
const DefaultMaxDepth = 16

// Frame is a suspended parent level. Restoring it reproduces the parent's
// render inputs and the values the user had entered.
type Frame struct {
	ID        string
	Title     string
	Config    *model.ModalConfig
	ModalName string
	InitData  any
	FormData  map[string]any

	pending *Pending
}

// Stack is the LIFO of suspended parents. It is not safe for concurrent use;
// the modal guards it with its own lock.
type Stack struct {
	frames []Frame
	limit  int
}

// NewStack creates a stack holding at most limit frames. Zero or negative
// means DefaultMaxDepth.
func NewStack(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	return &Stack{limit: limit}
}

// Push stores a deep copy of frame.
func (s *Stack) Push(frame Frame) error {
	if len(s.frames) >= s.limit {
		return ErrDepthExceeded
	}
	if frame.ID == "" {
		frame.ID = uuid.NewString()
	}
	s.frames = append(s.frames, copyFrame(frame))
	return nil
}

// Pop removes the top frame and returns an independent copy of it.
func (s *Stack) Pop() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = Frame{}
	s.frames = s.frames[:len(s.frames)-1]
	return copyFrame(top), true
}

// Peek returns a copy of the top frame without removing it.
func (s *Stack) Peek() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return copyFrame(s.frames[len(s.frames)-1]), true
}

// Depth is the number of suspended parents.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Clear drops every frame and returns them, bottom first.
func (s *Stack) Clear() []Frame {
	frames := s.frames
	s.frames = nil
	return frames
}

func copyFrame(frame Frame) Frame {
	out := frame
	if frame.Config != nil {
		out.Config = frame.Config.Clone()
	}
	out.FormData = formstate.Clone(frame.FormData)
	if frame.InitData != nil {
		out.InitData = deepcopy.Copy(frame.InitData)
	}
	return out
}
