package modal

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formmodal/pkg/model"
)

func TestStack_PushPopIsolatesFormData(t *testing.T) {
	t.Parallel()

	stack := NewStack(0)
	form := map[string]any{"name": "Ada", "tags": []string{"a"}}
	if err := stack.Push(Frame{Title: "父级", ModalName: "parent", FormData: form}); err != nil {
		t.Fatalf("push: %v", err)
	}

	form["name"] = "changed"
	form["tags"].([]string)[0] = "z"

	top, ok := stack.Peek()
	if !ok || top.ID == "" {
		t.Fatalf("peek = %+v, %v", top, ok)
	}
	top.FormData["name"] = "peeked"

	frame, ok := stack.Pop()
	if !ok {
		t.Fatalf("expected a frame")
	}
	want := map[string]any{"name": "Ada", "tags": []string{"a"}}
	if diff := cmp.Diff(want, frame.FormData); diff != "" {
		t.Fatalf("restored form data mismatch (-want +got):\n%s", diff)
	}
	if frame.Config != nil {
		t.Fatalf("nil config should stay nil, got %+v", frame.Config)
	}
	if stack.Depth() != 0 {
		t.Fatalf("depth = %d", stack.Depth())
	}
	if _, ok := stack.Pop(); ok {
		t.Fatalf("pop on empty stack should report false")
	}
}

func TestStack_LimitAndClear(t *testing.T) {
	t.Parallel()

	stack := NewStack(2)
	cfg := &model.ModalConfig{Title: "子级"}
	for i := 0; i < 2; i++ {
		if err := stack.Push(Frame{Config: cfg}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := stack.Push(Frame{}); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}

	top, _ := stack.Peek()
	if top.Config == cfg {
		t.Fatalf("frame config should be a copy")
	}
	if frames := stack.Clear(); len(frames) != 2 || stack.Depth() != 0 {
		t.Fatalf("clear returned %d frames, depth %d", len(frames), stack.Depth())
	}
}
