package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"
)

type bufferWriter struct {
	bytes.Buffer
}

func (*bufferWriter) Fd() uintptr { return 0 }

func TestSurveyDriver_InfoWritesToStdio(t *testing.T) {
	t.Parallel()

	out := &bufferWriter{}
	driver := NewSurveyDriver(terminal.Stdio{Out: out})
	if err := driver.Info(context.Background(), "  子级"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if got := out.String(); got != "  子级\n" {
		t.Fatalf("info output = %q", got)
	}
}

func TestSurveyDriver_CanceledContextSkipsPrompt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	driver := NewSurveyDriver(terminal.Stdio{Out: &bufferWriter{}})

	if _, err := driver.Input(ctx, InputConfig{Message: "名称"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("input err = %v", err)
	}
	if idx, err := driver.Select(ctx, SelectConfig{Message: "级别", Options: []string{"hi"}}); idx != -1 || !errors.Is(err, context.Canceled) {
		t.Fatalf("select = %d, %v", idx, err)
	}
	if err := driver.Info(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("info err = %v", err)
	}
}

func TestPromptHelpers(t *testing.T) {
	t.Parallel()

	got := pickDefaults([]string{"a", "b", "c"}, []int{2, -1, 0, 5})
	if diff := cmp.Diff([]string{"c", "a"}, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if help := rowHelp(InputConfig{Placeholder: "请输入"}); help != "请输入" {
		t.Fatalf("placeholder help = %q", help)
	}
	if help := rowHelp(InputConfig{Help: "说明", Placeholder: "请输入"}); help != "说明" {
		t.Fatalf("help = %q", help)
	}
}
