package builder

import (
	"strings"
	"testing"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
)

func TestBuildOrdering(t *testing.T) {
	b := New()
	b.AddText("t1", "hello", "")
	b.AddData("/d", map[string]any{"x": 1})
	b.AddData("/e", map[string]any{"y": 2})

	msgs := b.Build()
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[0].SurfaceUpdate == nil {
		t.Error("message 0 should be surfaceUpdate")
	}
	if msgs[1].DataModelUpdate == nil || msgs[1].DataModelUpdate.Path != "/d" {
		t.Errorf("message 1 should be dataModelUpdate for /d: %+v", msgs[1])
	}
	if msgs[2].DataModelUpdate == nil || msgs[2].DataModelUpdate.Path != "/e" {
		t.Errorf("message 2 should be dataModelUpdate for /e: %+v", msgs[2])
	}
	if msgs[3].BeginRendering == nil {
		t.Error("last message should be beginRendering")
	}

	if defects := protocol.Validate(msgs); len(defects) != 0 {
		t.Errorf("built sequence should validate cleanly, got %v", defects)
	}
}

func TestBuildEmptyStillWellFormed(t *testing.T) {
	msgs := New().Build()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want surfaceUpdate + beginRendering", len(msgs))
	}
	if defects := protocol.Validate(msgs); len(defects) != 0 {
		t.Errorf("empty build should validate cleanly, got %v", defects)
	}
}

func TestTextDefaultsToBodyHint(t *testing.T) {
	msgs := New().AddText("t", "x", "").Build()
	text := msgs[0].SurfaceUpdate.Components[0].Component.Text
	if text.UsageHint != "body" {
		t.Errorf("UsageHint = %q, want body", text.UsageHint)
	}
}

func TestAddDataSortsKeys(t *testing.T) {
	msgs := New().AddData("", map[string]any{
		"zeta":  true,
		"alpha": "a",
		"mid":   3.5,
	}).Build()

	contents := msgs[1].DataModelUpdate.Contents
	keys := make([]string, len(contents))
	for i, c := range contents {
		keys[i] = c.Key
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}

	if contents[0].ValueString == nil || *contents[0].ValueString != "a" {
		t.Errorf("alpha should be a string entry: %+v", contents[0])
	}
	if contents[1].ValueNumber == nil || *contents[1].ValueNumber != 3.5 {
		t.Errorf("mid should be a number entry: %+v", contents[1])
	}
	if contents[2].ValueBoolean == nil || !*contents[2].ValueBoolean {
		t.Errorf("zeta should be a boolean entry: %+v", contents[2])
	}
}

func TestClearResetsBuilder(t *testing.T) {
	b := New()
	b.AddText("t", "x", "")
	b.AddData("/d", map[string]any{"k": "v"})
	b.Clear()

	msgs := b.Build()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages after Clear, want 2", len(msgs))
	}
	if len(msgs[0].SurfaceUpdate.Components) != 0 {
		t.Errorf("components should be empty after Clear")
	}
}

func TestErrorSurface(t *testing.T) {
	msgs := ErrorSurface("backend unreachable")
	if defects := protocol.Validate(msgs); len(defects) != 0 {
		t.Fatalf("error surface should validate cleanly, got %v", defects)
	}

	text, err := protocol.EncodeLines(msgs)
	if err != nil {
		t.Fatalf("EncodeLines: %v", err)
	}
	for _, want := range []string{"Generation Failed", "backend unreachable", "error_card"} {
		if !strings.Contains(text, want) {
			t.Errorf("error surface missing %q", want)
		}
	}
}

func TestSampleDashboard(t *testing.T) {
	msgs := SampleDashboard()
	if defects := protocol.Validate(msgs); len(defects) != 0 {
		t.Fatalf("sample dashboard should validate cleanly, got %v", defects)
	}
	// surfaceUpdate + two data updates + beginRendering
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if got := len(msgs[0].SurfaceUpdate.Components); got != 5 {
		t.Errorf("got %d components, want 5", got)
	}
}
