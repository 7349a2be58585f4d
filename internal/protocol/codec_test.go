package protocol

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strp(s string) *string   { return &s }
func numP(f float64) *float64 { return &f }
func boolP(b bool) *bool      { return &b }

func sampleSequence() []Message {
	return []Message{
		{SurfaceUpdate: &SurfaceUpdate{
			SurfaceID: "main",
			Components: []Component{
				{ID: "title", Component: ComponentKind{Text: &TextComponent{
					Text: LiteralString{"Sales Dashboard"}, UsageHint: "title",
				}}},
				{ID: "card1", Component: ComponentKind{Card: &CardComponent{
					Children: []string{"chart1"},
					Title:    &LiteralString{"Revenue"},
				}}},
				{ID: "chart1", Component: ComponentKind{Chart: &ChartComponent{
					Config: ChartConfig{Type: "line", XKey: "month", YKey: "revenue", DataPath: "/revenueData"},
				}}},
			},
		}},
		{DataModelUpdate: &DataModelUpdate{
			SurfaceID: "main",
			Path:      "/revenueData",
			Contents: []DataModelContent{
				{Key: "data", ValueArray: []any{map[string]any{"month": "Jan", "revenue": float64(100)}}},
				{Key: "label", ValueString: strp("Monthly revenue")},
				{Key: "total", ValueNumber: numP(100)},
				{Key: "final", ValueBoolean: boolP(false)},
			},
		}},
		{BeginRendering: &BeginRendering{SurfaceID: "main"}},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msgs := sampleSequence()

	text, err := EncodeLines(msgs)
	if err != nil {
		t.Fatalf("EncodeLines: %v", err)
	}

	parsed, err := DecodeLines(text)
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}

	if diff := cmp.Diff(msgs, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeOmitsAbsentOptionals(t *testing.T) {
	msgs := []Message{
		{SurfaceUpdate: &SurfaceUpdate{
			SurfaceID: "main",
			Components: []Component{
				{ID: "t1", Component: ComponentKind{Text: &TextComponent{
					Text: LiteralString{"hello"},
				}}},
			},
		}},
	}

	text, err := EncodeLines(msgs)
	if err != nil {
		t.Fatalf("EncodeLines: %v", err)
	}

	for _, absent := range []string{"usage_hint", "title", "dataModelUpdate", "beginRendering", "null"} {
		if strings.Contains(text, absent) {
			t.Errorf("encoded line should not contain %q: %s", absent, text)
		}
	}
	if !strings.Contains(text, `"literalString":"hello"`) {
		t.Errorf("missing literalString nesting: %s", text)
	}
}

func TestEncodeEmptyValueArrayRoundTrip(t *testing.T) {
	msgs := []Message{
		{SurfaceUpdate: &SurfaceUpdate{
			SurfaceID: "main",
			Components: []Component{
				{ID: "t1", Component: ComponentKind{Text: &TextComponent{
					Text: LiteralString{"empty"},
				}}},
			},
		}},
		{DataModelUpdate: &DataModelUpdate{
			SurfaceID: "main",
			Contents:  []DataModelContent{{Key: "data", ValueArray: []any{}}},
		}},
		{BeginRendering: &BeginRendering{SurfaceID: "main"}},
	}
	if defects := Validate(msgs); len(defects) != 0 {
		t.Fatalf("unexpected defects before encode: %v", defects)
	}

	text, err := EncodeLines(msgs)
	if err != nil {
		t.Fatalf("EncodeLines: %v", err)
	}
	if !strings.Contains(text, `"valueArray":[]`) {
		t.Errorf("empty array should stay on the wire: %s", text)
	}

	parsed, err := DecodeLines(text)
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}
	if diff := cmp.Diff(msgs, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if defects := Validate(parsed); len(defects) != 0 {
		t.Errorf("decoded sequence should still be clean: %v", defects)
	}
}

func TestEncodeLinesOnePerMessage(t *testing.T) {
	text, err := EncodeLines(sampleSequence())
	if err != nil {
		t.Fatalf("EncodeLines: %v", err)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], `{"surfaceUpdate"`) {
		t.Errorf("line 1 should open with surfaceUpdate: %s", lines[0])
	}
	if !strings.HasPrefix(lines[2], `{"beginRendering"`) {
		t.Errorf("line 3 should open with beginRendering: %s", lines[2])
	}
}

func TestDecodeLinesSkipsBlanks(t *testing.T) {
	text := "\n" + `{"beginRendering":{"surfaceId":"main"}}` + "\n\n"
	msgs, err := DecodeLines(text)
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].BeginRendering == nil || msgs[0].BeginRendering.SurfaceID != "main" {
		t.Errorf("unexpected message: %+v", msgs[0])
	}
}

func TestDecodeLinesBadJSON(t *testing.T) {
	if _, err := DecodeLines(`{"surfaceUpdate":`); err == nil {
		t.Fatal("expected error for truncated line")
	}
}

func TestDecodeCapturesUnknownKind(t *testing.T) {
	line := `{"surfaceUpdate":{"surfaceId":"main","components":[{"id":"x","component":{"Sparkline":{"dataPath":"/d"}}}]}}`
	msgs, err := DecodeLines(line)
	if err != nil {
		t.Fatalf("DecodeLines: %v", err)
	}
	kind := msgs[0].SurfaceUpdate.Components[0].Component
	if len(kind.Unknown) != 1 || kind.Unknown[0] != "Sparkline" {
		t.Errorf("Unknown = %v, want [Sparkline]", kind.Unknown)
	}
}
