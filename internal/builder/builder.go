// Package builder assembles well-formed A2UI message sequences
// programmatically. It is the server-side authoring path: fallback error
// surfaces, the sample dashboard, and tests all construct their UI through it
// rather than hand-writing wire JSON.
package builder

import (
	"sort"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
)

// DefaultSurfaceID is the surface used when the caller does not pick one.
const DefaultSurfaceID = "main"

// dataBatch is one pending data model update for a path.
type dataBatch struct {
	path     string
	contents []protocol.DataModelContent
}

// Builder accumulates components and data entries for a single surface and
// emits them in the protocol's required order: one surfaceUpdate, then a
// dataModelUpdate per batch, then beginRendering. A zero-component build still
// emits the surfaceUpdate so the sequence stays well-formed.
type Builder struct {
	surfaceID  string
	components []protocol.Component
	batches    []dataBatch
}

// New returns a builder targeting the default surface.
func New() *Builder {
	return NewForSurface(DefaultSurfaceID)
}

// NewForSurface returns a builder targeting the given surface ID.
func NewForSurface(surfaceID string) *Builder {
	return &Builder{surfaceID: surfaceID}
}

// SurfaceID reports the surface this builder targets.
func (b *Builder) SurfaceID() string { return b.surfaceID }

// Clear drops all accumulated components and data so the builder can be
// reused for a fresh sequence on the same surface.
func (b *Builder) Clear() {
	b.components = nil
	b.batches = nil
}

// AddComponent appends an arbitrary component. The convenience methods below
// cover the closed kind set; this is the escape hatch for callers that build
// the kind payload themselves.
func (b *Builder) AddComponent(id string, kind protocol.ComponentKind) *Builder {
	b.components = append(b.components, protocol.Component{ID: id, Component: kind})
	return b
}

// AddText adds a text component. An empty usageHint defaults to "body".
func (b *Builder) AddText(id, text, usageHint string) *Builder {
	if usageHint == "" {
		usageHint = "body"
	}
	return b.AddComponent(id, protocol.ComponentKind{Text: &protocol.TextComponent{
		Text:      protocol.LiteralString{LiteralString: text},
		UsageHint: usageHint,
	}})
}

// AddButton adds a button wired to actionID. An empty usageHint defaults to
// "primary".
func (b *Builder) AddButton(id, text, actionID, usageHint string) *Builder {
	if usageHint == "" {
		usageHint = "primary"
	}
	return b.AddComponent(id, protocol.ComponentKind{Button: &protocol.ButtonComponent{
		Text:      protocol.LiteralString{LiteralString: text},
		ActionID:  actionID,
		UsageHint: usageHint,
	}})
}

// AddCard adds a card container referencing children by ID. Pass an empty
// title to omit it.
func (b *Builder) AddCard(id string, children []string, title string) *Builder {
	card := &protocol.CardComponent{Children: childList(children)}
	if title != "" {
		card.Title = &protocol.LiteralString{LiteralString: title}
	}
	return b.AddComponent(id, protocol.ComponentKind{Card: card})
}

// AddRow adds a horizontal layout container.
func (b *Builder) AddRow(id string, children []string) *Builder {
	return b.AddComponent(id, protocol.ComponentKind{Row: &protocol.RowComponent{
		Children: childList(children),
	}})
}

// AddColumn adds a vertical layout container.
func (b *Builder) AddColumn(id string, children []string) *Builder {
	return b.AddComponent(id, protocol.ComponentKind{Column: &protocol.ColumnComponent{
		Children: childList(children),
	}})
}

// AddTable adds a table bound to dataPath.
func (b *Builder) AddTable(id string, columns []protocol.TableColumn, dataPath string) *Builder {
	return b.AddComponent(id, protocol.ComponentKind{Table: &protocol.TableComponent{
		Columns:  columns,
		DataPath: dataPath,
	}})
}

// AddChart adds a chart of the given type plotting xKey against yKey from
// dataPath. Pass an empty title to omit it.
func (b *Builder) AddChart(id, chartType, xKey, yKey, dataPath, title string) *Builder {
	chart := &protocol.ChartComponent{Config: protocol.ChartConfig{
		Type:     chartType,
		XKey:     xKey,
		YKey:     yKey,
		DataPath: dataPath,
	}}
	if title != "" {
		chart.Title = &protocol.LiteralString{LiteralString: title}
	}
	return b.AddComponent(id, protocol.ComponentKind{Chart: chart})
}

// AddForm adds a form container submitting through submitActionID.
func (b *Builder) AddForm(id string, children []string, submitActionID string) *Builder {
	return b.AddComponent(id, protocol.ComponentKind{Form: &protocol.FormComponent{
		Children:       childList(children),
		SubmitActionID: submitActionID,
	}})
}

// AddTextField adds a text input bound to bindingPath. Pass an empty
// placeholder to omit it.
func (b *Builder) AddTextField(id, label, bindingPath, placeholder string) *Builder {
	field := &protocol.TextFieldComponent{
		Label:       protocol.LiteralString{LiteralString: label},
		BindingPath: bindingPath,
	}
	if placeholder != "" {
		field.Placeholder = &protocol.LiteralString{LiteralString: placeholder}
	}
	return b.AddComponent(id, protocol.ComponentKind{TextField: field})
}

// AddDateTimeInput adds a date/time input bound to bindingPath. Mode is one
// of date, time, or datetime; empty means the renderer's default.
func (b *Builder) AddDateTimeInput(id, label, bindingPath, mode string) *Builder {
	return b.AddComponent(id, protocol.ComponentKind{DateTimeInput: &protocol.DateTimeInputComponent{
		Label:       protocol.LiteralString{LiteralString: label},
		BindingPath: bindingPath,
		Mode:        mode,
	}})
}

// AddData queues a data model update at path with one typed entry per map
// key. Keys are emitted sorted so builds are deterministic. Pass "" for path
// to target the data model root.
func (b *Builder) AddData(path string, values map[string]any) *Builder {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contents := make([]protocol.DataModelContent, 0, len(keys))
	for _, k := range keys {
		contents = append(contents, protocol.ContentFromValue(k, values[k]))
	}
	return b.AddContents(path, contents)
}

// AddContents queues a data model update at path with pre-typed entries.
func (b *Builder) AddContents(path string, contents []protocol.DataModelContent) *Builder {
	if len(contents) == 0 {
		return b
	}
	b.batches = append(b.batches, dataBatch{path: path, contents: contents})
	return b
}

// Build emits the accumulated state as an ordered message sequence.
func (b *Builder) Build() []protocol.Message {
	msgs := make([]protocol.Message, 0, len(b.batches)+2)
	msgs = append(msgs, protocol.Message{SurfaceUpdate: &protocol.SurfaceUpdate{
		SurfaceID:  b.surfaceID,
		Components: b.components,
	}})
	for _, batch := range b.batches {
		msgs = append(msgs, protocol.Message{DataModelUpdate: &protocol.DataModelUpdate{
			SurfaceID: b.surfaceID,
			Path:      batch.path,
			Contents:  batch.contents,
		}})
	}
	msgs = append(msgs, protocol.Message{BeginRendering: &protocol.BeginRendering{
		SurfaceID: b.surfaceID,
	}})
	return msgs
}

// BuildLines emits the accumulated state in canonical line-delimited form.
func (b *Builder) BuildLines() (string, error) {
	return protocol.EncodeLines(b.Build())
}

// childList normalizes a nil child slice to an empty one so containers always
// serialize a children array.
func childList(children []string) []string {
	if children == nil {
		return []string{}
	}
	return children
}
