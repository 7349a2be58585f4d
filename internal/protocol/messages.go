// Package protocol defines the A2UI wire protocol: the closed set of message
// and component variants, their validation rules, and the canonical
// line-delimited JSON serialization streamed to the frontend renderer.
//
// Each line of the canonical form is one Message with exactly one variant
// populated, in the fixed order surfaceUpdate -> dataModelUpdate(s) ->
// beginRendering. Field names and nesting are a frontend contract and must
// stay byte-stable.
package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
)

// LiteralString wraps display text values on the wire.
type LiteralString struct {
	LiteralString string `json:"literalString"`
}

// Component kind names, the closed enumeration.
const (
	KindText          = "Text"
	KindButton        = "Button"
	KindCard          = "Card"
	KindRow           = "Row"
	KindColumn        = "Column"
	KindTable         = "Table"
	KindChart         = "Chart"
	KindForm          = "Form"
	KindTextField     = "TextField"
	KindDateTimeInput = "DateTimeInput"
)

// Chart types accepted by ChartConfig.Type.
var ChartTypes = []string{"line", "bar", "pie", "area"}

// TextComponent displays text. UsageHint is one of title, subtitle, or body
// and defaults to "body" when constructed via the builder.
type TextComponent struct {
	Text      LiteralString `json:"text"`
	UsageHint string        `json:"usage_hint,omitempty"`
}

// ButtonComponent is an interactive button. UsageHint is primary or secondary.
type ButtonComponent struct {
	Text      LiteralString `json:"text"`
	ActionID  string        `json:"actionId"`
	UsageHint string        `json:"usage_hint,omitempty"`
}

// RowComponent lays out referenced children horizontally.
type RowComponent struct {
	Children []string `json:"children"`
}

// ColumnComponent lays out referenced children vertically.
type ColumnComponent struct {
	Children []string `json:"children"`
}

// CardComponent is a container with an optional title.
type CardComponent struct {
	Children []string       `json:"children"`
	Title    *LiteralString `json:"title,omitempty"`
}

// TableColumn defines one column of a Table. Type is string, number, or
// boolean.
type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// TableComponent binds tabular data from the data model at DataPath.
type TableComponent struct {
	Columns  []TableColumn `json:"columns"`
	DataPath string        `json:"dataPath"`
}

// ChartConfig selects the chart type and the data keys to plot.
type ChartConfig struct {
	Type     string `json:"type"`
	XKey     string `json:"xKey"`
	YKey     string `json:"yKey"`
	DataPath string `json:"dataPath"`
}

// ChartComponent is a visualization bound to the data model.
type ChartComponent struct {
	Config ChartConfig    `json:"config"`
	Title  *LiteralString `json:"title,omitempty"`
}

// FormComponent groups input children and names the submit action.
type FormComponent struct {
	Children       []string `json:"children"`
	SubmitActionID string   `json:"submitActionId"`
}

// TextFieldComponent is a text input bound to the data model at BindingPath.
type TextFieldComponent struct {
	Label       LiteralString  `json:"label"`
	BindingPath string         `json:"bindingPath"`
	Placeholder *LiteralString `json:"placeholder,omitempty"`
}

// DateTimeInputComponent is a date/time input. Mode is date, time, or
// datetime.
type DateTimeInputComponent struct {
	Label       LiteralString `json:"label"`
	BindingPath string        `json:"bindingPath"`
	Mode        string        `json:"mode,omitempty"`
}

// ComponentKind holds exactly one populated component payload, keyed on the
// wire by its kind name. Unrecognized kind keys seen during decode are
// recorded and surfaced by Validate as unknown_component_kind defects.
type ComponentKind struct {
	Text          *TextComponent          `json:"Text,omitempty"`
	Button        *ButtonComponent        `json:"Button,omitempty"`
	Card          *CardComponent          `json:"Card,omitempty"`
	Row           *RowComponent           `json:"Row,omitempty"`
	Column        *ColumnComponent        `json:"Column,omitempty"`
	Table         *TableComponent         `json:"Table,omitempty"`
	Chart         *ChartComponent         `json:"Chart,omitempty"`
	Form          *FormComponent          `json:"Form,omitempty"`
	TextField     *TextFieldComponent     `json:"TextField,omitempty"`
	DateTimeInput *DateTimeInputComponent `json:"DateTimeInput,omitempty"`

	// Unknown lists kind keys that did not match the closed enumeration.
	// Never serialized.
	Unknown []string `json:"-"`
}

// UnmarshalJSON decodes the kind union while capturing unknown kind keys
// instead of dropping them, so validation can report them by name.
func (k *ComponentKind) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("component payload is not an object: %w", err)
	}
	for key, val := range raw {
		var err error
		switch key {
		case KindText:
			k.Text = &TextComponent{}
			err = json.Unmarshal(val, k.Text)
		case KindButton:
			k.Button = &ButtonComponent{}
			err = json.Unmarshal(val, k.Button)
		case KindCard:
			k.Card = &CardComponent{}
			err = json.Unmarshal(val, k.Card)
		case KindRow:
			k.Row = &RowComponent{}
			err = json.Unmarshal(val, k.Row)
		case KindColumn:
			k.Column = &ColumnComponent{}
			err = json.Unmarshal(val, k.Column)
		case KindTable:
			k.Table = &TableComponent{}
			err = json.Unmarshal(val, k.Table)
		case KindChart:
			k.Chart = &ChartComponent{}
			err = json.Unmarshal(val, k.Chart)
		case KindForm:
			k.Form = &FormComponent{}
			err = json.Unmarshal(val, k.Form)
		case KindTextField:
			k.TextField = &TextFieldComponent{}
			err = json.Unmarshal(val, k.TextField)
		case KindDateTimeInput:
			k.DateTimeInput = &DateTimeInputComponent{}
			err = json.Unmarshal(val, k.DateTimeInput)
		default:
			k.Unknown = append(k.Unknown, key)
		}
		if err != nil {
			return fmt.Errorf("decode %s component: %w", key, err)
		}
	}
	// Map iteration order is random; keep decode deterministic.
	sort.Strings(k.Unknown)
	return nil
}

// Kind returns the populated kind name, or "" when none is set.
func (k *ComponentKind) Kind() string {
	switch {
	case k.Text != nil:
		return KindText
	case k.Button != nil:
		return KindButton
	case k.Card != nil:
		return KindCard
	case k.Row != nil:
		return KindRow
	case k.Column != nil:
		return KindColumn
	case k.Table != nil:
		return KindTable
	case k.Chart != nil:
		return KindChart
	case k.Form != nil:
		return KindForm
	case k.TextField != nil:
		return KindTextField
	case k.DateTimeInput != nil:
		return KindDateTimeInput
	}
	return ""
}

// populated counts set variants; a well-formed component has exactly one.
func (k *ComponentKind) populated() int {
	n := 0
	for _, set := range []bool{
		k.Text != nil, k.Button != nil, k.Card != nil, k.Row != nil,
		k.Column != nil, k.Table != nil, k.Chart != nil, k.Form != nil,
		k.TextField != nil, k.DateTimeInput != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Children returns the child ID references for container kinds (Card, Row,
// Column, Form) and nil for leaf kinds. References are not ownership: each ID
// must name a component elsewhere in the same surface update.
func (k *ComponentKind) Children() []string {
	switch {
	case k.Card != nil:
		return k.Card.Children
	case k.Row != nil:
		return k.Row.Children
	case k.Column != nil:
		return k.Column.Children
	case k.Form != nil:
		return k.Form.Children
	}
	return nil
}

// Component is one declarative UI element: a unique ID plus exactly one kind
// payload. The component list is a flat adjacency list, not a nested tree.
type Component struct {
	ID        string        `json:"id"`
	Component ComponentKind `json:"component"`
}

// SurfaceUpdate defines the components of a surface. It must precede any
// DataModelUpdate or BeginRendering for the same surface ID.
type SurfaceUpdate struct {
	SurfaceID  string      `json:"surfaceId"`
	Components []Component `json:"components"`
}

// DataModelContent is one typed entry in a data model update. Exactly one of
// the value fields must be set.
type DataModelContent struct {
	Key          string   `json:"key"`
	ValueString  *string  `json:"valueString,omitempty"`
	ValueNumber  *float64 `json:"valueNumber,omitempty"`
	ValueBoolean *bool    `json:"valueBoolean,omitempty"`
	ValueArray   []any    `json:"valueArray,omitempty"`
}

// MarshalJSON keeps a set-but-empty ValueArray on the wire. omitempty would
// drop the empty slice, leaving an entry with no value field, so an encoded
// sequence would no longer parse back to its source.
func (c DataModelContent) MarshalJSON() ([]byte, error) {
	if c.ValueArray != nil && len(c.ValueArray) == 0 {
		return json.Marshal(struct {
			Key          string   `json:"key"`
			ValueString  *string  `json:"valueString,omitempty"`
			ValueNumber  *float64 `json:"valueNumber,omitempty"`
			ValueBoolean *bool    `json:"valueBoolean,omitempty"`
			ValueArray   []any    `json:"valueArray"`
		}{c.Key, c.ValueString, c.ValueNumber, c.ValueBoolean, c.ValueArray})
	}
	type plain DataModelContent
	return json.Marshal(plain(c))
}

// valueCount reports how many value fields are set.
func (c *DataModelContent) valueCount() int {
	n := 0
	if c.ValueString != nil {
		n++
	}
	if c.ValueNumber != nil {
		n++
	}
	if c.ValueBoolean != nil {
		n++
	}
	if c.ValueArray != nil {
		n++
	}
	return n
}

// DataModelUpdate merges entries into the surface's hierarchical key-value
// store at the slash-delimited Path (default "/"). Updates to the same surface
// are cumulative, applied in arrival order.
type DataModelUpdate struct {
	SurfaceID string             `json:"surfaceId"`
	Path      string             `json:"path,omitempty"`
	Contents  []DataModelContent `json:"contents"`
}

// BeginRendering signals that the accumulated state for a surface is complete
// and ready to display.
type BeginRendering struct {
	SurfaceID string `json:"surfaceId"`
}

// DeleteSurface removes a surface from the renderer.
type DeleteSurface struct {
	SurfaceID string `json:"surfaceId"`
}

// Message is the tagged union streamed one-per-line. Exactly one variant must
// be populated.
type Message struct {
	SurfaceUpdate   *SurfaceUpdate   `json:"surfaceUpdate,omitempty"`
	DataModelUpdate *DataModelUpdate `json:"dataModelUpdate,omitempty"`
	BeginRendering  *BeginRendering  `json:"beginRendering,omitempty"`
	DeleteSurface   *DeleteSurface   `json:"deleteSurface,omitempty"`
}

// variantCount reports how many variants are populated.
func (m *Message) variantCount() int {
	n := 0
	if m.SurfaceUpdate != nil {
		n++
	}
	if m.DataModelUpdate != nil {
		n++
	}
	if m.BeginRendering != nil {
		n++
	}
	if m.DeleteSurface != nil {
		n++
	}
	return n
}

// SurfaceID returns the surface the message addresses, or "" for an empty
// message.
func (m *Message) SurfaceID() string {
	switch {
	case m.SurfaceUpdate != nil:
		return m.SurfaceUpdate.SurfaceID
	case m.DataModelUpdate != nil:
		return m.DataModelUpdate.SurfaceID
	case m.BeginRendering != nil:
		return m.BeginRendering.SurfaceID
	case m.DeleteSurface != nil:
		return m.DeleteSurface.SurfaceID
	}
	return ""
}

// GenerationOutput is the envelope a generation backend produces: the message
// sequence plus an optional natural-language rationale.
type GenerationOutput struct {
	Messages  []Message `json:"messages"`
	Reasoning string    `json:"reasoning,omitempty"`
}

// ContentFromValue builds a typed DataModelContent from an arbitrary decoded
// JSON value. Booleans are checked before numbers, numbers become float64,
// lists become valueArray, and anything without a typed slot is stringified
// into valueString so the conversion is total.
func ContentFromValue(key string, value any) DataModelContent {
	entry := DataModelContent{Key: key}
	switch v := value.(type) {
	case string:
		entry.ValueString = &v
	case bool:
		entry.ValueBoolean = &v
	case float64:
		entry.ValueNumber = &v
	case float32:
		f := float64(v)
		entry.ValueNumber = &f
	case int:
		f := float64(v)
		entry.ValueNumber = &f
	case int32:
		f := float64(v)
		entry.ValueNumber = &f
	case int64:
		f := float64(v)
		entry.ValueNumber = &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			entry.ValueNumber = &f
		} else {
			s := v.String()
			entry.ValueString = &s
		}
	case []any:
		if v == nil {
			v = []any{}
		}
		entry.ValueArray = v
	case []map[string]any:
		arr := make([]any, len(v))
		for i, rec := range v {
			arr[i] = rec
		}
		entry.ValueArray = arr
	default:
		s := stringifyValue(value)
		entry.ValueString = &s
	}
	return entry
}

// stringifyValue renders a value without a typed slot as compact JSON, falling
// back to fmt formatting for unmarshalable values.
func stringifyValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
