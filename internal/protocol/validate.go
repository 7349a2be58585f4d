package protocol

import "fmt"

// DefectKind names a class of validation problem.
type DefectKind string

const (
	DefectMissingRequiredField   DefectKind = "missing_required_field"
	DefectDanglingChildReference DefectKind = "dangling_child_reference"
	DefectDuplicateComponentID   DefectKind = "duplicate_component_id"
	DefectUnknownComponentKind   DefectKind = "unknown_component_kind"
	DefectOutOfOrderMessage      DefectKind = "out_of_order_message"
	DefectDuplicateDataKey       DefectKind = "duplicate_data_key"
)

// Defect locates one validation problem within a message sequence.
type Defect struct {
	Index  int        // message index within the sequence
	Kind   DefectKind // problem class
	Field  string     // dotted field path, when a specific field is at fault
	Ref    string     // offending ID, key, or kind name
	Detail string     // human-readable context
}

func (d Defect) String() string {
	s := fmt.Sprintf("message[%d]: %s", d.Index, d.Kind)
	if d.Field != "" {
		s += " field=" + d.Field
	}
	if d.Ref != "" {
		s += fmt.Sprintf(" %q", d.Ref)
	}
	if d.Detail != "" {
		s += " (" + d.Detail + ")"
	}
	return s
}

// Validate checks a message sequence against the protocol's structural
// invariants: exactly one variant per message, required fields present,
// component IDs unique, child references resolvable, component kinds drawn
// from the closed set, and per-surface ordering (surfaceUpdate before any
// dataModelUpdate or beginRendering for that surface). It returns every
// defect found; an empty result means the sequence is well-formed.
func Validate(msgs []Message) []Defect {
	var defects []Defect
	seenSurface := make(map[string]bool)

	for i := range msgs {
		m := &msgs[i]
		switch n := m.variantCount(); {
		case n == 0:
			defects = append(defects, Defect{
				Index: i, Kind: DefectMissingRequiredField, Field: "message",
				Detail: "no variant populated",
			})
			continue
		case n > 1:
			defects = append(defects, Defect{
				Index: i, Kind: DefectMissingRequiredField, Field: "message",
				Detail: fmt.Sprintf("%d variants populated, want exactly one", n),
			})
			continue
		}

		switch {
		case m.SurfaceUpdate != nil:
			defects = append(defects, validateSurfaceUpdate(i, m.SurfaceUpdate)...)
			if m.SurfaceUpdate.SurfaceID != "" {
				seenSurface[m.SurfaceUpdate.SurfaceID] = true
			}

		case m.DataModelUpdate != nil:
			u := m.DataModelUpdate
			if u.SurfaceID == "" {
				defects = append(defects, Defect{
					Index: i, Kind: DefectMissingRequiredField, Field: "dataModelUpdate.surfaceId",
				})
			} else if !seenSurface[u.SurfaceID] {
				defects = append(defects, Defect{
					Index: i, Kind: DefectOutOfOrderMessage, Ref: u.SurfaceID,
					Detail: "dataModelUpdate before surfaceUpdate for this surface",
				})
			}
			defects = append(defects, validateContents(i, u.Contents)...)

		case m.BeginRendering != nil:
			b := m.BeginRendering
			if b.SurfaceID == "" {
				defects = append(defects, Defect{
					Index: i, Kind: DefectMissingRequiredField, Field: "beginRendering.surfaceId",
				})
			} else if !seenSurface[b.SurfaceID] {
				defects = append(defects, Defect{
					Index: i, Kind: DefectOutOfOrderMessage, Ref: b.SurfaceID,
					Detail: "beginRendering before surfaceUpdate for this surface",
				})
			}

		case m.DeleteSurface != nil:
			if m.DeleteSurface.SurfaceID == "" {
				defects = append(defects, Defect{
					Index: i, Kind: DefectMissingRequiredField, Field: "deleteSurface.surfaceId",
				})
			}
		}
	}

	return defects
}

func validateSurfaceUpdate(idx int, u *SurfaceUpdate) []Defect {
	var defects []Defect
	if u.SurfaceID == "" {
		defects = append(defects, Defect{
			Index: idx, Kind: DefectMissingRequiredField, Field: "surfaceUpdate.surfaceId",
		})
	}

	// First pass: collect IDs so forward child references resolve.
	ids := make(map[string]bool, len(u.Components))
	for _, c := range u.Components {
		if c.ID == "" {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectMissingRequiredField, Field: "component.id",
			})
			continue
		}
		if ids[c.ID] {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectDuplicateComponentID, Ref: c.ID,
			})
		}
		ids[c.ID] = true
	}

	for _, c := range u.Components {
		defects = append(defects, validateComponent(idx, c, ids)...)
	}
	return defects
}

func validateComponent(idx int, c Component, ids map[string]bool) []Defect {
	var defects []Defect
	k := &c.Component

	for _, unknown := range k.Unknown {
		defects = append(defects, Defect{
			Index: idx, Kind: DefectUnknownComponentKind, Ref: unknown,
			Detail: fmt.Sprintf("component %q", c.ID),
		})
	}

	switch n := k.populated(); {
	case n == 0:
		if len(k.Unknown) == 0 {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectMissingRequiredField,
				Field: "component", Ref: c.ID, Detail: "no kind payload",
			})
		}
		return defects
	case n > 1:
		defects = append(defects, Defect{
			Index: idx, Kind: DefectMissingRequiredField,
			Field: "component", Ref: c.ID,
			Detail: fmt.Sprintf("%d kind payloads, want exactly one", n),
		})
		return defects
	}

	missing := func(field string) {
		defects = append(defects, Defect{
			Index: idx, Kind: DefectMissingRequiredField,
			Field: k.Kind() + "." + field, Ref: c.ID,
		})
	}

	switch {
	case k.Button != nil:
		if k.Button.ActionID == "" {
			missing("actionId")
		}
	case k.Table != nil:
		if len(k.Table.Columns) == 0 {
			missing("columns")
		}
		if k.Table.DataPath == "" {
			missing("dataPath")
		}
	case k.Chart != nil:
		cfg := k.Chart.Config
		if cfg.Type == "" {
			missing("config.type")
		} else if !validChartType(cfg.Type) {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectMissingRequiredField,
				Field: "Chart.config.type", Ref: c.ID,
				Detail: fmt.Sprintf("%q is not one of line|bar|pie|area", cfg.Type),
			})
		}
		if cfg.DataPath == "" {
			missing("config.dataPath")
		}
	case k.Form != nil:
		if k.Form.SubmitActionID == "" {
			missing("submitActionId")
		}
	case k.TextField != nil:
		if k.TextField.BindingPath == "" {
			missing("bindingPath")
		}
	case k.DateTimeInput != nil:
		if k.DateTimeInput.BindingPath == "" {
			missing("bindingPath")
		}
	}

	if children := k.Children(); children == nil && isContainer(k) {
		missing("children")
	} else {
		for _, child := range children {
			if !ids[child] {
				defects = append(defects, Defect{
					Index: idx, Kind: DefectDanglingChildReference, Ref: child,
					Detail: fmt.Sprintf("referenced by %q", c.ID),
				})
			}
		}
	}
	return defects
}

func isContainer(k *ComponentKind) bool {
	return k.Card != nil || k.Row != nil || k.Column != nil || k.Form != nil
}

func validChartType(t string) bool {
	for _, ct := range ChartTypes {
		if t == ct {
			return true
		}
	}
	return false
}

func validateContents(idx int, contents []DataModelContent) []Defect {
	var defects []Defect
	seen := make(map[string]bool, len(contents))
	for _, entry := range contents {
		if entry.Key == "" {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectMissingRequiredField, Field: "contents.key",
			})
			continue
		}
		if seen[entry.Key] {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectDuplicateDataKey, Ref: entry.Key,
			})
		}
		seen[entry.Key] = true
		if n := entry.valueCount(); n != 1 {
			defects = append(defects, Defect{
				Index: idx, Kind: DefectMissingRequiredField,
				Field: "contents.value", Ref: entry.Key,
				Detail: fmt.Sprintf("%d value fields set, want exactly one", n),
			})
		}
	}
	return defects
}
