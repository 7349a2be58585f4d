// Package normalize converts raw LLM output into canonical A2UI message
// sequences. Models drift from the requested shape in predictable ways:
// fenced JSON, a bare message list instead of the envelope, untagged data
// entries, flat data mappings. The normalizer accepts all of them and is
// total: any JSON input maps to some canonical output without panicking, and
// the same input always maps to the same output.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
)

// DefectError reports input the normalizer could not shape into a message
// sequence at all, such as output with no JSON in it. Recoverable drift is
// normalized, not reported.
type DefectError struct {
	Reason string
}

func (e *DefectError) Error() string {
	return "normalize: " + e.Reason
}

// FromText normalizes a free-text model response. Code fences are stripped
// first; if the remainder is not itself JSON, the text is scanned for JSON
// candidates and the first one that normalizes is used.
func FromText(text string) (*protocol.GenerationOutput, error) {
	stripped := stripFences(text)
	if stripped == "" {
		return nil, &DefectError{Reason: "empty model output"}
	}
	if json.Valid([]byte(stripped)) {
		return FromStructured(json.RawMessage(stripped))
	}

	var firstErr error
	for _, candidate := range findJSONCandidates(stripped) {
		if !json.Valid([]byte(candidate)) {
			continue
		}
		out, err := FromStructured(json.RawMessage(candidate))
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, &DefectError{Reason: "no JSON found in model output"}
}

// FromStructured normalizes a JSON value into a canonical generation output.
// Accepted envelope shapes: an object with a "messages" list and optional
// "reasoning", a bare list of messages, or a single message object.
func FromStructured(raw json.RawMessage) (*protocol.GenerationOutput, error) {
	switch firstByte(raw) {
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, &DefectError{Reason: "malformed JSON object: " + err.Error()}
		}
		if inner, ok := envelope["messages"]; ok {
			out := &protocol.GenerationOutput{}
			if r, ok := envelope["reasoning"]; ok {
				// Reasoning is best-effort; a non-string value is dropped.
				_ = json.Unmarshal(r, &out.Reasoning)
			}
			msgs, err := normalizeMessageList(inner)
			if err != nil {
				return nil, err
			}
			out.Messages = msgs
			return out, nil
		}
		// No envelope: treat the object as a single message.
		msg, err := normalizeMessage(raw)
		if err != nil {
			return nil, err
		}
		return &protocol.GenerationOutput{Messages: []protocol.Message{msg}}, nil

	case '[':
		msgs, err := normalizeMessageList(raw)
		if err != nil {
			return nil, err
		}
		return &protocol.GenerationOutput{Messages: msgs}, nil
	}
	return nil, &DefectError{Reason: "top-level JSON is neither object nor list"}
}

func normalizeMessageList(raw json.RawMessage) ([]protocol.Message, error) {
	if firstByte(raw) == '{' {
		// A single message object where a list was expected.
		msg, err := normalizeMessage(raw)
		if err != nil {
			return nil, err
		}
		return []protocol.Message{msg}, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &DefectError{Reason: "messages is not a list: " + err.Error()}
	}
	msgs := make([]protocol.Message, 0, len(elems))
	for i, elem := range elems {
		msg, err := normalizeMessage(elem)
		if err != nil {
			return nil, &DefectError{Reason: fmt.Sprintf("message %d: %v", i, err)}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func normalizeMessage(raw json.RawMessage) (protocol.Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return protocol.Message{}, &DefectError{Reason: "message is not an object: " + err.Error()}
	}

	// dataModelUpdate carries the only payload that needs reshaping; the
	// other variants decode directly.
	if inner, ok := fields["dataModelUpdate"]; ok && len(fields) == 1 {
		update, err := normalizeDataModelUpdate(inner)
		if err != nil {
			return protocol.Message{}, err
		}
		return protocol.Message{DataModelUpdate: update}, nil
	}

	var msg protocol.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return protocol.Message{}, &DefectError{Reason: "undecodable message: " + err.Error()}
	}
	return msg, nil
}

func normalizeDataModelUpdate(raw json.RawMessage) (*protocol.DataModelUpdate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &DefectError{Reason: "dataModelUpdate is not an object: " + err.Error()}
	}
	update := &protocol.DataModelUpdate{}
	if v, ok := fields["surfaceId"]; ok {
		_ = json.Unmarshal(v, &update.SurfaceID)
	}
	if v, ok := fields["path"]; ok {
		_ = json.Unmarshal(v, &update.Path)
	}
	update.Contents = normalizeContents(fields["contents"])
	return update, nil
}

// normalizeContents shapes whatever the model put under "contents" into a
// typed entry list. It is total over JSON values:
//
//   - a list whose elements all carry "key" passes through as tagged entries
//   - a single tagged entry object is wrapped in a list
//   - a raw untagged list becomes one "data" entry holding the list
//   - a flat mapping becomes one typed entry per field, in document order
//   - anything else is stringified into a "data" entry
func normalizeContents(raw json.RawMessage) []protocol.DataModelContent {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []protocol.DataModelContent{}
	}

	switch firstByte(raw) {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			break
		}
		if allTagged(elems) {
			contents := make([]protocol.DataModelContent, 0, len(elems))
			for _, elem := range elems {
				contents = append(contents, decodeTaggedEntry(elem))
			}
			return contents
		}
		var list []any
		if err := json.Unmarshal(raw, &list); err != nil {
			break
		}
		return []protocol.DataModelContent{protocol.ContentFromValue("data", list)}

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			break
		}
		if _, tagged := fields["key"]; tagged {
			return []protocol.DataModelContent{decodeTaggedEntry(raw)}
		}
		keys, err := orderedKeys(raw)
		if err != nil {
			break
		}
		contents := make([]protocol.DataModelContent, 0, len(keys))
		for _, k := range keys {
			var value any
			_ = json.Unmarshal(fields[k], &value)
			contents = append(contents, protocol.ContentFromValue(k, value))
		}
		return contents
	}

	// Scalar or undecodable: stringify so nothing is lost.
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		value = string(raw)
	}
	if s, ok := value.(string); ok {
		return []protocol.DataModelContent{{Key: "data", ValueString: &s}}
	}
	s := strings.TrimSpace(string(raw))
	return []protocol.DataModelContent{{Key: "data", ValueString: &s}}
}

// decodeTaggedEntry decodes one {"key": ..., "value*": ...} object. An entry
// that uses a generic "value" field instead of a typed one is retyped through
// ContentFromValue so the result always carries exactly one typed value.
func decodeTaggedEntry(raw json.RawMessage) protocol.DataModelContent {
	var entry protocol.DataModelContent
	if err := json.Unmarshal(raw, &entry); err == nil && hasTypedValue(&entry) {
		return entry
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		s := strings.TrimSpace(string(raw))
		return protocol.DataModelContent{Key: "data", ValueString: &s}
	}
	var key string
	_ = json.Unmarshal(fields["key"], &key)
	if v, ok := fields["value"]; ok {
		var value any
		_ = json.Unmarshal(v, &value)
		return protocol.ContentFromValue(key, value)
	}
	empty := ""
	return protocol.DataModelContent{Key: key, ValueString: &empty}
}

func hasTypedValue(c *protocol.DataModelContent) bool {
	return c.ValueString != nil || c.ValueNumber != nil || c.ValueBoolean != nil || c.ValueArray != nil
}

func allTagged(elems []json.RawMessage) bool {
	if len(elems) == 0 {
		return false
	}
	for _, elem := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil {
			return false
		}
		if _, ok := fields["key"]; !ok {
			return false
		}
	}
	return true
}

// orderedKeys returns an object's top-level keys in document order, which a
// decoded map loses.
func orderedKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
