package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeMessage serializes one message to its canonical single-line JSON form,
// omitting absent optional fields.
func EncodeMessage(m Message) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	return string(data), nil
}

// EncodeLines serializes a message sequence to the canonical line-delimited
// form, one JSON object per line. Encoding a valid sequence and parsing it
// back is lossless.
func EncodeLines(msgs []Message) (string, error) {
	lines := make([]string, 0, len(msgs))
	for i, m := range msgs {
		line, err := EncodeMessage(m)
		if err != nil {
			return "", fmt.Errorf("message %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// DecodeLines parses canonical line-delimited text back into a message
// sequence. Blank lines are skipped; a line that is not a JSON object is an
// error naming the offending line number.
func DecodeLines(text string) ([]Message, error) {
	var msgs []Message
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
