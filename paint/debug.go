package paint

import (
	"encoding/json"
	"io"
	"os"
)

type taggedEvent struct {
	Function Kind  `json:"function"`
	Args     Event `json:"args"`
}

// MarshalEvents encodes events as a JSON array; each entry carries the
// operation name under "function" and its arguments under "args".
func MarshalEvents(events []Event) ([]byte, error) {
	tagged := make([]taggedEvent, len(events))
	for i, e := range events {
		tagged[i] = taggedEvent{Function: e.Kind(), Args: e}
	}
	return json.MarshalIndent(tagged, "", "  ")
}

// WriteEvents 将事件日志以 JSON 写入 w，便于调试或对比。
func WriteEvents(w io.Writer, events []Event) error {
	data, err := MarshalEvents(events)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteEventsJSON 将事件日志写入 path。
func WriteEventsJSON(events []Event, path string) error {
	data, err := MarshalEvents(events)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
