package script

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nfrund/tankbot/internal/protocol"
)

// tickValue turns a tick into the plain map a script sees as `tick`. Keys use the wire
// names, whole numbers become ints so that `%` works on turn numbers, and every event
// keeps its "type" field.
func tickValue(tick *protocol.TickEventForBot) (map[string]interface{}, error) {
	raw, err := json.Marshal(tick)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	for _, key := range []string{"bulletStates", "events"} {
		if m[key] == nil {
			m[key] = []interface{}{}
		}
	}
	return normalize(m).(map[string]interface{}), nil
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]interface{}:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []interface{}:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

// intentFrom reads the `intent` variable back. Only the keys the script set end up in
// the intent; unknown keys are rejected so a typo does not silently do nothing.
func intentFrom(v interface{}) (*protocol.BotIntent, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("intent must be a map, got %T", v)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	intent := &protocol.BotIntent{}
	if err := dec.Decode(intent); err != nil {
		return nil, err
	}
	return intent, nil
}
