package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TextArg is a request argument the client may send as a JSON string or number.
// Numbers keep their literal text so the validator sees exactly what was sent.
type TextArg string

func (t *TextArg) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TextArg(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*t = TextArg(n.String())
	return nil
}
