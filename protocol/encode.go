package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Encode serialises m with its type tag, in the form Decode accepts.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	return sjson.SetBytes(body, "type", m.Type())
}

// EncodeEnvelope wraps m in the message-channel envelope.
func EncodeEnvelope(m Message) ([]byte, error) {
	body, err := Encode(m)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes([]byte(`{"event":"message"}`), "data", body)
}
