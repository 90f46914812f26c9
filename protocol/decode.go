package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// Envelope is the payload of a frame on the default "message" channel.
type Envelope struct {
	Event   string
	TurnID  string
	Message Message
}

// DecodeEnvelope unwraps a message-channel payload and decodes the message
// inside it. Accepted shapes:
//
//	{"event":"message","data":{...},"turn_id":"..."}
//	{"message":{...}}
//	{...}                      // bare message
func DecodeEnvelope(v Version, raw []byte) (Envelope, error) {
	root, err := parseObject(raw)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{Event: "message", TurnID: root.Get("turn_id").String()}
	body := raw
	switch {
	case root.Get("data").Exists():
		if ev := root.Get("event"); ev.Exists() {
			if ev.Type != gjson.String || ev.Str != "message" {
				return Envelope{}, fmt.Errorf("%w: unexpected envelope event %s", ErrMalformed, ev.Raw)
			}
		}
		data := root.Get("data")
		if !data.IsObject() {
			return Envelope{}, fmt.Errorf("%w: envelope data is not an object", ErrMalformed)
		}
		body = []byte(data.Raw)
	case root.Get("message").IsObject():
		body = []byte(root.Get("message").Raw)
	case root.Get("type").Exists():
	default:
		return Envelope{}, fmt.Errorf("%w: no message in envelope", ErrMalformed)
	}

	msg, err := Decode(v, body)
	if err != nil {
		return Envelope{}, err
	}
	env.Message = msg
	return env, nil
}

// Decode turns one raw message into its concrete type. Any frame that is not
// a known message of version v is rejected with ErrMalformed.
func Decode(v Version, raw []byte) (Message, error) {
	root, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	t := root.Get("type")
	if t.Type != gjson.String || t.Str == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch v {
	case V1:
		return decodeV1(t.Str, root, raw)
	case V2:
		return decodeV2(t.Str, root, raw)
	default:
		return nil, fmt.Errorf("unsupported protocol version %q", v)
	}
}

func decodeV1(typ string, root gjson.Result, raw []byte) (Message, error) {
	switch typ {
	case TypeTurnStart:
		return decodeShape[TurnStart](typ, root, raw, required("conversation_id", isString))
	case TypeSearchStart:
		return decodeShape[SearchStart](typ, root, raw, required("query", isString))
	case TypeSearchEnd:
		return decodeShape[SearchEnd](typ, root, raw, required("query", isString), required("results", isInt))
	case TypeRankStart:
		return decodeShape[RankStart](typ, root, raw)
	case TypeRankEnd:
		return decodeShape[RankEnd](typ, root, raw, required("pages", isPages))
	case TypeFetchStart:
		return decodeShape[FetchStart](typ, root, raw, required("pages", isPages))
	case TypeFetchEnd:
		return decodeShape[FetchEnd](typ, root, raw, optional("pages", isPages))
	case TypeAnswerDelta:
		return decodeShape[AnswerDelta](typ, root, raw, required("delta", isString))
	case TypeAnswer:
		return decodeShape[Answer](typ, root, raw, required("answer", isString), optional("citations", isPages))
	default:
		return nil, fmt.Errorf("%w: unknown %s message type %q", ErrMalformed, V1, typ)
	}
}

func decodeV2(typ string, root gjson.Result, raw []byte) (Message, error) {
	title := required("title", isString)
	description := optional("description", isString)

	switch typ {
	case TypeTurnStart:
		return decodeShape[TurnStart](typ, root, raw, required("conversation_id", isString))
	case TypeStepStart:
		return decodeShape[StepStart](typ, root, raw, title, description)
	case TypeStepStatus:
		return decodeShape[StepStatus](typ, root, raw, title, description)
	case TypeStepEnd:
		return decodeShape[StepEnd](typ, root, raw, title, description)
	case TypeStepFetchStart:
		return decodeShape[StepFetchStart](typ, root, raw, title, required("pages", isPages))
	case TypeStepFetchEnd:
		return decodeShape[StepFetchEnd](typ, root, raw, title, required("pages", isPages))
	case TypeStepAnswerStart:
		return decodeShape[StepAnswerStart](typ, root, raw, title, description)
	case TypeStepAnswerDelta:
		return decodeShape[StepAnswerDelta](typ, root, raw, title, required("delta", isString))
	case TypeStepAnswerEnd:
		return decodeShape[StepAnswerEnd](typ, root, raw, title)
	case TypeAnswer:
		return decodeShape[Answer](typ, root, raw, required("answer", isString), optional("citations", isPages))
	default:
		return nil, fmt.Errorf("%w: unknown %s message type %q", ErrMalformed, V2, typ)
	}
}

// DecodeError extracts the human-readable message of an error payload:
// {"error": "..."}, {"error": {"message": "..."}} or an HTTP error body of the
// form {"detail": "..."}. It returns "" when the payload carries no usable
// message.
func DecodeError(raw []byte) string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return ""
	}
	e := gjson.GetBytes(raw, "error")
	switch {
	case e.Type == gjson.String:
		return strings.TrimSpace(e.Str)
	case e.IsObject():
		if m := e.Get("message"); m.Type == gjson.String {
			return strings.TrimSpace(m.Str)
		}
	}
	if d := gjson.GetBytes(raw, "detail"); d.Type == gjson.String {
		return strings.TrimSpace(d.Str)
	}
	return ""
}

func parseObject(raw []byte) (gjson.Result, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: payload is not an object", ErrMalformed)
	}
	return root, nil
}

// ---------------------------------------------------------------------------
// Shape checks
// ---------------------------------------------------------------------------

type field struct {
	name     string
	optional bool
	check    func(gjson.Result) bool
}

func required(name string, check func(gjson.Result) bool) field {
	return field{name: name, check: check}
}

func optional(name string, check func(gjson.Result) bool) field {
	return field{name: name, optional: true, check: check}
}

func decodeShape[T Message](typ string, root gjson.Result, raw []byte, fields ...field) (Message, error) {
	for _, f := range fields {
		r := root.Get(f.name)
		if !r.Exists() || r.Type == gjson.Null {
			if f.optional {
				continue
			}
			return nil, fmt.Errorf("%w: %s: missing field %q", ErrMalformed, typ, f.name)
		}
		if !f.check(r) {
			return nil, fmt.Errorf("%w: %s: invalid field %q", ErrMalformed, typ, f.name)
		}
	}

	var m T
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, typ, err)
	}
	return m, nil
}

func isString(r gjson.Result) bool {
	return r.Type == gjson.String
}

func isInt(r gjson.Result) bool {
	return r.Type == gjson.Number && r.Num == math.Trunc(r.Num)
}

func isOptionalString(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null || r.Type == gjson.String
}

func isPages(r gjson.Result) bool {
	if !r.IsArray() {
		return false
	}
	ok := true
	r.ForEach(func(_, page gjson.Result) bool {
		url := page.Get("url")
		if !page.IsObject() || url.Type != gjson.String || strings.TrimSpace(url.Str) == "" {
			ok = false
			return false
		}
		for _, name := range []string{"title", "snippet", "favicon"} {
			if !isOptionalString(page.Get(name)) {
				ok = false
				return false
			}
		}
		return true
	})
	return ok
}
