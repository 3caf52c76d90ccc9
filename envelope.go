package invoker

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidEnvelope is returned when raw bytes are not a valid operation
// envelope.
var ErrInvalidEnvelope = errors.New("invalid operation envelope")

// Envelope is a parsed operation request: the matched operation, the raw
// named values and the raw payload. It is the JSON front end for callers
// whose framework does not hand over these pieces separately:
//
//	{
//	  "operation": {"name": "company.get", "handler": "company.lookup"},
//	  "params": {"companyId": "acme-corp"},
//	  "data": {...}
//	}
type Envelope struct {
	Operation Operation
	Params    map[string]any

	payload json.RawMessage
}

// LooksLikeEnvelope is the cheap detection check: valid JSON carrying an
// operation handler. Call it before ParseEnvelope when the input may be
// some other message format.
func LooksLikeEnvelope(raw []byte) bool {
	return gjson.ValidBytes(raw) && gjson.GetBytes(raw, "operation.handler").Exists()
}

// ParseEnvelope parses an operation envelope. Scalar params keep their
// JSON kinds: strings stay strings, integral numbers become int64,
// fractional numbers float64, and booleans bool, so type acceptance can
// discriminate on them.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidEnvelope
	}
	handler := gjson.GetBytes(raw, "operation.handler")
	if !handler.Exists() {
		return nil, ErrInvalidEnvelope
	}

	e := &Envelope{
		Operation: Operation{
			Name:    gjson.GetBytes(raw, "operation.name").String(),
			Handler: handler.String(),
		},
		Params: make(map[string]any),
	}

	if extra := gjson.GetBytes(raw, "operation.values"); extra.IsObject() {
		e.Operation.Values = make(map[string]any)
		extra.ForEach(func(key, value gjson.Result) bool {
			e.Operation.Values[key.String()] = value.Value()
			return true
		})
	}

	params := gjson.GetBytes(raw, "params")
	if params.Exists() && !params.IsObject() {
		return nil, ErrInvalidEnvelope
	}
	params.ForEach(func(key, value gjson.Result) bool {
		e.Params[key.String()] = scalarValue(value)
		return true
	})

	if data := gjson.GetBytes(raw, "data"); data.Exists() {
		e.payload = json.RawMessage(data.Raw)
	}
	return e, nil
}

// HasPayload reports whether the envelope carried a data document.
func (e *Envelope) HasPayload() bool { return len(e.payload) > 0 }

// DecodePayload unmarshals the envelope's data document into v.
func (e *Envelope) DecodePayload(v any) error {
	if len(e.payload) == 0 {
		return errors.New("invoker: envelope has no payload")
	}
	return json.Unmarshal(e.payload, v)
}

// scalarValue maps a gjson result onto the raw-value domain. Integral
// numbers come back as int64 rather than float64 so an int parameter does
// not reject its own route value.
func scalarValue(r gjson.Result) any {
	if r.Type == gjson.Number {
		n := r.Num
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	}
	return r.Value()
}
