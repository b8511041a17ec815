package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/lablink/internal/application"
)

// Fields is a decoded request body.
type Fields map[string]any

// String returns the first non-empty value among keys, coerced to a string.
func (f Fields) String(keys ...string) string {
	for _, key := range keys {
		if v := scalarString(f[key]); v != "" {
			return v
		}
	}
	return ""
}

// Raw is String without whitespace trimming, for secrets whose padding is
// part of the value.
func (f Fields) Raw(keys ...string) string {
	for _, key := range keys {
		if v, ok := f[key].(string); ok {
			if v != "" {
				return v
			}
			continue
		}
		if v := scalarString(f[key]); v != "" {
			return v
		}
	}
	return ""
}

func scalarString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if !value {
			return ""
		}
		return "true"
	case []string:
		if len(value) == 0 {
			return ""
		}
		return strings.TrimSpace(value[0])
	default:
		return fmt.Sprint(value)
	}
}

func decodeBody(body any) (Fields, error) {
	switch value := body.(type) {
	case nil:
		return Fields{}, nil
	case Fields:
		return value, nil
	case map[string]any:
		return Fields(value), nil
	case map[string]string:
		out := make(Fields, len(value))
		for k, v := range value {
			out[k] = v
		}
		return out, nil
	case url.Values:
		return formFields(value), nil
	case []byte:
		return decodeText(value)
	case string:
		return decodeText([]byte(value))
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, invalidBody()
		}
		return decodeJSONObject(raw)
	}
}

// decodeText accepts a JSON object and falls back to form encoding.
func decodeText(raw []byte) (Fields, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Fields{}, nil
	}
	if fields, err := decodeJSONObject(trimmed); err == nil {
		return fields, nil
	}
	values, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return nil, invalidBody()
	}
	return formFields(values), nil
}

func decodeJSONObject(raw []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields Fields
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, invalidBody()
	}
	return fields, nil
}

func formFields(values url.Values) Fields {
	out := make(Fields, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func invalidBody() error {
	v := &application.ValidationError{
		Message:     "request body must be a JSON object or form data",
		FieldErrors: map[string]string{"body": "request body must be a JSON object or form data"},
	}
	return v
}
