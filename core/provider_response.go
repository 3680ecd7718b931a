package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ProviderData is a decoded provider JSON object. Numbers are kept as
// json.Number.
type ProviderData map[string]any

func (d ProviderData) String(key string) string {
	if d == nil {
		return ""
	}
	switch typed := d[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

func (d ProviderData) Decimal(key string) (decimal.Decimal, bool) {
	text := d.String(key)
	if text == "" {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

func (d ProviderData) Int64(key string) (int64, bool) {
	text := d.String(key)
	if text == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (d ProviderData) Bool(key string) (bool, bool) {
	if d == nil {
		return false, false
	}
	switch typed := d[key].(type) {
	case bool:
		return typed, true
	case string:
		value, err := strconv.ParseBool(strings.TrimSpace(typed))
		return value, err == nil
	default:
		return false, false
	}
}

// Objects returns the entries of an array field that are objects.
func (d ProviderData) Objects(key string) []ProviderData {
	if d == nil {
		return nil
	}
	return objectsOf(d[key])
}

// Raw re-encodes a field as JSON, or returns nil when absent.
func (d ProviderData) Raw(key string) json.RawMessage {
	if d == nil || d[key] == nil {
		return nil
	}
	encoded, err := json.Marshal(d[key])
	if err != nil {
		return nil
	}
	return encoded
}

// ProviderResult is the decoded response envelope of a successful call.
type ProviderResult struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"msg,omitempty"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

// Object returns Data when it is a JSON object.
func (r ProviderResult) Object() ProviderData {
	switch typed := r.Data.(type) {
	case ProviderData:
		return typed
	case map[string]any:
		return ProviderData(typed)
	default:
		return nil
	}
}

// Items returns list entries, either from a top level array or from the
// common list/items/records wrappers.
func (r ProviderResult) Items() []ProviderData {
	if items := objectsOf(r.Data); items != nil {
		return items
	}
	object := r.Object()
	for _, key := range []string{"list", "items", "records", "data"} {
		if items := object.Objects(key); items != nil {
			return items
		}
	}
	return nil
}

type providerEnvelope struct {
	Code    json.RawMessage `json:"code"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

var successCodes = map[string]bool{"": true, "200": true, "200000": true, "0": true, "SUCCESS": true}

// decodeProviderResponse parses the response envelope. ok is false when the
// provider reported a failure.
func decodeProviderResponse(body []byte) (ProviderResult, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ProviderResult{}, false, fmt.Errorf("core: provider response body is empty")
	}
	var envelope providerEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return ProviderResult{}, false, fmt.Errorf("core: decode provider response: %w", err)
	}

	result := ProviderResult{
		Code:    rawScalar(envelope.Code),
		Message: firstNonEmpty(envelope.Msg, envelope.Message),
	}
	if len(bytes.TrimSpace(envelope.Data)) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(envelope.Data))
		decoder.UseNumber()
		var data any
		if err := decoder.Decode(&data); err != nil {
			return ProviderResult{}, false, fmt.Errorf("core: decode provider data: %w", err)
		}
		if object, ok := data.(map[string]any); ok {
			data = ProviderData(object)
		}
		result.Data = data
	}

	if envelope.Success != nil {
		result.Success = *envelope.Success
	} else {
		result.Success = successCodes[strings.ToUpper(result.Code)]
	}
	return result, result.Success, nil
}

func rawScalar(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return strings.TrimSpace(text)
		}
	}
	return string(trimmed)
}

func objectsOf(value any) []ProviderData {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]ProviderData, 0, len(list))
	for _, entry := range list {
		switch typed := entry.(type) {
		case map[string]any:
			out = append(out, ProviderData(typed))
		case ProviderData:
			out = append(out, typed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func marshalProviderData(data ProviderData) (json.RawMessage, error) {
	if data == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(map[string]any(data))
	if err != nil {
		return nil, err
	}
	return encoded, nil
}
