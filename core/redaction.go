package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactSensitiveMap copies metadata, replacing values whose keys name key
// material, signatures or payer details.

func RedactSensitiveMap(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return redactSensitiveMap(metadata)
}

func redactSensitiveMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactSensitiveValue(value)
	}
	return target
}

func redactSensitiveValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactSensitiveMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactSensitiveValue(typed[i])
		}
		return out
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isTraceabilityKey(key) {
		return false
	}
	sensitiveTokens := []string{
		"secret",
		"api_key",
		"apikey",
		"private_key",
		"privatekey",
		"pay-api-sign",
		"signature",
		"payer_detail",
		"payerdetail",
		"aes_key",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isTraceabilityKey(key string) bool {
	switch key {
	case "request_id",
		"pay_order_id",
		"refund_id",
		"batch_no",
		"detail_id",
		"delivery_key",
		"order_type",
		"trace_id":
		return true
	default:
		return false
	}
}
