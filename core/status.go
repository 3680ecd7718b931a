package core

import "strings"

// StatusCatalog turns provider statuses and error codes into readable text.
type StatusCatalog struct {
	Order  map[string]string
	Refund map[string]string
	Errors map[string]string
}

func DefaultStatusCatalog() StatusCatalog {
	return StatusCatalog{
		Order: map[string]string{
			OrderStatusCreated:          "Transaction created, awaiting payment",
			OrderStatusCancelled:        "Transaction cancelled",
			OrderStatusFailed:           "Payment failed",
			OrderStatusProcessing:       "Payment is being processed",
			OrderStatusUserPayCompleted: "User payment completed, can ship now",
			OrderStatusSucceeded:        "Transaction completed",
		},
		Refund: map[string]string{
			RefundStatusProcessing: "Refund is being processed",
			RefundStatusSucceeded:  "Refund successful",
			RefundStatusFailed:     "Refund failed",
			RefundStatusPart:       "Partial refund initiated",
			RefundStatusFull:       "Full refund completed",
		},
		Errors: map[string]string{},
	}
}

// WithErrorMessages returns a copy of the catalog with extra error codes.
func (c StatusCatalog) WithErrorMessages(messages map[string]string) StatusCatalog {
	merged := make(map[string]string, len(c.Errors)+len(messages))
	for code, message := range c.Errors {
		merged[code] = message
	}
	for code, message := range messages {
		code = strings.TrimSpace(code)
		if code == "" || strings.TrimSpace(message) == "" {
			continue
		}
		merged[code] = message
	}
	c.Errors = merged
	return c
}

func (c StatusCatalog) OrderMessage(status string) (string, bool) {
	message, ok := c.Order[strings.TrimSpace(status)]
	return message, ok
}

func (c StatusCatalog) RefundMessage(status string) (string, bool) {
	message, ok := c.Refund[strings.TrimSpace(status)]
	return message, ok
}

func (c StatusCatalog) ErrorMessage(code string) (string, bool) {
	message, ok := c.Errors[strings.TrimSpace(code)]
	return message, ok
}

// annotate adds statusMessage and refundStatusMessage to a provider data
// object when the statuses are known.
func (c StatusCatalog) annotate(data ProviderData) {
	if data == nil {
		return
	}
	if message, ok := c.OrderMessage(data.String("status")); ok {
		data["statusMessage"] = message
	}
	if message, ok := c.RefundMessage(data.String("refundStatus")); ok {
		data["refundStatusMessage"] = message
	}
}
