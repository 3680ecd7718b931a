package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// identifiedRecord is implemented by every record with a string uuid key.
// Both methods tolerate nil receivers.
type identifiedRecord interface {
	recordID() string
	setRecordID(id string)
}

func recordHandlers[T identifiedRecord](newRecord func() T) repository.ModelHandlers[T] {
	return repository.ModelHandlers[T]{
		NewRecord: newRecord,
		GetID: func(record T) uuid.UUID {
			return parseUUID(record.recordID())
		},
		SetID: func(record T, id uuid.UUID) {
			record.setRecordID(id.String())
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record T) string {
			return strings.TrimSpace(record.recordID())
		},
	}
}

func orderHandlers() repository.ModelHandlers[*orderRecord] {
	return recordHandlers(func() *orderRecord { return &orderRecord{} })
}

func refundHandlers() repository.ModelHandlers[*refundRecord] {
	return recordHandlers(func() *refundRecord { return &refundRecord{} })
}

func payoutHandlers() repository.ModelHandlers[*payoutRecord] {
	return recordHandlers(func() *payoutRecord { return &payoutRecord{} })
}

func payoutDetailHandlers() repository.ModelHandlers[*payoutDetailRecord] {
	return recordHandlers(func() *payoutDetailRecord { return &payoutDetailRecord{} })
}

func onchainOrderHandlers() repository.ModelHandlers[*onchainOrderRecord] {
	return recordHandlers(func() *onchainOrderRecord { return &onchainOrderRecord{} })
}

func reportHandlers() repository.ModelHandlers[*reportRecord] {
	return recordHandlers(func() *reportRecord { return &reportRecord{} })
}

func webhookDeliveryHandlers() repository.ModelHandlers[*webhookDeliveryRecord] {
	return recordHandlers(func() *webhookDeliveryRecord { return &webhookDeliveryRecord{} })
}

func (r *orderRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *orderRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func (r *refundRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *refundRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func (r *payoutRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *payoutRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func (r *payoutDetailRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *payoutDetailRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func (r *onchainOrderRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *onchainOrderRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func (r *reportRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *reportRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func (r *webhookDeliveryRecord) recordID() string {
	if r == nil {
		return ""
	}
	return r.ID
}

func (r *webhookDeliveryRecord) setRecordID(id string) {
	if r != nil {
		r.ID = id
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
