// Package webhooks verifies and routes KuCoin Pay notifications.
//
// A delivery moves RECEIVED -> VERIFIED -> CLASSIFIED -> DISPATCHED and ends
// acknowledged or rejected. The delivery ledger records reservations as
// pending -> processed|failed; failed deliveries are reserved again when the
// counterparty redelivers.
package webhooks
