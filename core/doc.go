// Package core holds the merchant service: outbound provider operations,
// the provider envelope, local record contracts, and error mapping.
// Adapters for transport, storage, and webhooks depend on this package;
// core depends only on canonical and the security sentinels.
package core
