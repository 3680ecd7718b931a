// Package canonical builds the deterministic "key=value&key=value" strings
// that KuCoin Pay signs and verifies.
//
// Every operation owns a fixed field order declared in Orders. Build walks
// that list, drops absent or empty values and joins the rest verbatim (no URL
// encoding). Callers validate required fields before reaching this package.
package canonical
