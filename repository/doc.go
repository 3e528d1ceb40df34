// Package repository implements a generic Bun-backed data access layer for
// the platform entities: loading, filtering, pagination, upserts, and the
// same operations inside caller-owned transactions.
package repository
