// Package database provides connection management, readiness probing,
// schema initialization with a direct or ledger strategy, superuser
// seeding, SQL data initialization, configuration types, logging, and
// health checks built on top of Bun.
package database
