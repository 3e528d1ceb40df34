// Package schema declares the platform tables as explicit descriptors and
// renders dialect-specific DDL from them. The registry is the single source
// of truth for table creation, whether applied directly or through the
// migration ledger.
package schema
