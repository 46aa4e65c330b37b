// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Batched lookups issue a single `WHERE id IN (...)` query per call.
package gorm
