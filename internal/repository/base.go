// Package repository is the record store adapter: optimistic transactions
// over students, supervisors, partnership requests and applications, plus
// the read-side queries that run outside a transaction.
package repository

import (
	"capstone/internal/database"

	"gorm.io/gorm"
)

// readDB returns the read replica when one is connected, otherwise primary.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// Page limits a list query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
