package store

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern wraps q for a substring match with LIKE wildcards taken literally.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// ForUser returns a GORM scope that filters by a telegram id column.
func ForUser(column string, telegramID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", telegramID)
	}
}

// WithStatus filters by status; an empty status matches every row.
func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

// Newest orders by creation time descending and applies limit when positive.
func Newest(limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order("created_at DESC")
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// Containing matches rows whose column contains q, case-insensitively.
func Containing(column, q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+` ILIKE ? ESCAPE '\'`, likePattern(q))
	}
}
