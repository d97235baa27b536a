package history

import (
	"strings"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func WithStatuses(statuses ...domain.TransactionStatus) func(*gorm.DB) *gorm.DB {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("t.status IN ?", values)
	}
}

// WithSearch matches the code case-insensitively or the normalized plate.
func WithSearch(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		code := "%" + escapeLike(strings.ToUpper(term)) + "%"
		plate := "%" + escapeLike(domain.NormalizePlate(term)) + "%"
		return db.Where(`(UPPER(t.code) LIKE ? ESCAPE '\' OR v.plate_number LIKE ? ESCAPE '\')`, code, plate)
	}
}

// WithEntryBetween keeps rows with from <= entry_time < to; zero bounds are open.
func WithEntryBetween(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where("t.entry_time >= ?", from.UTC())
		}
		if !to.IsZero() {
			db = db.Where("t.entry_time < ?", to.UTC())
		}
		return db
	}
}

func WithArea(areaID uuid.NullUUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !areaID.Valid {
			return db
		}
		return db.Where("t.area_id = ?", areaID.UUID)
	}
}

// Paginate clamps page and perPage and returns the values it applied.
func Paginate(page, perPage int) (func(*gorm.DB) *gorm.DB, int, int) {
	page = max(page, 1)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, maxPerPage)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}, page, perPage
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
