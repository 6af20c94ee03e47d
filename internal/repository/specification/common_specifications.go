package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}

// Latest narrows to the single most recent row.
func Latest() []Specification {
	return []Specification{
		OrderBy{Field: "created_at", Desc: true},
		Pagination{Limit: 1},
	}
}
