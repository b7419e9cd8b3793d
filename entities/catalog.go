// File: entities/catalog.go
package entities

import (
	"github.com/google/uuid"
)

// Ingredient is admin-curated reference data; recipes point at it through
// RecipeIngredient line items.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"uniqueIndex;size:150" json:"name"`
	MeasurementUnit string    `gorm:"size:150" json:"measurement_unit"`

	Timestamp
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name  string    `gorm:"uniqueIndex;size:200" json:"name"`
	Slug  string    `gorm:"uniqueIndex;size:200" json:"slug"`
	Color string    `gorm:"uniqueIndex;size:7" json:"color"`

	Timestamp
}
