package shoppinglist

import (
	"Foodgram-Backend/domain"
	"context"

	"gorm.io/gorm"
)

type (
	ShoppingListRepository interface {
		GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
	}

	shoppingListRepository struct {
		db *gorm.DB
	}
)

func NewShoppingListRepository(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

// GetShoppingList aggregates the ingredient lines of every recipe in the
// user's cart. Amounts for the same ingredient are summed into one row,
// ordered by ingredient name.
func (r *shoppingListRepository) GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	var items []domain.ShoppingListItem

	err := r.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, SUM(recipe_ingredients.amount) AS amount, ingredients.measurement_unit AS measurement_unit").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name asc").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
