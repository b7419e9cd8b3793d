package shoppinglist

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/testutil"
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newService(t *testing.T) (ShoppingListService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewShoppingListService(NewShoppingListRepository(db)), db
}

func createRecipe(t *testing.T, db *gorm.DB, author *entities.User, name string, lines map[*entities.Ingredient]int) *entities.Recipe {
	t.Helper()

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        name,
		Text:        "text",
		CookingTime: 10,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}

	for ingredient, amount := range lines {
		line := &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		if err := db.Create(line).Error; err != nil {
			t.Fatalf("failed to create line: %v", err)
		}
	}
	return recipe
}

func addToCart(t *testing.T, db *gorm.DB, user *entities.User, recipe *entities.Recipe) {
	t.Helper()
	cart := &entities.ShoppingCart{
		ID:       uuid.New(),
		UserID:   user.ID,
		RecipeID: recipe.ID,
	}
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("failed to add recipe to cart: %v", err)
	}
}

func TestGetShoppingListAggregates(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "alice@example.com", "alice")
	salt := testutil.CreateIngredient(t, db, "salt", "g")
	potato := testutil.CreateIngredient(t, db, "potato", "pcs")
	onion := testutil.CreateIngredient(t, db, "onion", "pcs")

	soup := createRecipe(t, db, user, "Soup", map[*entities.Ingredient]int{salt: 5, potato: 3})
	stew := createRecipe(t, db, user, "Stew", map[*entities.Ingredient]int{salt: 2, onion: 1})
	addToCart(t, db, user, soup)
	addToCart(t, db, user, stew)

	items, err := s.GetShoppingList(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("GetShoppingList failed: %v", err)
	}

	want := []domain.ShoppingListItem{
		{Name: "onion", Amount: 1, MeasurementUnit: "pcs"},
		{Name: "potato", Amount: 3, MeasurementUnit: "pcs"},
		{Name: "salt", Amount: 7, MeasurementUnit: "g"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(items), items)
	}
	for i, item := range items {
		if item != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], item)
		}
	}
}

func TestGetShoppingListScopedToUser(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice@example.com", "alice")
	bob := testutil.CreateUser(t, db, "bob@example.com", "bob")
	salt := testutil.CreateIngredient(t, db, "salt", "g")

	soup := createRecipe(t, db, alice, "Soup", map[*entities.Ingredient]int{salt: 5})
	addToCart(t, db, alice, soup)

	items, err := s.GetShoppingList(ctx, bob.ID.String())
	if err != nil {
		t.Fatalf("GetShoppingList failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("bob's cart is empty, got %+v", items)
	}
}

func TestDownloadShoppingList(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "alice@example.com", "alice")
	salt := testutil.CreateIngredient(t, db, "salt", "g")
	soup := createRecipe(t, db, user, "Soup", map[*entities.Ingredient]int{salt: 5})
	addToCart(t, db, user, soup)

	pdf, err := s.DownloadShoppingList(ctx, user.ID.String())
	if err != nil {
		t.Fatalf("DownloadShoppingList failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
}

func TestDownloadShoppingListEmptyCart(t *testing.T) {
	s, db := newService(t)

	user := testutil.CreateUser(t, db, "alice@example.com", "alice")

	pdf, err := s.DownloadShoppingList(context.Background(), user.ID.String())
	if err != nil {
		t.Fatalf("DownloadShoppingList failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("an empty cart must still produce a valid document")
	}
}

func TestShoppingListReflectsRecipeUpdate(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "alice@example.com", "alice")
	buyer := testutil.CreateUser(t, db, "bob@example.com", "bob")
	salt := testutil.CreateIngredient(t, db, "salt", "g")
	water := testutil.CreateIngredient(t, db, "water", "ml")

	soup := createRecipe(t, db, author, "Soup", map[*entities.Ingredient]int{salt: 5, water: 200})
	addToCart(t, db, buyer, soup)

	before, err := s.GetShoppingList(ctx, buyer.ID.String())
	if err != nil {
		t.Fatalf("GetShoppingList failed: %v", err)
	}
	if len(before) != 2 {
		t.Fatalf("expected 2 rows before update, got %+v", before)
	}

	// Replace the recipe's lines wholesale, as a recipe update does.
	if err := db.Where("recipe_id = ?", soup.ID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
		t.Fatalf("failed to delete lines: %v", err)
	}
	line := &entities.RecipeIngredient{
		ID:           uuid.New(),
		RecipeID:     soup.ID,
		IngredientID: salt.ID,
		Amount:       10,
	}
	if err := db.Create(line).Error; err != nil {
		t.Fatalf("failed to insert line: %v", err)
	}

	after, err := s.GetShoppingList(ctx, buyer.ID.String())
	if err != nil {
		t.Fatalf("GetShoppingList failed: %v", err)
	}
	want := []domain.ShoppingListItem{{Name: "salt", Amount: 10, MeasurementUnit: "g"}}
	if len(after) != 1 || after[0] != want[0] {
		t.Fatalf("expected only salt:10 after update, got %+v", after)
	}
}
