package testutil

import (
	"Foodgram-Backend/entities"
	"testing"

	"github.com/google/uuid"
)

// The schema must migrate cleanly on the test driver; ids are assigned
// by the caller, never by a database column default.
func TestNewTestDBMigratesSchema(t *testing.T) {
	db := NewTestDB(t)

	user := CreateUser(t, db, "alice@example.com", "alice")
	if user.ID == uuid.Nil {
		t.Fatal("expected an explicitly assigned user id")
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    user.ID,
		Name:        "Soup",
		Text:        "text",
		CookingTime: 10,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to insert recipe: %v", err)
	}

	var got entities.Recipe
	if err := db.Where("id = ?", recipe.ID).First(&got).Error; err != nil {
		t.Fatalf("failed to read recipe back: %v", err)
	}
	if got.Name != "Soup" || got.AuthorID != user.ID {
		t.Fatalf("unexpected row: %+v", got)
	}
}
