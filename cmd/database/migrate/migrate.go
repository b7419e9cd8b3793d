package migration

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	tables := []interface{}{
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.RecipeTag{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	}
	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			log.Fatalf("Error migrating database: %v", err)
			return err
		}
	}

	// Self-subscriptions are rejected in the service layer as well; the
	// constraint keeps out writes that bypass it.
	db.Exec("ALTER TABLE subscriptions DROP CONSTRAINT IF EXISTS chk_no_self_subscription;")
	db.Exec("ALTER TABLE subscriptions ADD CONSTRAINT chk_no_self_subscription CHECK (subscriber_id <> subscribed_to_id);")

	fmt.Println("Database migration complete")
	return nil
}

// SeedCatalog inserts the default tag set. Seeding is an explicit step,
// never a side effect of serving requests, and is safe to run twice.
func SeedCatalog(db *gorm.DB) error {
	tags := []entities.Tag{
		{ID: uuid.New(), Name: "Breakfast", Slug: "breakfast", Color: domain.TagColorOrange},
		{ID: uuid.New(), Name: "Lunch", Slug: "lunch", Color: domain.TagColorGreen},
		{ID: uuid.New(), Name: "Dinner", Slug: "dinner", Color: domain.TagColorPurple},
	}

	for _, tag := range tags {
		var count int64
		if err := db.Model(&entities.Tag{}).Where("slug = ?", tag.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&tag).Error; err != nil {
			return err
		}
	}

	fmt.Println("Catalog seed complete")
	return nil
}
