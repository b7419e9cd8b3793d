package subscription

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/testutil"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newService(t *testing.T) (SubscriptionService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewSubscriptionService(NewSubscriptionRepository(db)), db
}

func TestSubscribeSelfRejected(t *testing.T) {
	s, db := newService(t)

	alice := testutil.CreateUser(t, db, "alice@example.com", "alice")

	_, err := s.Subscribe(context.Background(), alice.ID.String(), alice.ID.String())
	if !errors.Is(err, domain.ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
}

func TestSubscribeUnknownTarget(t *testing.T) {
	s, db := newService(t)

	alice := testutil.CreateUser(t, db, "alice@example.com", "alice")

	_, err := s.Subscribe(context.Background(), alice.ID.String(), uuid.NewString())
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice@example.com", "alice")
	bob := testutil.CreateUser(t, db, "bob@example.com", "bob")

	res, err := s.Subscribe(ctx, alice.ID.String(), bob.ID.String())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if res.Username != "bob" || !res.IsSubscribed {
		t.Fatalf("unexpected subscribe response: %+v", res)
	}

	if _, err := s.Subscribe(ctx, alice.ID.String(), bob.ID.String()); !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}

	if err := s.Unsubscribe(ctx, alice.ID.String(), bob.ID.String()); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	if err := s.Unsubscribe(ctx, alice.ID.String(), bob.ID.String()); !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestGetSubscriptionsRecipesLimit(t *testing.T) {
	s, db := newService(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice@example.com", "alice")
	bob := testutil.CreateUser(t, db, "bob@example.com", "bob")

	for _, name := range []string{"Soup", "Stew", "Salad"} {
		recipe := &entities.Recipe{
			ID:          uuid.New(),
			AuthorID:    bob.ID,
			Name:        name,
			Text:        "some text",
			CookingTime: 10,
		}
		if err := db.Create(recipe).Error; err != nil {
			t.Fatalf("failed to create recipe %s: %v", name, err)
		}
	}

	if _, err := s.Subscribe(ctx, alice.ID.String(), bob.ID.String()); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	subscriptions, count, err := s.GetSubscriptions(ctx, alice.ID.String(), 1, 20, 2)
	if err != nil {
		t.Fatalf("GetSubscriptions failed: %v", err)
	}
	if count != 1 || len(subscriptions) != 1 {
		t.Fatalf("expected one subscription, got count=%d len=%d", count, len(subscriptions))
	}

	got := subscriptions[0]
	if got.Username != "bob" {
		t.Fatalf("unexpected followed user: %+v", got)
	}
	if got.RecipesCount != 3 {
		t.Fatalf("expected recipes_count 3, got %d", got.RecipesCount)
	}
	if len(got.Recipes) != 2 {
		t.Fatalf("recipes_limit 2 must cap the preview, got %d", len(got.Recipes))
	}
}
