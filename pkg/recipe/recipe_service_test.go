package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/testutil"
	"Foodgram-Backend/pkg/catalog"
	"Foodgram-Backend/pkg/subscription"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeS3 struct{}

func (f *fakeS3) UploadFile(_ context.Context, key string, _ []byte, _ string, _ ...string) (string, error) {
	return "https://example.test/" + key, nil
}

func (f *fakeS3) DeleteFile(_ context.Context, _ string) error {
	return nil
}

type fixture struct {
	service     RecipeService
	db          *gorm.DB
	author      *entities.User
	tag         *entities.Tag
	ingredients []*entities.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	service := NewRecipeService(
		NewRecipeRepository(db),
		catalog.NewCatalogRepository(db),
		subscription.NewSubscriptionRepository(db),
		&fakeS3{},
	)

	return &fixture{
		service: service,
		db:      db,
		author:  testutil.CreateUser(t, db, "author@example.com", "author"),
		tag:     testutil.CreateTag(t, db, "Dinner", "dinner", domain.TagColorPurple),
		ingredients: []*entities.Ingredient{
			testutil.CreateIngredient(t, db, "salt", "g"),
			testutil.CreateIngredient(t, db, "potato", "pcs"),
		},
	}
}

func (f *fixture) request(name string) domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		Name:        name,
		Text:        "cook it well",
		CookingTime: 30,
		Ingredients: []domain.IngredientLineRequest{
			{ID: f.ingredients[0].ID.String(), Amount: 5},
			{ID: f.ingredients[1].ID.String(), Amount: 3},
		},
		Tags: []string{f.tag.ID.String()},
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.service.CreateRecipe(ctx, f.request("Soup"), f.author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if res.Name != "Soup" || res.Author.Username != "author" {
		t.Fatalf("unexpected recipe: %+v", res)
	}
	if len(res.Ingredients) != 2 || len(res.Tags) != 1 {
		t.Fatalf("expected 2 ingredient lines and 1 tag, got %d and %d", len(res.Ingredients), len(res.Tags))
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authorID := f.author.ID.String()

	cases := []struct {
		name    string
		mutate  func(*domain.CreateRecipeRequest)
		wantErr error
	}{
		{
			name:    "no tags",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Tags = nil },
			wantErr: domain.ErrMissingTags,
		},
		{
			name: "duplicate tags",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Tags = []string{f.tag.ID.String(), f.tag.ID.String()}
			},
			wantErr: domain.ErrDuplicateTags,
		},
		{
			name:    "no ingredients",
			mutate:  func(r *domain.CreateRecipeRequest) { r.Ingredients = nil },
			wantErr: domain.ErrMissingIngredients,
		},
		{
			name: "duplicate ingredients",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Ingredients = []domain.IngredientLineRequest{
					{ID: f.ingredients[0].ID.String(), Amount: 5},
					{ID: f.ingredients[0].ID.String(), Amount: 3},
				}
			},
			wantErr: domain.ErrDuplicateIngredients,
		},
		{
			name: "zero amount",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Ingredients[0].Amount = 0
			},
			wantErr: domain.ErrAmountNotPositive,
		},
		{
			name: "unknown tag",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Tags = []string{uuid.NewString()}
			},
			wantErr: domain.ErrTagNotFound,
		},
		{
			name: "unknown ingredient",
			mutate: func(r *domain.CreateRecipeRequest) {
				r.Ingredients[0].ID = uuid.NewString()
			},
			wantErr: domain.ErrIngredientNotFound,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request("Soup")
			tt.mutate(&req)
			if _, err := f.service.CreateRecipe(ctx, req, authorID); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	recipes, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if count != 0 || len(recipes) != 0 {
		t.Fatalf("rejected requests must leave nothing behind, got %d recipes", count)
	}
}

func TestCreateRecipeDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authorID := f.author.ID.String()

	first, err := f.service.CreateRecipe(ctx, f.request("Soup"), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := f.service.CreateRecipe(ctx, f.request("Soup"), authorID); !errors.Is(err, domain.ErrDuplicateRecipeName) {
		t.Fatalf("expected ErrDuplicateRecipeName, got %v", err)
	}

	// The first recipe survives the rejected duplicate.
	got, err := f.service.GetRecipe(ctx, first.ID, "")
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if got.Name != "Soup" || len(got.Ingredients) != 2 {
		t.Fatalf("first recipe was damaged: %+v", got)
	}

	// A different author may reuse the name.
	other := testutil.CreateUser(t, f.db, "other@example.com", "other")
	if _, err := f.service.CreateRecipe(ctx, f.request("Soup"), other.ID.String()); err != nil {
		t.Fatalf("name must be free for another author: %v", err)
	}
}

func TestUpdateRecipeReplacesChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authorID := f.author.ID.String()

	created, err := f.service.CreateRecipe(ctx, f.request("Soup"), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	onion := testutil.CreateIngredient(t, f.db, "onion", "pcs")
	newTag := testutil.CreateTag(t, f.db, "Lunch", "lunch", domain.TagColorGreen)

	updated, err := f.service.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        "Onion soup",
		Text:        "new text",
		CookingTime: 45,
		Ingredients: []domain.IngredientLineRequest{
			{ID: onion.ID.String(), Amount: 2},
		},
		Tags: []string{newTag.ID.String()},
	}, authorID)
	if err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}

	if updated.Name != "Onion soup" || updated.CookingTime != 45 {
		t.Fatalf("scalar fields not updated: %+v", updated)
	}
	if len(updated.Ingredients) != 1 || updated.Ingredients[0].Name != "onion" {
		t.Fatalf("ingredient lines must be fully replaced: %+v", updated.Ingredients)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Slug != "lunch" {
		t.Fatalf("tag links must be fully replaced: %+v", updated.Tags)
	}

	var lineCount int64
	if err := f.db.Model(&entities.RecipeIngredient{}).Count(&lineCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if lineCount != 1 {
		t.Fatalf("stale ingredient lines left behind: %d", lineCount)
	}
}

func TestUpdateRecipeOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.request("Soup"), f.author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	other := testutil.CreateUser(t, f.db, "other@example.com", "other")

	_, err = f.service.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        "Stolen",
		Text:        "x",
		CookingTime: 5,
		Ingredients: []domain.IngredientLineRequest{{ID: f.ingredients[0].ID.String(), Amount: 1}},
		Tags:        []string{f.tag.ID.String()},
	}, other.ID.String())
	if !errors.Is(err, domain.ErrNotRecipeOwner) {
		t.Fatalf("expected ErrNotRecipeOwner, got %v", err)
	}

	if err := f.service.DeleteRecipe(ctx, created.ID, other.ID.String()); !errors.Is(err, domain.ErrNotRecipeOwner) {
		t.Fatalf("expected ErrNotRecipeOwner on delete, got %v", err)
	}
}

func TestDeleteRecipeCleansMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authorID := f.author.ID.String()

	created, err := f.service.CreateRecipe(ctx, f.request("Soup"), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := f.service.AddFavorite(ctx, created.ID, authorID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if _, err := f.service.AddToCart(ctx, created.ID, authorID); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if err := f.service.DeleteRecipe(ctx, created.ID, authorID); err != nil {
		t.Fatalf("DeleteRecipe failed: %v", err)
	}

	for name, model := range map[string]interface{}{
		"favorites": &entities.Favorite{},
		"carts":     &entities.ShoppingCart{},
		"lines":     &entities.RecipeIngredient{},
		"tag links": &entities.RecipeTag{},
		"recipes":   &entities.Recipe{},
	} {
		var count int64
		if err := f.db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s failed: %v", name, err)
		}
		if count != 0 {
			t.Fatalf("%s left behind after delete: %d", name, count)
		}
	}
}

func TestFavoriteSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.author.ID.String()

	created, err := f.service.CreateRecipe(ctx, f.request("Soup"), userID)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := f.service.AddFavorite(ctx, uuid.NewString(), userID); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}

	short, err := f.service.AddFavorite(ctx, created.ID, userID)
	if err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}
	if short.ID != created.ID || short.Name != "Soup" {
		t.Fatalf("unexpected short projection: %+v", short)
	}

	if _, err := f.service.AddFavorite(ctx, created.ID, userID); !errors.Is(err, domain.ErrAlreadyFavorited) {
		t.Fatalf("expected ErrAlreadyFavorited, got %v", err)
	}

	got, err := f.service.GetRecipe(ctx, created.ID, userID)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if !got.IsFavorited {
		t.Fatal("is_favorited must be true for the favoriting viewer")
	}

	anonymous, err := f.service.GetRecipe(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if anonymous.IsFavorited || anonymous.IsInShoppingCart {
		t.Fatal("anonymous viewer must see presence flags false")
	}

	if err := f.service.RemoveFavorite(ctx, created.ID, userID); err != nil {
		t.Fatalf("RemoveFavorite failed: %v", err)
	}
	if err := f.service.RemoveFavorite(ctx, created.ID, userID); !errors.Is(err, domain.ErrNotFavorited) {
		t.Fatalf("expected ErrNotFavorited, got %v", err)
	}
}

func TestCartSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.author.ID.String()

	created, err := f.service.CreateRecipe(ctx, f.request("Soup"), userID)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if _, err := f.service.AddToCart(ctx, created.ID, userID); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if _, err := f.service.AddToCart(ctx, created.ID, userID); !errors.Is(err, domain.ErrAlreadyInCart) {
		t.Fatalf("expected ErrAlreadyInCart, got %v", err)
	}

	got, err := f.service.GetRecipe(ctx, created.ID, userID)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if !got.IsInShoppingCart {
		t.Fatal("is_in_shopping_cart must be true for the cart owner")
	}

	if err := f.service.RemoveFromCart(ctx, created.ID, userID); err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}
	if err := f.service.RemoveFromCart(ctx, created.ID, userID); !errors.Is(err, domain.ErrNotInCart) {
		t.Fatalf("expected ErrNotInCart, got %v", err)
	}
}

type recordingS3 struct {
	uploaded []string
	deleted  []string
}

func (f *recordingS3) UploadFile(_ context.Context, key string, _ []byte, _ string, _ ...string) (string, error) {
	f.uploaded = append(f.uploaded, key)
	return "https://example.test/" + key, nil
}

func (f *recordingS3) DeleteFile(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type failingCreateRepository struct {
	RecipeRepository
}

func (r *failingCreateRepository) CreateRecipe(context.Context, *entities.Recipe, []*entities.RecipeIngredient, []*entities.RecipeTag) error {
	return gorm.ErrDuplicatedKey
}

func TestCreateRecipeFailureRemovesUploadedImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s3 := &recordingS3{}
	service := NewRecipeService(
		&failingCreateRepository{RecipeRepository: NewRecipeRepository(f.db)},
		catalog.NewCatalogRepository(f.db),
		subscription.NewSubscriptionRepository(f.db),
		s3,
	)

	req := f.request("Soup")
	req.Image = "data:image/png;base64,aGVsbG8="

	if _, err := service.CreateRecipe(ctx, req, f.author.ID.String()); err == nil {
		t.Fatal("expected the create to fail")
	}

	if len(s3.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(s3.uploaded))
	}
	if len(s3.deleted) != 1 || s3.deleted[0] != s3.uploaded[0] {
		t.Fatalf("uploaded object must be removed after the failed insert, uploaded=%v deleted=%v", s3.uploaded, s3.deleted)
	}
}

func TestGetRecipesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	authorID := f.author.ID.String()

	other := testutil.CreateUser(t, f.db, "other@example.com", "other")
	lunch := testutil.CreateTag(t, f.db, "Lunch", "lunch", domain.TagColorGreen)

	soup, err := f.service.CreateRecipe(ctx, f.request("Soup"), authorID)
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	stewReq := f.request("Stew")
	stewReq.Tags = []string{lunch.ID.String()}
	if _, err := f.service.CreateRecipe(ctx, stewReq, other.ID.String()); err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	byTag, _, err := f.service.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"dinner"}}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if len(byTag) != 1 || byTag[0].Name != "Soup" {
		t.Fatalf("tag filter failed: %+v", byTag)
	}

	byAuthor, _, err := f.service.GetRecipes(ctx, domain.RecipeFilter{AuthorID: other.ID.String()}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].Name != "Stew" {
		t.Fatalf("author filter failed: %+v", byAuthor)
	}

	if _, err := f.service.AddFavorite(ctx, soup.ID, other.ID.String()); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	favorited, _, err := f.service.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, 1, 20, other.ID.String())
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if len(favorited) != 1 || favorited[0].Name != "Soup" {
		t.Fatalf("favorited filter failed: %+v", favorited)
	}

	// The same flag is a no-op for anonymous viewers.
	all, _, err := f.service.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("anonymous listing must ignore viewer flags, got %d", len(all))
	}
}

func TestCreateRecipeWithImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("Soup")
	// 1x1 px payload; content does not matter to the fake uploader.
	req.Image = "data:image/png;base64,aGVsbG8="

	res, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if res.ImageURL == "" {
		t.Fatal("expected an uploaded image url")
	}

	req2 := f.request("Broken")
	req2.Image = "data:image/png;base64,%%%notbase64"
	if _, err := f.service.CreateRecipe(ctx, req2, f.author.ID.String()); !errors.Is(err, domain.ErrInvalidImagePayload) {
		t.Fatalf("expected ErrInvalidImagePayload, got %v", err)
	}
}
