package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/catalog"
	"Foodgram-Backend/pkg/subscription"
	"Foodgram-Backend/pkg/user"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error)

		AddFavorite(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error)
		RemoveFromCart(ctx context.Context, recipeID, userID string) error
	}

	recipeService struct {
		recipeRepository       RecipeRepository
		catalogRepository      catalog.CatalogRepository
		subscriptionRepository subscription.SubscriptionRepository
		s3                     storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	subscriptionRepository subscription.SubscriptionRepository,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:       recipeRepository,
		catalogRepository:      catalogRepository,
		subscriptionRepository: subscriptionRepository,
		s3:                     s3,
	}
}

// validateComposition enforces the pre-write rules of the mutation
// protocol: tags and ingredient lines must be non-empty, free of
// duplicates, every amount positive, and every referenced id must exist
// in the catalog. Nothing is written before this passes.
func (s *recipeService) validateComposition(ctx context.Context, tagIDs []string, lines []domain.IngredientLineRequest) error {
	if len(tagIDs) == 0 {
		return domain.ErrMissingTags
	}
	seenTags := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seenTags[id]; ok {
			return domain.ErrDuplicateTags
		}
		seenTags[id] = struct{}{}
	}

	if len(lines) == 0 {
		return domain.ErrMissingIngredients
	}
	seenIngredients := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.Amount <= 0 {
			return domain.ErrAmountNotPositive
		}
		if _, ok := seenIngredients[line.ID]; ok {
			return domain.ErrDuplicateIngredients
		}
		seenIngredients[line.ID] = struct{}{}
	}

	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return domain.ErrTagNotFound
	}

	ingredientIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		ingredientIDs = append(ingredientIDs, line.ID)
	}
	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return err
	}
	if len(ingredients) != len(ingredientIDs) {
		return domain.ErrIngredientNotFound
	}

	return nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	if err := s.validateComposition(ctx, req.Tags, req.Ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	exists, err := s.recipeRepository.RecipeNameExists(ctx, authorID, req.Name, "")
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if exists {
		return domain.RecipeResponse{}, domain.ErrDuplicateRecipeName
	}

	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipeID := uuid.New()
	imageURL, err := s.uploadImage(ctx, recipeID.String(), req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          recipeID,
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	lines, tags, err := buildChildren(recipeID, req.Ingredients, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, lines, tags); err != nil {
		// The image was stored before the insert; without this the failed
		// create leaves an orphaned object behind.
		if imageURL != "" {
			if delErr := s.s3.DeleteFile(ctx, fmt.Sprintf("recipes/%s", recipeID)); delErr != nil {
				log.Printf("failed to delete image for recipe %s: %v", recipeID, delErr)
			}
		}
		return domain.RecipeResponse{}, s.translateConflict(ctx, authorID, req.Name, "", err)
	}

	return s.GetRecipe(ctx, recipeID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	if existing.AuthorID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeOwner
	}

	if err := s.validateComposition(ctx, req.Tags, req.Ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	exists, err := s.recipeRepository.RecipeNameExists(ctx, userID, req.Name, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if exists {
		return domain.RecipeResponse{}, domain.ErrDuplicateRecipeName
	}

	imageURL := existing.ImageURL
	if req.Image != "" {
		imageURL, err = s.uploadImage(ctx, recipeID, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	recipe := &entities.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	lines, tags, err := buildChildren(existing.ID, req.Ingredients, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, lines, tags); err != nil {
		return domain.RecipeResponse{}, s.translateConflict(ctx, userID, req.Name, recipeID, err)
	}

	return s.GetRecipe(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	existing, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if existing.AuthorID.String() != userID {
		return domain.ErrNotRecipeOwner
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, recipeID); err != nil {
		return err
	}

	// Stored image cleanup is best effort, the recipe is already gone.
	if existing.ImageURL != "" {
		if err := s.s3.DeleteFile(ctx, fmt.Sprintf("recipes/%s", recipeID)); err != nil {
			log.Printf("failed to delete image for recipe %s: %v", recipeID, err)
		}
	}
	return nil
}

func (s *recipeService) GetRecipe(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.buildResponse(ctx, recipe, viewerID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error) {
	query := RecipeQuery{
		TagSlugs: filter.TagSlugs,
		AuthorID: filter.AuthorID,
	}
	// Viewer-dependent flags only narrow the listing for authenticated
	// viewers; anonymous requests simply ignore them.
	if viewerID != "" {
		if filter.IsFavorited {
			query.FavoritedBy = viewerID
		}
		if filter.IsInShoppingCart {
			query.InCartOf = viewerID
		}
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, query, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res, err := s.buildResponse(ctx, recipe, viewerID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, res)
	}

	return result, count, nil
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortRecipeResponse{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	if favorited {
		return domain.ShortRecipeResponse{}, domain.ErrAlreadyFavorited
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ShortRecipeResponse{}, domain.ErrParseUUID
	}

	favorite := &entities.Favorite{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipe.ID,
	}
	if err := s.recipeRepository.AddFavorite(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ShortRecipeResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.ShortRecipeResponse{}, err
	}

	return shortResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !favorited {
		return domain.ErrNotFavorited
	}

	return s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortRecipeResponse{}, err
	}

	inCart, err := s.recipeRepository.IsInCart(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	if inCart {
		return domain.ShortRecipeResponse{}, domain.ErrAlreadyInCart
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ShortRecipeResponse{}, domain.ErrParseUUID
	}

	cart := &entities.ShoppingCart{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipe.ID,
	}
	if err := s.recipeRepository.AddToCart(ctx, cart); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ShortRecipeResponse{}, domain.ErrAlreadyInCart
		}
		return domain.ShortRecipeResponse{}, err
	}

	return shortResponse(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	inCart, err := s.recipeRepository.IsInCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !inCart {
		return domain.ErrNotInCart
	}

	return s.recipeRepository.RemoveFromCart(ctx, userID, recipeID)
}

// translateConflict maps a storage-level duplicate-key failure that got
// past the pre-write checks (a concurrent writer won the race) to the
// domain conflict for whichever uniqueness constraint fired. The recipe
// name is re-checked to tell the two constraints apart instead of
// inspecting the error text.
func (s *recipeService) translateConflict(ctx context.Context, authorID, name, excludeID string, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	exists, checkErr := s.recipeRepository.RecipeNameExists(ctx, authorID, name, excludeID)
	if checkErr == nil && exists {
		return domain.ErrDuplicateRecipeName
	}
	return domain.ErrDuplicateIngredients
}

func (s *recipeService) buildResponse(ctx context.Context, recipe *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	lines, err := s.recipeRepository.GetRecipeLines(ctx, recipe.ID.String())
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tags, err := s.recipeRepository.GetRecipeTags(ctx, recipe.ID.String())
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	lineResponses := make([]domain.IngredientLineResponse, 0, len(lines))
	for _, line := range lines {
		res := domain.IngredientLineResponse{
			ID:     line.IngredientID.String(),
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			res.Name = line.Ingredient.Name
			res.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		lineResponses = append(lineResponses, res)
	}

	tagResponses := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		tagResponses = append(tagResponses, catalog.TagToResponse(tag))
	}

	isFavorited := false
	isInCart := false
	isSubscribed := false
	if viewerID != "" {
		if isFavorited, err = s.recipeRepository.IsFavorited(ctx, viewerID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.recipeRepository.IsInCart(ctx, viewerID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if viewerID != recipe.AuthorID.String() {
			if isSubscribed, err = s.subscriptionRepository.IsSubscribed(ctx, viewerID, recipe.AuthorID.String()); err != nil {
				return domain.RecipeResponse{}, err
			}
		}
	}

	author := domain.UserResponse{ID: recipe.AuthorID.String(), IsSubscribed: isSubscribed}
	if recipe.Author != nil {
		author = user.UserToResponse(recipe.Author, isSubscribed)
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Name:             recipe.Name,
		Author:           author,
		Text:             recipe.Text,
		ImageURL:         recipe.ImageURL,
		Created:          recipe.CreatedAt,
		CookingTime:      recipe.CookingTime,
		Ingredients:      lineResponses,
		Tags:             tagResponses,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
	}, nil
}

// uploadImage decodes a base64 data URI ("data:image/png;base64,....")
// and stores it under the recipe id. An empty payload means no image.
func (s *recipeService) uploadImage(ctx context.Context, recipeID, image string) (string, error) {
	if image == "" {
		return "", nil
	}

	contentType := "image/png"
	payload := image
	if strings.HasPrefix(image, "data:") {
		parts := strings.SplitN(image, ",", 2)
		if len(parts) != 2 {
			return "", domain.ErrInvalidImagePayload
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(parts[0], "data:"), ";base64")
		payload = parts[1]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", domain.ErrInvalidImagePayload
	}

	key := fmt.Sprintf("recipes/%s", recipeID)
	return s.s3.UploadFile(ctx, key, raw, contentType, storage.AllowImage...)
}

func buildChildren(recipeID uuid.UUID, lineReqs []domain.IngredientLineRequest, tagIDs []string) ([]*entities.RecipeIngredient, []*entities.RecipeTag, error) {
	lines := make([]*entities.RecipeIngredient, 0, len(lineReqs))
	for _, req := range lineReqs {
		ingredientUUID, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		lines = append(lines, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ingredientUUID,
			Amount:       req.Amount,
		})
	}

	tags := make([]*entities.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tagUUID, err := uuid.Parse(id)
		if err != nil {
			return nil, nil, domain.ErrParseUUID
		}
		tags = append(tags, &entities.RecipeTag{
			ID:       uuid.New(),
			RecipeID: recipeID,
			TagID:    tagUUID,
		})
	}

	return lines, tags, nil
}

func shortResponse(recipe *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
