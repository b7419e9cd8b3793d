package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRecipes   = "success get recipes"
	MessageSuccessGetRecipe    = "success get recipe detail"
	MessageSuccessCreateRecipe = "recipe created successfully"
	MessageSuccessUpdateRecipe = "recipe updated successfully"
	MessageSuccessDeleteRecipe = "recipe deleted successfully"
	MessageSuccessAddFavorite  = "recipe added to favorites"
	MessageSuccessAddToCart    = "recipe added to shopping cart"

	MessageFailedGetRecipes   = "failed to get recipes"
	MessageFailedGetRecipe    = "failed to get recipe detail"
	MessageFailedCreateRecipe = "failed to create recipe"
	MessageFailedUpdateRecipe = "failed to update recipe"
	MessageFailedDeleteRecipe = "failed to delete recipe"
	MessageFailedAddFavorite  = "failed to add recipe to favorites"
	MessageFailedDropFavorite = "failed to remove recipe from favorites"
	MessageFailedAddToCart    = "failed to add recipe to shopping cart"
	MessageFailedDropFromCart = "failed to remove recipe from shopping cart"

	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrNotRecipeOwner       = errors.New("only the author can modify this recipe")
	ErrMissingTags          = errors.New("recipe must have at least one tag")
	ErrDuplicateTags        = errors.New("recipe cannot contain duplicate tags")
	ErrMissingIngredients   = errors.New("recipe must have at least one ingredient")
	ErrDuplicateIngredients = errors.New("recipe cannot contain duplicate ingredients")
	ErrAmountNotPositive    = errors.New("ingredient amount must be positive")
	ErrDuplicateRecipeName  = errors.New("author already has a recipe with this name")
	ErrAlreadyFavorited     = errors.New("recipe already in favorites")
	ErrNotFavorited         = errors.New("recipe not in favorites")
	ErrAlreadyInCart        = errors.New("recipe already in shopping cart")
	ErrNotInCart            = errors.New("recipe not in shopping cart")
	ErrInvalidImagePayload  = errors.New("image payload is not valid base64")
)

type (
	IngredientLineRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount" validate:"required"`
	}

	CreateRecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=150"`
		Text        string                  `json:"text" validate:"required"`
		Image       string                  `json:"image" validate:"omitempty"`
		CookingTime int                     `json:"cooking_time" validate:"required,min=1,max=1000"`
		Ingredients []IngredientLineRequest `json:"ingredients" validate:"required,dive"`
		Tags        []string                `json:"tags" validate:"required,dive,uuid"`
	}

	UpdateRecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=150"`
		Text        string                  `json:"text" validate:"required"`
		Image       string                  `json:"image" validate:"omitempty"`
		CookingTime int                     `json:"cooking_time" validate:"required,min=1,max=1000"`
		Ingredients []IngredientLineRequest `json:"ingredients" validate:"required,dive"`
		Tags        []string                `json:"tags" validate:"required,dive,uuid"`
	}

	IngredientLineResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                   `json:"id"`
		Name             string                   `json:"name"`
		Author           UserResponse             `json:"author"`
		Text             string                   `json:"text"`
		ImageURL         string                   `json:"image_url,omitempty"`
		Created          time.Time                `json:"created"`
		CookingTime      int                      `json:"cooking_time"`
		Ingredients      []IngredientLineResponse `json:"ingredients"`
		Tags             []TagResponse            `json:"tags"`
		IsFavorited      bool                     `json:"is_favorited"`
		IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	}

	// ShortRecipeResponse is the truncated projection used by the
	// favorite/cart add responses and the subscription listing.
	ShortRecipeResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	// RecipeFilter narrows the recipe listing. Viewer-dependent flags are
	// ignored for anonymous viewers.
	RecipeFilter struct {
		TagSlugs         []string
		AuthorID         string
		IsFavorited      bool
		IsInShoppingCart bool
	}
)
