package domain

import (
	"errors"
)

// Tag colors are restricted to the fixed palette; the constraint lives in
// the validator tag on the create/update requests.
const (
	TagColorOrange = "e26e24"
	TagColorGreen  = "4ab54f"
	TagColorPurple = "8574d4"
	TagColorBlack  = "000000"
)

var (
	MessageSuccessGetTags          = "success get tags"
	MessageSuccessGetTag           = "success get tag"
	MessageSuccessCreateTag        = "tag created successfully"
	MessageSuccessUpdateTag        = "tag updated successfully"
	MessageSuccessDeleteTag        = "tag deleted successfully"
	MessageSuccessGetIngredients   = "success get ingredients"
	MessageSuccessGetIngredient    = "success get ingredient"
	MessageSuccessCreateIngredient = "ingredient created successfully"
	MessageSuccessUpdateIngredient = "ingredient updated successfully"
	MessageSuccessDeleteIngredient = "ingredient deleted successfully"

	MessageFailedGetTags          = "failed to get tags"
	MessageFailedGetTag           = "failed to get tag"
	MessageFailedCreateTag        = "failed to create tag"
	MessageFailedUpdateTag        = "failed to update tag"
	MessageFailedDeleteTag        = "failed to delete tag"
	MessageFailedGetIngredients   = "failed to get ingredients"
	MessageFailedGetIngredient    = "failed to get ingredient"
	MessageFailedCreateIngredient = "failed to create ingredient"
	MessageFailedUpdateIngredient = "failed to update ingredient"
	MessageFailedDeleteIngredient = "failed to delete ingredient"

	ErrTagNotFound             = errors.New("tag not found")
	ErrTagAlreadyExists        = errors.New("tag with this name, slug or color already exists")
	ErrIngredientNotFound      = errors.New("ingredient not found")
	ErrIngredientAlreadyExists = errors.New("ingredient with this name already exists")
)

type (
	TagResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	CreateTagRequest struct {
		Name  string `json:"name" validate:"required,max=200"`
		Slug  string `json:"slug" validate:"required,max=200"`
		Color string `json:"color" validate:"required,oneof=e26e24 4ab54f 8574d4 000000"`
	}

	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	CreateIngredientRequest struct {
		Name            string `json:"name" validate:"required,max=150"`
		MeasurementUnit string `json:"measurement_unit" validate:"required,max=150"`
	}
)
