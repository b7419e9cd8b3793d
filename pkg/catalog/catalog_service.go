package catalog

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	CatalogService interface {
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTag(ctx context.Context, id string) (domain.TagResponse, error)
		CreateTag(ctx context.Context, req domain.CreateTagRequest) (domain.TagResponse, error)
		UpdateTag(ctx context.Context, id string, req domain.CreateTagRequest) (domain.TagResponse, error)
		DeleteTag(ctx context.Context, id string) error

		GetIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientResponse, error)
		GetIngredient(ctx context.Context, id string) (domain.IngredientResponse, error)
		CreateIngredient(ctx context.Context, req domain.CreateIngredientRequest) (domain.IngredientResponse, error)
		UpdateIngredient(ctx context.Context, id string, req domain.CreateIngredientRequest) (domain.IngredientResponse, error)
		DeleteIngredient(ctx context.Context, id string) error
	}

	catalogService struct {
		catalogRepository CatalogRepository
	}
)

func NewCatalogService(catalogRepository CatalogRepository) CatalogService {
	return &catalogService{catalogRepository: catalogRepository}
}

func (s *catalogService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	tags, err := s.catalogRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		result = append(result, TagToResponse(tag))
	}
	return result, nil
}

func (s *catalogService) GetTag(ctx context.Context, id string) (domain.TagResponse, error) {
	tag, err := s.catalogRepository.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}
	return TagToResponse(tag), nil
}

func (s *catalogService) CreateTag(ctx context.Context, req domain.CreateTagRequest) (domain.TagResponse, error) {
	exists, err := s.catalogRepository.TagExists(ctx, req.Name, req.Slug, req.Color, "")
	if err != nil {
		return domain.TagResponse{}, err
	}
	if exists {
		return domain.TagResponse{}, domain.ErrTagAlreadyExists
	}

	tag := &entities.Tag{
		ID:    uuid.New(),
		Name:  req.Name,
		Slug:  req.Slug,
		Color: req.Color,
	}
	if err := s.catalogRepository.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagAlreadyExists
		}
		return domain.TagResponse{}, err
	}
	return TagToResponse(tag), nil
}

func (s *catalogService) UpdateTag(ctx context.Context, id string, req domain.CreateTagRequest) (domain.TagResponse, error) {
	tag, err := s.catalogRepository.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}

	exists, err := s.catalogRepository.TagExists(ctx, req.Name, req.Slug, req.Color, id)
	if err != nil {
		return domain.TagResponse{}, err
	}
	if exists {
		return domain.TagResponse{}, domain.ErrTagAlreadyExists
	}

	tag.Name = req.Name
	tag.Slug = req.Slug
	tag.Color = req.Color
	if err := s.catalogRepository.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.TagResponse{}, domain.ErrTagAlreadyExists
		}
		return domain.TagResponse{}, err
	}
	return TagToResponse(tag), nil
}

func (s *catalogService) DeleteTag(ctx context.Context, id string) error {
	if _, err := s.catalogRepository.GetTagByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTagNotFound
		}
		return err
	}
	return s.catalogRepository.DeleteTag(ctx, id)
}

func (s *catalogService) GetIngredients(ctx context.Context, namePrefix string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.catalogRepository.GetIngredients(ctx, namePrefix)
	if err != nil {
		return nil, err
	}

	result := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		result = append(result, IngredientToResponse(ingredient))
	}
	return result, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id string) (domain.IngredientResponse, error) {
	ingredient, err := s.catalogRepository.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return IngredientToResponse(ingredient), nil
}

func (s *catalogService) CreateIngredient(ctx context.Context, req domain.CreateIngredientRequest) (domain.IngredientResponse, error) {
	exists, err := s.catalogRepository.IngredientExists(ctx, req.Name, "")
	if err != nil {
		return domain.IngredientResponse{}, err
	}
	if exists {
		return domain.IngredientResponse{}, domain.ErrIngredientAlreadyExists
	}

	ingredient := &entities.Ingredient{
		ID:              uuid.New(),
		Name:            req.Name,
		MeasurementUnit: req.MeasurementUnit,
	}
	if err := s.catalogRepository.CreateIngredient(ctx, ingredient); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.IngredientResponse{}, domain.ErrIngredientAlreadyExists
		}
		return domain.IngredientResponse{}, err
	}
	return IngredientToResponse(ingredient), nil
}

func (s *catalogService) UpdateIngredient(ctx context.Context, id string, req domain.CreateIngredientRequest) (domain.IngredientResponse, error) {
	ingredient, err := s.catalogRepository.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}

	exists, err := s.catalogRepository.IngredientExists(ctx, req.Name, id)
	if err != nil {
		return domain.IngredientResponse{}, err
	}
	if exists {
		return domain.IngredientResponse{}, domain.ErrIngredientAlreadyExists
	}

	ingredient.Name = req.Name
	ingredient.MeasurementUnit = req.MeasurementUnit
	if err := s.catalogRepository.UpdateIngredient(ctx, ingredient); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.IngredientResponse{}, domain.ErrIngredientAlreadyExists
		}
		return domain.IngredientResponse{}, err
	}
	return IngredientToResponse(ingredient), nil
}

func (s *catalogService) DeleteIngredient(ctx context.Context, id string) error {
	if _, err := s.catalogRepository.GetIngredientByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrIngredientNotFound
		}
		return err
	}
	return s.catalogRepository.DeleteIngredient(ctx, id)
}

func TagToResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func IngredientToResponse(ingredient *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}
