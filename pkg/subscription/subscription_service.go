package subscription

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	SubscriptionService interface {
		Subscribe(ctx context.Context, subscriberID, targetID string) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, subscriberID, targetID string) error
		GetSubscriptions(ctx context.Context, subscriberID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	subscriptionService struct {
		subscriptionRepository SubscriptionRepository
	}
)

func NewSubscriptionService(subscriptionRepository SubscriptionRepository) SubscriptionService {
	return &subscriptionService{subscriptionRepository: subscriptionRepository}
}

func (s *subscriptionService) Subscribe(ctx context.Context, subscriberID, targetID string) (domain.SubscriptionResponse, error) {
	if subscriberID == targetID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscription
	}

	exists, err := s.subscriptionRepository.UserExists(ctx, targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if !exists {
		return domain.SubscriptionResponse{}, domain.ErrUserNotFound
	}

	subscribed, err := s.subscriptionRepository.IsSubscribed(ctx, subscriberID, targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if subscribed {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}
	targetUUID, err := uuid.Parse(targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	subscription := &entities.Subscription{
		ID:             uuid.New(),
		SubscriberID:   subscriberUUID,
		SubscribedToID: targetUUID,
	}
	if err := s.subscriptionRepository.CreateSubscription(ctx, subscription); err != nil {
		// A concurrent subscribe can still win the race; the unique pair
		// constraint resolves it and we report the same conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	target, err := s.subscriptionRepository.GetUserByID(ctx, targetID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	res, err := s.buildResponse(ctx, targetID, 0)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	res.Email = target.Email
	res.Username = target.Username
	res.FirstName = target.FirstName
	res.LastName = target.LastName
	return res, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriberID, targetID string) error {
	exists, err := s.subscriptionRepository.UserExists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	subscribed, err := s.subscriptionRepository.IsSubscribed(ctx, subscriberID, targetID)
	if err != nil {
		return err
	}
	if !subscribed {
		return domain.ErrSubscriptionNotFound
	}

	return s.subscriptionRepository.DeleteSubscription(ctx, subscriberID, targetID)
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, subscriberID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	subscriptions, count, err := s.subscriptionRepository.GetSubscriptions(ctx, subscriberID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.SubscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		res, err := s.buildResponse(ctx, subscription.SubscribedToID.String(), recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		if subscription.SubscribedTo != nil {
			res.Email = subscription.SubscribedTo.Email
			res.Username = subscription.SubscribedTo.Username
			res.FirstName = subscription.SubscribedTo.FirstName
			res.LastName = subscription.SubscribedTo.LastName
		}
		result = append(result, res)
	}

	return result, count, nil
}

// buildResponse assembles the recipes-enriched projection of one followed
// author. The caller is by definition subscribed, so IsSubscribed is
// always true here.
func (s *subscriptionService) buildResponse(ctx context.Context, authorID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.subscriptionRepository.GetRecipesByAuthor(ctx, authorID, recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	recipesCount, err := s.subscriptionRepository.CountRecipesByAuthor(ctx, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	shortRecipes := make([]domain.ShortRecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		shortRecipes = append(shortRecipes, domain.ShortRecipeResponse{
			ID:          recipe.ID.String(),
			Name:        recipe.Name,
			ImageURL:    recipe.ImageURL,
			CookingTime: recipe.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		ID:           authorID,
		IsSubscribed: true,
		Recipes:      shortRecipes,
		RecipesCount: recipesCount,
	}, nil
}
