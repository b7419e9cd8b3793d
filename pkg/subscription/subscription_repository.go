package subscription

import (
	"Foodgram-Backend/entities"
	"context"

	"gorm.io/gorm"
)

type (
	SubscriptionRepository interface {
		CreateSubscription(ctx context.Context, subscription *entities.Subscription) error
		DeleteSubscription(ctx context.Context, subscriberID, subscribedToID string) error
		IsSubscribed(ctx context.Context, subscriberID, subscribedToID string) (bool, error)
		GetSubscriptions(ctx context.Context, subscriberID string, page, limit int) ([]*entities.Subscription, int64, error)
		UserExists(ctx context.Context, id string) (bool, error)
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error)
		CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error)
	}

	subscriptionRepository struct {
		db *gorm.DB
	}
)

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *subscriptionRepository) DeleteSubscription(ctx context.Context, subscriberID, subscribedToID string) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID).
		Delete(&entities.Subscription{}).Error
}

func (r *subscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, subscribedToID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Subscription{}).
		Where("subscriber_id = ? AND subscribed_to_id = ?", subscriberID, subscribedToID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepository) GetSubscriptions(ctx context.Context, subscriberID string, page, limit int) ([]*entities.Subscription, int64, error) {
	var subscriptions []*entities.Subscription
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).Model(&entities.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("SubscribedTo").
		Where("subscriber_id = ?", subscriberID).
		Offset(offset).
		Limit(limit).
		Order("created_at desc").
		Find(&subscriptions).Error; err != nil {
		return nil, 0, err
	}

	return subscriptions, count, nil
}

func (r *subscriptionRepository) UserExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subscriptionRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *subscriptionRepository) GetRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]*entities.Recipe, error) {
	var recipes []*entities.Recipe

	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *subscriptionRepository) CountRecipesByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
