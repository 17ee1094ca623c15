package services

import (
	"context"
	"log"

	"FreelanceHub/server/internal/models"
	"FreelanceHub/server/internal/storage"

	lru "github.com/hashicorp/golang-lru/v2"
)

const userCacheSize = 512

// UserService resolves profile summaries for denormalization onto messages
// and participant listings. Profiles are owned by the identity service and
// change rarely, so lookups go through a small LRU cache.
type UserService struct {
	store storage.UserStore
	cache *lru.Cache[string, *models.User]
}

func NewUserService(store storage.UserStore) *UserService {
	cache, err := lru.New[string, *models.User](userCacheSize)
	if err != nil {
		// only possible with a non-positive size
		log.Fatalf("Failed to create user cache: %v", err)
	}
	return &UserService{
		store: store,
		cache: cache,
	}
}

func (us *UserService) GetUserById(ctx context.Context, id string) (*models.User, error) {
	if user, ok := us.cache.Get(id); ok {
		return user, nil
	}
	user, err := us.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	us.cache.Add(id, user)
	return user, nil
}
