package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/features/wallet/repository"
)

const keyAccount = "wallet:account"

// Repository stores the active account as one JSON record in redis. A
// local mutex keeps Load/Save/Delete atomic with respect to each other.
type Repository struct {
	client redis.Cmdable
	mu     sync.Mutex
}

func NewRepository(client redis.Cmdable) repository.AccountStore {
	return &Repository{client: client}
}

func (r *Repository) Load(ctx context.Context) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.client.Get(ctx, keyAccount).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account record: %w", err)
	}
	return &account, nil
}

func (r *Repository) Save(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account record: %w", err)
	}
	return r.client.Set(ctx, keyAccount, data, 0).Err()
}

func (r *Repository) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.client.Del(ctx, keyAccount).Err()
}
