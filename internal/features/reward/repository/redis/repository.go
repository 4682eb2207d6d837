package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"wallet-core-backend/internal/features/reward/models"
	"wallet-core-backend/internal/features/reward/repository"
)

const (
	keyPrefixRecord = "reward:record:"
	keyPrefixIntent = "reward:intent:"
)

type Repository struct {
	client redis.Cmdable
}

func NewRepository(client redis.Cmdable) repository.RewardLedger {
	return &Repository{client: client}
}

func recordKey(address, milestoneName string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefixRecord, address, milestoneName)
}

func intentKey(address, milestoneName string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefixIntent, address, milestoneName)
}

func (r *Repository) GetRecord(ctx context.Context, address, milestoneName string) (*models.RewardRecord, error) {
	data, err := r.client.Get(ctx, recordKey(address, milestoneName)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward record: %w", err)
	}

	var record models.RewardRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reward record: %w", err)
	}
	return &record, nil
}

func (r *Repository) SaveRecord(ctx context.Context, address string, record models.RewardRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal reward record: %w", err)
	}
	return r.client.Set(ctx, recordKey(address, record.MilestoneName), data, 0).Err()
}

func (r *Repository) ListRecords(ctx context.Context, address string) ([]models.RewardRecord, error) {
	keys, err := r.client.Keys(ctx, keyPrefixRecord+address+":*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reward records: %w", err)
	}

	records := make([]models.RewardRecord, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get reward record %s: %w", key, err)
		}
		var record models.RewardRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reward record %s: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Repository) SaveIntent(ctx context.Context, address string, intent models.MintIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal mint intent: %w", err)
	}
	return r.client.Set(ctx, intentKey(address, intent.MilestoneName), data, 0).Err()
}

func (r *Repository) DeleteIntent(ctx context.Context, address, milestoneName string) error {
	return r.client.Del(ctx, intentKey(address, milestoneName)).Err()
}

func (r *Repository) ListIntents(ctx context.Context, address string) ([]models.MintIntent, error) {
	keys, err := r.client.Keys(ctx, keyPrefixIntent+address+":*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list mint intents: %w", err)
	}

	intents := make([]models.MintIntent, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get mint intent %s: %w", key, err)
		}
		var intent models.MintIntent
		if err := json.Unmarshal(data, &intent); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mint intent %s: %w", key, err)
		}
		intents = append(intents, intent)
	}
	return intents, nil
}
