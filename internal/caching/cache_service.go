package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"kiranamart/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Item caching
	GetItem(ctx context.Context, shopID, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, shopID uuid.UUID, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, shopID, itemID uuid.UUID) error

	// Customer caching
	GetCustomer(ctx context.Context, shopID, customerID uuid.UUID) (*models.Customer, error)
	SetCustomer(ctx context.Context, shopID uuid.UUID, customer *models.Customer, ttl time.Duration) error
	DeleteCustomer(ctx context.Context, shopID, customerID uuid.UUID) error

	// Cache invalidation
	InvalidateShopCache(ctx context.Context, shopID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for OTPs and tokens
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept both host:port and redis://host:port forms
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetItem(ctx context.Context, shopID, itemID uuid.UUID) (*models.Item, error) {
	key := fmt.Sprintf("kiranamart:item:%s:%s", shopID.String(), itemID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, shopID uuid.UUID, item *models.Item, ttl time.Duration) error {
	key := fmt.Sprintf("kiranamart:item:%s:%s", shopID.String(), item.ID.String())
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, shopID, itemID uuid.UUID) error {
	key := fmt.Sprintf("kiranamart:item:%s:%s", shopID.String(), itemID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetCustomer(ctx context.Context, shopID, customerID uuid.UUID) (*models.Customer, error) {
	key := fmt.Sprintf("kiranamart:customer:%s:%s", shopID.String(), customerID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var customer models.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *redisCacheService) SetCustomer(ctx context.Context, shopID uuid.UUID, customer *models.Customer, ttl time.Duration) error {
	key := fmt.Sprintf("kiranamart:customer:%s:%s", shopID.String(), customer.ID.String())
	data, err := json.Marshal(customer)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteCustomer(ctx context.Context, shopID, customerID uuid.UUID) error {
	key := fmt.Sprintf("kiranamart:customer:%s:%s", shopID.String(), customerID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateShopCache(ctx context.Context, shopID uuid.UUID) error {
	pattern := fmt.Sprintf("kiranamart:*:%s:*", shopID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("kiranamart:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
