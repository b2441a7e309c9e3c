package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bagcount-gateway/config"
	"bagcount-gateway/models"

	"github.com/go-redis/redis/v8"
)

const (
	countingStatusKey = "bagcount:counting:status"
	deviceStatusKey   = "bagcount:device:connection"

	// Cached snapshots expire so a dead gateway doesn't leave dashboards
	// showing a stale run forever.
	snapshotTTL = 24 * time.Hour
)

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	// Test connection
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: rdb,
		ctx:    ctx,
	}, nil
}

// SaveCountingStatus caches the current counting run snapshot.
func (r *RedisClient) SaveCountingStatus(status *models.CountingStatus) error {
	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal counting status: %w", err)
	}

	err = r.client.Set(r.ctx, countingStatusKey, statusJSON, snapshotTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save counting status to Redis: %w", err)
	}

	return nil
}

// GetCountingStatus retrieves the cached counting run snapshot.
func (r *RedisClient) GetCountingStatus() (*models.CountingStatus, error) {
	val, err := r.client.Get(r.ctx, countingStatusKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("no counting status cached")
		}
		return nil, fmt.Errorf("failed to get counting status from Redis: %w", err)
	}

	var status models.CountingStatus
	err = json.Unmarshal([]byte(val), &status)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal counting status: %w", err)
	}

	return &status, nil
}

// SaveDeviceStatus records the device's reachability with a timestamp.
func (r *RedisClient) SaveDeviceStatus(status string) error {
	info := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal device status: %w", err)
	}

	err = r.client.Set(r.ctx, deviceStatusKey, infoJSON, snapshotTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save device status to Redis: %w", err)
	}

	return nil
}

// GetDeviceStatus retrieves the last recorded device reachability.
func (r *RedisClient) GetDeviceStatus() (string, error) {
	val, err := r.client.Get(r.ctx, deviceStatusKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("device status not recorded")
		}
		return "", fmt.Errorf("failed to get device status from Redis: %w", err)
	}

	var info map[string]interface{}
	err = json.Unmarshal([]byte(val), &info)
	if err != nil {
		return "", fmt.Errorf("failed to unmarshal device status: %w", err)
	}

	status, ok := info["status"].(string)
	if !ok {
		return "", fmt.Errorf("invalid device status format")
	}

	return status, nil
}

// SetDeviceOnline marks the counting device reachable.
func (r *RedisClient) SetDeviceOnline() error {
	return r.SaveDeviceStatus("ONLINE")
}

// SetDeviceOffline marks the counting device unreachable.
func (r *RedisClient) SetDeviceOffline() error {
	return r.SaveDeviceStatus("OFFLINE")
}

// IsDeviceOnline reports whether the last probe reached the device.
func (r *RedisClient) IsDeviceOnline() bool {
	status, err := r.GetDeviceStatus()
	if err != nil {
		return false
	}
	return status == "ONLINE"
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
