package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var Rdb *redis.Client

// device tokens are refreshed every time the app re-registers; stale
// entries age out on their own.
const deviceTokenTTL = 30 * 24 * time.Hour

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func deviceKey(userID int) string {
	return fmt.Sprintf("device_token:%d", userID)
}

// SetDeviceToken registers (or refreshes) a user's push device token.
func SetDeviceToken(ctx context.Context, userID int, token string) error {
	return Rdb.Set(ctx, deviceKey(userID), token, deviceTokenTTL).Err()
}

// TokenStore adapts the redis-backed token registry to the notify
// package's lookup interface.
type TokenStore struct{}

func (TokenStore) DeviceToken(ctx context.Context, userID int) (string, error) {
	return Rdb.Get(ctx, deviceKey(userID)).Result()
}
