package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
)

const sessionKeyPrefix = "chat:session:"

// ValkeySessions stores tokens in Valkey so every instance shares them.
type ValkeySessions struct {
	client valkey.Client
}

func NewValkeySessions(client valkey.Client) *ValkeySessions {
	return &ValkeySessions{client: client}
}

// DialValkey connects to addr and verifies the connection.
func DialValkey(ctx context.Context, addr, password string) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect valkey %s: %w", addr, err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey %s: %w", addr, err)
	}
	return client, nil
}

func sessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

func (v *ValkeySessions) Get(ctx context.Context, userID int64) (string, error) {
	token, err := v.client.Do(ctx, v.client.B().Get().Key(sessionKey(userID)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("get session %d: %w", userID, err)
	}
	return token, nil
}

func (v *ValkeySessions) Put(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := v.client.B().Setex().Key(sessionKey(userID)).Seconds(seconds).Value(token).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("put session %d: %w", userID, err)
	}
	return nil
}

func (v *ValkeySessions) Delete(ctx context.Context, userID int64) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(sessionKey(userID)).Build()).Error(); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}
