// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/libbyhq/libby/internal/platform/apperr"
	"github.com/libbyhq/libby/internal/platform/constants"
)

// # Redis Token Repository

// RedisTokenRepository implements [TokenRepository] on top of Redis with a
// configurable key prefix, so reset and verification tokens share one
// implementation without ever colliding.
type RedisTokenRepository struct {
	client *redis.Client
	prefix string
}

// NewResetTokenRepository constructs the volatile store for password
// reset tokens.
func NewResetTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, prefix: constants.RedisPrefixResetToken}
}

// NewVerificationTokenRepository constructs the volatile store for email
// verification tokens.
func NewVerificationTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, prefix: constants.RedisPrefixVerifyToken}
}

func (repository *RedisTokenRepository) key(token string) string {
	return repository.prefix + token
}

/*
Set stores a token mapped to a userID with an expiry enforced by Redis.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Redis connection failures
*/
func (repository *RedisTokenRepository) Set(context context.Context, token string, userID string, ttl time.Duration) error {
	if err := repository.client.Set(context, repository.key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_token_set_failed: %w", err)
	}

	return nil
}

/*
Get resolves a token back to its userID.

Description: Expiry is handled by Redis itself, so a hit is always a
live token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: UserID
  - error: Unauthorized when missing or expired
*/
func (repository *RedisTokenRepository) Get(context context.Context, token string) (string, error) {
	userID, err := repository.client.Get(context, repository.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.Unauthorized("Invalid or expired token")
	}
	if err != nil {
		return "", fmt.Errorf("redis_token_get_failed: %w", err)
	}

	return userID, nil
}

// Delete removes a token once it has been consumed.
func (repository *RedisTokenRepository) Delete(context context.Context, token string) error {
	if err := repository.client.Del(context, repository.key(token)).Err(); err != nil {
		return fmt.Errorf("redis_token_delete_failed: %w", err)
	}

	return nil
}
