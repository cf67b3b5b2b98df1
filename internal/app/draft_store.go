/**
 * @description
 * This file implements the session staging store for the loan wizard. Step 1
 * stages a draft under the applicant's user id; step 2 consumes it. Drafts
 * live in Redis with a TTL, so an abandoned wizard leaves nothing durable.
 */

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/trustbank/banking-service/internal/domain"
)

// LoanDraftStore stages the wizard's step-1 output between requests.
type LoanDraftStore interface {
	Save(ctx context.Context, userID uuid.UUID, draft *domain.LoanDraft, ttl time.Duration) error
	Get(ctx context.Context, userID uuid.UUID) (*domain.LoanDraft, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RedisLoanDraftStore keeps drafts in Redis, one key per applicant.
type RedisLoanDraftStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLoanDraftStore(client redis.UniversalClient, prefix string) *RedisLoanDraftStore {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "trustbank:loan_draft"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisLoanDraftStore{
		client: client,
		prefix: trimmedPrefix,
	}
}

func (s *RedisLoanDraftStore) key(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

func (s *RedisLoanDraftStore) Save(ctx context.Context, userID uuid.UUID, draft *domain.LoanDraft, ttl time.Duration) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), payload, ttl).Err()
}

func (s *RedisLoanDraftStore) Get(ctx context.Context, userID uuid.UUID) (*domain.LoanDraft, error) {
	payload, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}

	var draft domain.LoanDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *RedisLoanDraftStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
