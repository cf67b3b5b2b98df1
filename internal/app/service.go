/**
 * @description
 * This file contains the service core for the banking backend. The `Service`
 * struct orchestrates the loan wizard, payment verification, transfers and
 * account access, coordinating the database repository, the draft staging
 * store, the object store for uploaded documents and the message broker.
 *
 * @dependencies
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq, pkg/blobstore: For event publishing and document uploads.
 */

package app

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trustbank/banking-service/internal/domain"
	"github.com/trustbank/banking-service/internal/store"
	"github.com/trustbank/banking-service/pkg/blobstore"
	"github.com/trustbank/banking-service/pkg/rabbitmq"
)

// Policy carries the tunable business rules. Values are loaded from config at
// startup; the loan limits and deposit percentage can additionally be
// overridden through system settings at runtime.
type Policy struct {
	MinLoanAmount  decimal.Decimal
	MaxLoanAmount  decimal.Decimal
	DepositPercent decimal.Decimal
	DraftTTL       time.Duration
	TransferFee    decimal.Decimal

	// RequireVerifiedDeposit gates loan approval on a verified deposit
	// payment. Off by default: approval historically proceeded on the
	// strength of the review alone and marked the deposit paid itself.
	RequireVerifiedDeposit bool
}

// DefaultPolicy returns the rules used when config provides nothing else.
func DefaultPolicy() Policy {
	return Policy{
		MinLoanAmount:  decimal.NewFromInt(100),
		MaxLoanAmount:  decimal.NewFromInt(100000),
		DepositPercent: decimal.NewFromInt(10),
		DraftTTL:       30 * time.Minute,
		TransferFee:    decimal.Zero,
	}
}

// Service provides the core business logic for the banking backend.
type Service struct {
	repo    store.Repository
	drafts  LoanDraftStore
	uploads blobstore.Uploader
	events  rabbitmq.Publisher
	policy  Policy
}

// NewService creates a new service instance.
func NewService(repo store.Repository, drafts LoanDraftStore, uploads blobstore.Uploader, events rabbitmq.Publisher, policy Policy) *Service {
	return &Service{
		repo:    repo,
		drafts:  drafts,
		uploads: uploads,
		events:  events,
		policy:  policy,
	}
}

// reservedNames are blocked at registration before any write happens.
var reservedNames = map[string]struct{}{
	"admin":         {},
	"administrator": {},
	"root":          {},
	"superuser":     {},
	"superadmin":    {},
}

func isReservedName(name string) bool {
	_, ok := reservedNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// settingDecimal reads a numeric system setting, falling back to the given
// default when the setting is missing or malformed.
func (s *Service) settingDecimal(ctx context.Context, name string, fallback decimal.Decimal) decimal.Decimal {
	setting, err := s.repo.GetSetting(ctx, name)
	if err != nil {
		return fallback
	}
	value, err := decimal.NewFromString(strings.TrimSpace(setting.Value))
	if err != nil {
		log.Printf("level=warn component=app msg=\"malformed system setting\" name=%s value=%q", name, setting.Value)
		return fallback
	}
	return value
}

// publish sends an event to the broker without letting a broker outage fail
// the request that produced it.
func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, routingKey, event); err != nil {
		log.Printf("level=warn component=app msg=\"event publish failed\" routing_key=%s error=%q", routingKey, err)
	}
}

// SeedSettings installs the default system settings that are missing. Existing
// values are never overwritten.
func (s *Service) SeedSettings(ctx context.Context) error {
	for _, def := range domain.DefaultSystemSettings {
		if _, err := s.repo.GetSetting(ctx, def.Name); err == nil {
			continue
		} else if err != store.ErrSettingNotFound {
			return err
		}
		if err := s.repo.UpsertSetting(ctx, def); err != nil {
			return err
		}
		log.Printf("level=info component=app msg=\"seeded system setting\" name=%s", def.Name)
	}
	return nil
}
