package service

import (
	"context"
	"errors"
	"fmt"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// LoyaltyLedger applies an order's points to a member balance
type LoyaltyLedger interface {
	Settle(ctx context.Context, phone string, netTotal decimal.Decimal, redeemPoints int64, earnedOverride *int64) (*domain.LedgerEntry, error)
}

type loyaltyLedger struct {
	memberRepo repository.MemberRepository
}

// NewLoyaltyLedger creates a new instance of LoyaltyLedger
func NewLoyaltyLedger(memberRepo repository.MemberRepository) LoyaltyLedger {
	return &loyaltyLedger{memberRepo: memberRepo}
}

// Settle adds earned minus redeemed points in one atomic increment. Orders
// without a member phone are skipped. Redemptions are not checked against
// the balance.
func (l *loyaltyLedger) Settle(ctx context.Context, phone string, netTotal decimal.Decimal, redeemPoints int64, earnedOverride *int64) (*domain.LedgerEntry, error) {
	if !domain.HasMemberPhone(phone) {
		return &domain.LedgerEntry{Skipped: true}, nil
	}

	earned := domain.EarnedPoints(netTotal)
	if earnedOverride != nil {
		earned = *earnedOverride
	}

	entry := &domain.LedgerEntry{
		Phone:    phone,
		Earned:   earned,
		Redeemed: redeemPoints,
		Delta:    earned - redeemPoints,
	}

	balance, err := l.memberRepo.AddPoints(ctx, phone, entry.Delta)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return entry, err
		}
		return entry, fmt.Errorf("failed to update points for %s: %w", phone, err)
	}
	entry.Balance = balance

	return entry, nil
}
