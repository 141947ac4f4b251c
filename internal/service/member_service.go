package service

import (
	"context"
	"strings"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/repository"
)

// MemberService manages loyalty members
type MemberService interface {
	Get(ctx context.Context, phone string) (*domain.Member, error)
	Create(ctx context.Context, phone, name string, points int64) (*domain.Member, error)
	SetPoints(ctx context.Context, phone string, points int64) (*domain.Member, error)
}

type memberService struct {
	memberRepo repository.MemberRepository
}

// NewMemberService creates a new instance of MemberService
func NewMemberService(memberRepo repository.MemberRepository) MemberService {
	return &memberService{memberRepo: memberRepo}
}

func (s *memberService) Get(ctx context.Context, phone string) (*domain.Member, error) {
	return s.memberRepo.FindByPhone(ctx, phone)
}

// Create registers a member; a phone already in use is a conflict
func (s *memberService) Create(ctx context.Context, phone, name string, points int64) (*domain.Member, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)

	switch {
	case !domain.HasMemberPhone(phone):
		return nil, domain.NewValidationError("phone", "is required")
	case name == "":
		return nil, domain.NewValidationError("name", "is required")
	case points < 0:
		return nil, domain.NewValidationError("points", "must not be negative")
	}

	now := time.Now()
	member := &domain.Member{
		Phone:     phone,
		Name:      name,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// SetPoints overwrites a member balance
func (s *memberService) SetPoints(ctx context.Context, phone string, points int64) (*domain.Member, error) {
	if points < 0 {
		return nil, domain.NewValidationError("points", "must not be negative")
	}

	if err := s.memberRepo.SetPoints(ctx, phone, points); err != nil {
		return nil, err
	}

	return s.memberRepo.FindByPhone(ctx, phone)
}
