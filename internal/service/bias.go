package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type BiasService struct {
	biases domain.BiasStore
}

func NewBiasService(bs domain.BiasStore) *BiasService {
	return &BiasService{biases: bs}
}

// Record stores one bias detection for the owner.
func (s *BiasService) Record(ctx context.Context, owner uuid.UUID, b *domain.CognitiveBias) error {
	b.BiasType = strings.TrimSpace(b.BiasType)
	if b.BiasType == "" {
		return domain.Invalid("bias type is required")
	}
	if !domain.ValidUnit(b.Severity) {
		return domain.Invalid("severity must be between 0 and 1")
	}
	if b.BiasName == "" {
		b.BiasName = b.BiasType
	}
	b.OwnerID = owner
	return s.biases.Create(ctx, b)
}

func (s *BiasService) List(ctx context.Context, owner uuid.UUID) ([]domain.CognitiveBias, error) {
	return s.biases.ListByOwner(ctx, owner)
}

func (s *BiasService) BiasStats(ctx context.Context, owner uuid.UUID) (domain.BiasStats, error) {
	events, err := s.biases.ListByOwner(ctx, owner)
	if err != nil {
		return domain.BiasStats{}, err
	}
	return domain.ComputeBiasStats(events), nil
}
