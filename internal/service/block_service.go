package service

import (
	"context"
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
	"github.com/denhaven/breeder-backend/internal/repository"
)

// BlockService is the independent allow/deny gate consulted before message
// creation. It lives outside the source adapters so blocking policy stays
// swappable and testable on its own.
type BlockService interface {
	IsBlocked(ctx context.Context, scopeID int64, userUID string) (bool, error)
	BlockClient(ctx context.Context, pc ProviderContext, clientUID, reason string) error
	UnblockClient(ctx context.Context, pc ProviderContext, clientUID string) error
	ListBlocked(ctx context.Context, pc ProviderContext) ([]model.BlockRecord, error)
}

type blockService struct {
	blocks repository.BlockRepository
}

func NewBlockService(blocks repository.BlockRepository) BlockService {
	return &blockService{blocks: blocks}
}

func (s *blockService) IsBlocked(ctx context.Context, scopeID int64, userUID string) (bool, error) {
	if userUID == "" {
		return false, nil
	}
	rec, err := s.blocks.FindLive(ctx, scopeID, userUID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// BlockClient is idempotent: a live record for the pair is left as is rather
// than duplicated. Existing messages stay visible; only new creation stops.
func (s *blockService) BlockClient(ctx context.Context, pc ProviderContext, clientUID, reason string) error {
	if clientUID == "" {
		return ErrValidation
	}
	scope := pc.BlockScope()
	existing, err := s.blocks.FindLive(ctx, scope, clientUID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.blocks.Create(ctx, &model.BlockRecord{
		ScopeID: scope,
		UserUID: clientUID,
		Level:   model.BlockLevelFull,
		Reason:  reason,
	})
}

func (s *blockService) UnblockClient(ctx context.Context, pc ProviderContext, clientUID string) error {
	if clientUID == "" {
		return ErrValidation
	}
	return s.blocks.Lift(ctx, pc.BlockScope(), clientUID, time.Now().UTC())
}

func (s *blockService) ListBlocked(ctx context.Context, pc ProviderContext) ([]model.BlockRecord, error) {
	return s.blocks.ListLive(ctx, pc.BlockScope())
}
