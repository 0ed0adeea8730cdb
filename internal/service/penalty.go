package service

import (
	"context"
	"errors"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/internal/penalty"
	"supplier-portal/internal/store"
	"supplier-portal/prometheus"

	"go.uber.org/zap"
)

// PenaltyService applies and clears supplier warnings
type PenaltyService struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewPenaltyService creates a penalty service
func NewPenaltyService(s store.Store, log *zap.Logger) *PenaltyService {
	return &PenaltyService{store: s, log: log, now: time.Now}
}

// ApplyWarning adds a strike on behalf of manager
func (s *PenaltyService) ApplyWarning(ctx context.Context, id, reason, manager string) (*SupplierDetail, error) {
	at := s.now()
	updated, err := s.store.UpdateSupplier(ctx, id, func(sp *model.Supplier) error {
		return penalty.ApplyWarning(sp, reason, manager, at)
	})
	if err != nil {
		if errors.Is(err, penalty.ErrAlreadyBlocked) {
			prometheus.RecordWarning("rejected")
			return nil, wrapError(ErrConflict, "Fornecedor já está bloqueado.", err)
		}
		return nil, storeError(err, supplierNotFound)
	}

	prometheus.RecordWarning("apply")
	s.log.Info("Warning applied",
		zap.String("supplier_id", id),
		zap.String("manager", manager),
		zap.Int("warnings", updated.Warnings),
		zap.Bool("blocked", updated.IsBlocked))
	if updated.IsBlocked {
		s.log.Warn("Supplier blocked", zap.String("supplier_id", id))
	}
	s.refreshBlockedGauge(ctx)

	return detailOf(updated), nil
}

// ResetWarnings clears every strike and unblocks the supplier
func (s *PenaltyService) ResetWarnings(ctx context.Context, id, manager string) (*SupplierDetail, error) {
	updated, err := s.store.UpdateSupplier(ctx, id, func(sp *model.Supplier) error {
		penalty.ResetWarnings(sp)
		return nil
	})
	if err != nil {
		return nil, storeError(err, supplierNotFound)
	}

	prometheus.RecordWarning("reset")
	s.log.Info("Warnings reset", zap.String("supplier_id", id), zap.String("manager", manager))
	s.refreshBlockedGauge(ctx)

	return detailOf(updated), nil
}

// WarningLog returns the supplier's strikes in the order they were applied
func (s *PenaltyService) WarningLog(ctx context.Context, id string) ([]model.WarningLog, error) {
	sp, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return nil, storeError(err, supplierNotFound)
	}
	return sp.WarningLogs, nil
}

func (s *PenaltyService) refreshBlockedGauge(ctx context.Context) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		s.log.Warn("Failed to refresh blocked suppliers gauge", zap.Error(err))
		return
	}
	blocked := 0
	for _, sp := range suppliers {
		if sp.IsBlocked {
			blocked++
		}
	}
	prometheus.UpdateBlockedSuppliers(blocked)
}
