package service

import (
	"context"
	"errors"
	"strings"

	"supplier-portal/internal/model"
	"supplier-portal/internal/scoring"
	"supplier-portal/internal/store"
	"supplier-portal/prometheus"

	"go.uber.org/zap"
)

const orderNotFound = "Nenhuma OC/Processo encontrada(o). Tente outro número."

// EvaluationInput is a star rating for the supplier behind an order. Zero
// means the criterion was not rated.
type EvaluationInput struct {
	Reference string `json:"reference" validate:"required"`
	Quality   int    `json:"quality" validate:"min=0,max=5"`
	Delivery  int    `json:"delivery" validate:"min=0,max=5"`
	Support   int    `json:"support" validate:"min=0,max=5"`
}

// EvaluationResult is the supplier after the submission was recorded
type EvaluationResult struct {
	Reference      string                 `json:"reference"`
	Average        float64                `json:"average"`
	Classification scoring.Classification `json:"classification"`
	Supplier       *model.Supplier        `json:"supplier"`
}

// OrderMatch is a resolved order with its supplier
type OrderMatch struct {
	Reference string          `json:"reference"`
	Supplier  *model.Supplier `json:"supplier"`
}

// EvaluationService resolves orders and records evaluations
type EvaluationService struct {
	store store.Store
	log   *zap.Logger
}

// NewEvaluationService creates an evaluation service
func NewEvaluationService(s store.Store, log *zap.Logger) *EvaluationService {
	return &EvaluationService{store: s, log: log}
}

// NormalizeReference trims and uppercases an order or process identifier
func NormalizeReference(reference string) string {
	return strings.ToUpper(strings.TrimSpace(reference))
}

// LookupOrder resolves an OC or FLUIG identifier to its supplier
func (s *EvaluationService) LookupOrder(ctx context.Context, reference string) (*OrderMatch, error) {
	return resolveOrder(ctx, s.store, reference)
}

func resolveOrder(ctx context.Context, st store.Store, reference string) (*OrderMatch, error) {
	ref := NormalizeReference(reference)
	if ref == "" {
		return nil, newError(ErrNotFound, orderNotFound)
	}

	supplierID, err := st.ResolveOrder(ctx, ref)
	if err != nil {
		return nil, storeError(err, orderNotFound)
	}
	sp, err := st.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, storeError(err, orderNotFound)
	}
	return &OrderMatch{Reference: ref, Supplier: sp}, nil
}

// Submit records a three-criteria rating. Every criterion must be rated;
// the new average and the criteria replace the supplier's current ones.
func (s *EvaluationService) Submit(ctx context.Context, input EvaluationInput) (*EvaluationResult, error) {
	var problems []string
	for _, star := range []int{input.Quality, input.Delivery, input.Support} {
		if star < 0 || star > 5 {
			problems = append(problems, "As notas devem estar entre 1 e 5 estrelas.")
			break
		}
	}
	average, ok := scoring.ComputeAverage(float64(input.Quality), float64(input.Delivery), float64(input.Support))
	if !ok {
		problems = append(problems, "Avalie todos os critérios antes de enviar.")
	}
	if len(problems) > 0 {
		return nil, invalid(problems...)
	}

	match, err := s.LookupOrder(ctx, input.Reference)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateSupplier(ctx, match.Supplier.ID, func(sp *model.Supplier) error {
		sp.AverageScore = average
		sp.Criteria = model.Criteria{
			Quality:  float64(input.Quality),
			Delivery: float64(input.Delivery),
			Support:  float64(input.Support),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, storeError(err, orderNotFound)
		}
		return nil, err
	}

	classification := scoring.Classify(average)
	prometheus.RecordEvaluation(string(classification.Tier))
	s.log.Info("Evaluation recorded",
		zap.String("reference", match.Reference),
		zap.String("supplier_id", updated.ID),
		zap.Float64("average", average))

	return &EvaluationResult{
		Reference:      match.Reference,
		Average:        average,
		Classification: classification,
		Supplier:       updated,
	}, nil
}
