package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/internal/store"
	"supplier-portal/pkg/cache"
	"supplier-portal/pkg/config"

	"go.uber.org/zap"
)

// AnalysisFailedText is stored as the opinion when generation fails
const AnalysisFailedText = "Erro ao processar análise preditiva."

// RiskAnalyzer asks the generator for a short compliance opinion on a
// supplier and keeps the latest one per supplier
type RiskAnalyzer struct {
	store     store.Store
	generator TextGenerator
	cache     *cache.RedisCache
	attempts  int
	timeout   time.Duration
	ttl       time.Duration
	log       *zap.Logger
	now       func() time.Time

	mu       sync.RWMutex
	analyses map[string]model.RiskAnalysis
}

// NewRiskAnalyzer creates a risk analyzer. Opinions are mirrored to the cache
// when it is enabled.
func NewRiskAnalyzer(s store.Store, generator TextGenerator, opinionCache *cache.RedisCache, cfg config.ReputationConfig, log *zap.Logger) *RiskAnalyzer {
	attempts := max(1, cfg.MaxAttempts)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &RiskAnalyzer{
		store:     s,
		generator: generator,
		cache:     opinionCache,
		attempts:  attempts,
		timeout:   timeout,
		ttl:       cfg.CacheTTL,
		log:       log,
		now:       time.Now,
		analyses:  make(map[string]model.RiskAnalysis),
	}
}

// Analyze generates and stores a new opinion. On failure the stored opinion
// becomes AnalysisFailedText and ErrExternalService is returned.
func (a *RiskAnalyzer) Analyze(ctx context.Context, supplierID string) (*model.RiskAnalysis, error) {
	sp, err := a.store.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, storeError(err, supplierNotFound)
	}

	analysis := model.RiskAnalysis{SupplierID: sp.ID, GeneratedAt: a.now()}
	genErr := a.generate(ctx, sp, &analysis)
	if genErr != nil {
		analysis.Text = AnalysisFailedText
		analysis.Failed = true
	}
	a.save(ctx, analysis)

	if genErr != nil {
		a.log.Warn("Risk analysis failed", zap.String("supplier_id", sp.ID), zap.Error(genErr))
		return nil, wrapError(ErrExternalService, AnalysisFailedText, genErr)
	}
	a.log.Info("Risk analysis generated", zap.String("supplier_id", sp.ID))
	return &analysis, nil
}

// Latest returns the stored opinion for a supplier
func (a *RiskAnalyzer) Latest(ctx context.Context, supplierID string) (*model.RiskAnalysis, error) {
	if _, err := a.store.GetSupplier(ctx, supplierID); err != nil {
		return nil, storeError(err, supplierNotFound)
	}

	a.mu.RLock()
	analysis, ok := a.analyses[supplierID]
	a.mu.RUnlock()
	if ok {
		return &analysis, nil
	}

	if a.cache.Enabled() {
		var cached model.RiskAnalysis
		err := a.cache.Get(ctx, cache.GetAnalysisCacheKey(supplierID), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			a.log.Warn("Analysis cache read failed", zap.Error(err))
		}
	}
	return nil, newError(ErrNotFound, "Nenhuma análise gerada para este fornecedor.")
}

func (a *RiskAnalyzer) generate(ctx context.Context, sp *model.Supplier, analysis *model.RiskAnalysis) error {
	if a.generator == nil {
		return errors.New("text generator not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := generateWithRetry(ctx, a.generator, a.attempts, riskPrompt(sp), false, a.log)
	if err != nil {
		return err
	}
	analysis.Text = result.Text
	return nil
}

func (a *RiskAnalyzer) save(ctx context.Context, analysis model.RiskAnalysis) {
	a.mu.Lock()
	a.analyses[analysis.SupplierID] = analysis
	a.mu.Unlock()

	if a.cache.Enabled() {
		if err := a.cache.Set(ctx, cache.GetAnalysisCacheKey(analysis.SupplierID), analysis, a.ttl); err != nil {
			a.log.Warn("Analysis cache write failed", zap.Error(err))
		}
	}
}

func riskPrompt(sp *model.Supplier) string {
	return fmt.Sprintf(`Analise o risco de compliance deste fornecedor:
Nome: %s
Nota: %.1f
Ocorrências: %d
Advertências Atuais: %d
Forneça um parecer curtíssimo (máximo 2 frases) sobre o risco de BLOQUEIO no sistema Paradigma.`,
		sp.Name, sp.AverageScore, sp.Occurrences, sp.Warnings)
}
