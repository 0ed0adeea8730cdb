package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/internal/scoring"
	"supplier-portal/internal/store"
	"supplier-portal/pkg/cache"
	"supplier-portal/pkg/config"
	"supplier-portal/pkg/genai"
	"supplier-portal/prometheus"

	"go.uber.org/zap"
)

// TextGenerator produces free text, optionally grounded on web sources.
// *genai.Client implements it.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, grounded bool) (*genai.Result, error)
}

// DefaultSession is used when a caller does not identify its session
const DefaultSession = "anonymous"

const (
	defaultLookupTimeout = 30 * time.Second
	defaultSessionTTL    = 30 * time.Minute
	defaultMaxSessions   = 10000
)

const (
	lookupFailed      = "Não foi possível consultar a reputação da empresa. Tente novamente."
	lookupTimeout     = "A consulta externa excedeu o tempo limite."
	lookupUnavailable = "Consulta externa indisponível no momento."
)

type lookupSession struct {
	generation uint64
	cancel     context.CancelFunc
	state      model.LookupState
}

// ReputationDesk runs company reputation lookups. Each session has at most
// one lookup in flight: starting a new one cancels the previous, and a
// superseded result never replaces the session state.
type ReputationDesk struct {
	store     store.Store
	generator TextGenerator
	cache     *cache.RedisCache
	cfg       config.ReputationConfig
	log       *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	sessions  map[string]*lookupSession
	lastSweep time.Time
}

// NewReputationDesk creates a reputation desk. generator and reportCache may
// be nil; without a generator only registry suppliers can be looked up.
func NewReputationDesk(s store.Store, generator TextGenerator, reportCache *cache.RedisCache, cfg config.ReputationConfig, log *zap.Logger) *ReputationDesk {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLookupTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.MaxSessions < 1 {
		cfg.MaxSessions = defaultMaxSessions
	}
	return &ReputationDesk{
		store:     s,
		generator: generator,
		cache:     reportCache,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		sessions:  make(map[string]*lookupSession),
	}
}

// Lookup resolves query to a report and settles the session's state with it.
// It returns ErrSuperseded when a newer lookup for the same session started
// before this one finished.
func (d *ReputationDesk) Lookup(ctx context.Context, sessionID, query string) (*model.ReputationReport, error) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return nil, invalid("Informe o CNPJ ou a razão social.")
	}
	if sessionID == "" {
		sessionID = DefaultSession
	}

	lookupCtx, generation := d.begin(ctx, sessionID, query)
	defer d.release(sessionID, generation)

	track := prometheus.TrackReputationLookup()
	report, err := d.resolve(lookupCtx, query)
	if err != nil {
		switch {
		case errors.Is(lookupCtx.Err(), context.DeadlineExceeded):
			err = wrapError(ErrExternalService, lookupTimeout, err)
		case errors.Is(err, ErrExternalService), errors.Is(err, ErrValidation):
		default:
			err = wrapError(ErrExternalService, lookupFailed, err)
		}
	}

	if !d.settle(sessionID, generation, query, report, err) {
		track("unknown", "superseded")
		d.log.Info("Reputation lookup superseded", zap.String("session", sessionID), zap.String("query", query))
		return nil, newError(ErrSuperseded, "Consulta substituída por uma mais recente.")
	}

	if err != nil {
		track("unknown", "error")
		d.log.Warn("Reputation lookup failed", zap.String("session", sessionID), zap.String("query", query), zap.Error(err))
		return nil, err
	}
	track(string(report.Provenance), "success")
	return report, nil
}

// Current returns the latest settled state of a session
func (d *ReputationDesk) Current(sessionID string) model.LookupState {
	if sessionID == "" {
		sessionID = DefaultSession
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[sessionID]
	if !ok {
		return model.LookupState{Status: model.LookupIdle}
	}
	if d.expired(s, d.now()) {
		delete(d.sessions, sessionID)
		return model.LookupState{Status: model.LookupIdle}
	}
	return s.state
}

// begin supersedes any lookup in flight for the session
func (d *ReputationDesk) begin(ctx context.Context, sessionID, query string) (context.Context, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.evict(now)

	s, ok := d.sessions[sessionID]
	if !ok {
		s = &lookupSession{}
		d.sessions[sessionID] = s
	}
	if s.cancel != nil {
		s.cancel()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	s.generation++
	s.cancel = cancel
	s.state = model.LookupState{Query: query, Status: model.LookupLoading, UpdatedAt: now}
	return lookupCtx, s.generation
}

// expired reports whether a settled session outlived SessionTTL. Sessions
// with a lookup in flight never expire.
func (d *ReputationDesk) expired(s *lookupSession, now time.Time) bool {
	return s.cancel == nil && now.Sub(s.state.UpdatedAt) >= d.cfg.SessionTTL
}

// evict drops expired sessions, at most once per TTL/2 unless the map is full.
// At the cap the oldest settled sessions go until a tenth of the room is free.
// Must be called with d.mu held.
func (d *ReputationDesk) evict(now time.Time) {
	full := len(d.sessions) >= d.cfg.MaxSessions
	if !full && now.Sub(d.lastSweep) < d.cfg.SessionTTL/2 {
		return
	}
	d.lastSweep = now

	settled := make([]string, 0, len(d.sessions))
	for id, s := range d.sessions {
		switch {
		case d.expired(s, now):
			delete(d.sessions, id)
		case s.cancel == nil:
			settled = append(settled, id)
		}
	}

	target := d.cfg.MaxSessions - max(1, d.cfg.MaxSessions/10)
	if !full || len(d.sessions) <= target {
		return
	}
	sort.Slice(settled, func(i, j int) bool {
		return d.sessions[settled[i]].state.UpdatedAt.Before(d.sessions[settled[j]].state.UpdatedAt)
	})
	for _, id := range settled {
		if len(d.sessions) <= target {
			break
		}
		delete(d.sessions, id)
	}
	d.log.Debug("Reputation sessions evicted", zap.Int("remaining", len(d.sessions)))
}

// settle records the outcome unless a newer lookup took over
func (d *ReputationDesk) settle(sessionID string, generation uint64, query string, report *model.ReputationReport, err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.sessions[sessionID]
	if s == nil || s.generation != generation {
		return false
	}

	state := model.LookupState{Query: query, UpdatedAt: d.now()}
	if err != nil {
		state.Status = model.LookupError
		state.Error = err.Error()
	} else {
		state.Status = model.LookupSuccess
		state.Report = report
	}
	s.state = state
	return true
}

// release cancels the lookup context once the run is over
func (d *ReputationDesk) release(sessionID string, generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s := d.sessions[sessionID]; s != nil && s.generation == generation && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (d *ReputationDesk) resolve(ctx context.Context, query string) (*model.ReputationReport, error) {
	suppliers, err := d.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	if sp := findInternalSupplier(suppliers, query); sp != nil {
		d.log.Debug("Reputation lookup matched registry supplier", zap.String("supplier_id", sp.ID))
		return fabricateReport(query, sp, d.now()), nil
	}
	return d.external(ctx, query)
}

func (d *ReputationDesk) external(ctx context.Context, query string) (*model.ReputationReport, error) {
	key := cache.GetReputationCacheKey(query)
	if d.cache.Enabled() {
		var cached model.ReputationReport
		err := d.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			cached.Query = query
			return &cached, nil
		case !errors.Is(err, cache.ErrMiss):
			d.log.Warn("Reputation cache read failed", zap.Error(err))
		}
	}

	if d.generator == nil {
		return nil, newError(ErrExternalService, lookupUnavailable)
	}

	result, err := d.generate(ctx, reputationPrompt(query), true)
	if err != nil {
		return nil, err
	}

	sources := make([]model.Source, 0, len(result.Citations))
	for _, c := range result.Citations {
		sources = append(sources, model.Source{Title: c.Title, URL: c.URI})
	}
	report := &model.ReputationReport{
		Query:       query,
		Provenance:  model.ProvenanceExternal,
		Text:        result.Text,
		Sources:     sources,
		GeneratedAt: d.now(),
	}

	if d.cache.Enabled() {
		if err := d.cache.Set(ctx, key, report, d.cfg.CacheTTL); err != nil {
			d.log.Warn("Reputation cache write failed", zap.Error(err))
		}
	}
	return report, nil
}

// generate calls the generator up to MaxAttempts times
func (d *ReputationDesk) generate(ctx context.Context, prompt string, grounded bool) (*genai.Result, error) {
	return generateWithRetry(ctx, d.generator, d.cfg.MaxAttempts, prompt, grounded, d.log)
}

func generateWithRetry(ctx context.Context, generator TextGenerator, attempts int, prompt string, grounded bool, log *zap.Logger) (*genai.Result, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := generator.GenerateContent(ctx, prompt, grounded)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		log.Warn("Text generation attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, lastErr
}

func reputationPrompt(query string) string {
	return fmt.Sprintf(`Pesquise a reputação corporativa da empresa "%s" (CNPJ ou razão social).
Resuma em português, em até 6 frases: situação cadastral, histórico de reclamações
em sites como Reclame Aqui, processos ou sanções públicas conhecidas e uma
recomendação objetiva para o setor de compras.`, query)
}

// findInternalSupplier matches a case-insensitive name substring or, for a
// query made only of digits and punctuation, the tax id digits
func findInternalSupplier(suppliers []*model.Supplier, query string) *model.Supplier {
	lowered := strings.ToLower(query)
	digits := ""
	if looksLikeTaxID(query) {
		digits = onlyDigits(query)
	}
	for _, sp := range suppliers {
		if digits != "" && digits == onlyDigits(sp.TaxID) {
			return sp
		}
		if strings.Contains(strings.ToLower(sp.Name), lowered) {
			return sp
		}
	}
	return nil
}

func looksLikeTaxID(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("./- ", r):
		default:
			return false
		}
	}
	return hasDigit
}

// fabricateReport builds a deterministic report for a registry supplier.
// The same supplier state always yields the same figures.
func fabricateReport(query string, sp *model.Supplier, now time.Time) *model.ReputationReport {
	h := fnv.New64a()
	h.Write([]byte(sp.ID))
	h.Write([]byte(sp.TaxID))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(sp.AverageScore*100)+uint64(sp.Occurrences)))

	score := sp.AverageScore
	classification := scoring.Classify(score)

	iec := int(score*20) + rng.IntN(7) - 3
	iec = max(0, min(100, iec))

	indicators := &model.ReputationIndicators{
		IEC:            iec,
		OnTimeRate:     scoring.Round1(min(99.9, 55+sp.Criteria.Delivery*8.5+rng.Float64()*2)),
		ComplaintRate:  scoring.Round1(float64(sp.Occurrences)*0.3 + (5-score)*0.4 + rng.Float64()*0.3),
		AvgSLADays:     scoring.Round1(1.5 + (5-sp.Criteria.Support)*1.3 + rng.Float64()),
		Status:         "Ativa",
		Certificates:   []model.Certificate{},
		CriticalAlerts: sp.Warnings,
	}
	if sp.IsBlocked {
		indicators.Status = "Bloqueada"
	}
	if sp.Occurrences >= 5 {
		indicators.CriticalAlerts++
	}

	for _, label := range []string{"Receita Federal", "FGTS", "Trabalhista (CNDT)", "Estadual"} {
		status := "OK"
		if rng.Float64()*5 > score+0.5 {
			status = "PENDENTE"
		}
		indicators.Certificates = append(indicators.Certificates, model.Certificate{Label: label, Status: status})
	}

	reclameAqui := scoring.Round1(max(0, min(10, score*2-rng.Float64()*0.6)))
	google := scoring.Round1(max(1, min(5, score-rng.Float64()*0.3)))
	indicators.ExternalRatings = []model.ExternalRating{
		{Name: "Reclame Aqui", Score: fmt.Sprintf("%.1f/10", reclameAqui), Status: ratingLabel(reclameAqui / 2)},
		{Name: "Google Avaliações", Score: fmt.Sprintf("%.1f/5", google), Status: ratingLabel(google)},
	}

	text := fmt.Sprintf(
		"%s (CNPJ %s) é fornecedor cadastrado no segmento %s, com nota média %.1f (%s) em %d pedidos e %d ocorrências registradas.",
		sp.Name, sp.TaxID, sp.Segment, score, classification.Tier, sp.Volume, sp.Occurrences)
	switch {
	case sp.IsBlocked:
		text += " O fornecedor está BLOQUEADO por acúmulo de advertências e não deve receber novos pedidos."
	case classification.NotRecommended:
		text += " Histórico desfavorável: não recomendado para novas contratações."
	case classification.Recommended:
		text += " Histórico consistente: recomendado para novas contratações."
	default:
		text += " Desempenho regular: recomenda-se acompanhamento próximo."
	}

	return &model.ReputationReport{
		Query:       query,
		Subject:     &model.Subject{SupplierID: sp.ID, Name: sp.Name, TaxID: sp.TaxID},
		Provenance:  model.ProvenanceInternal,
		Verdict:     string(classification.Tier),
		Text:        text,
		Sources:     []model.Source{},
		Indicators:  indicators,
		GeneratedAt: now,
	}
}

func ratingLabel(outOfFive float64) string {
	switch {
	case outOfFive >= 4.5:
		return "Excelente"
	case outOfFive >= 4:
		return "Ótimo"
	case outOfFive >= 3:
		return "Bom"
	case outOfFive >= 2:
		return "Regular"
	default:
		return "Ruim"
	}
}
