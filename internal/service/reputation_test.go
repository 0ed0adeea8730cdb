package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"supplier-portal/internal/model"
	"supplier-portal/pkg/config"
	"supplier-portal/pkg/genai"

	"github.com/stretchr/testify/require"
)

func newTestDesk(t *testing.T, gen TextGenerator, cfg config.ReputationConfig) *ReputationDesk {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return NewReputationDesk(newSeededStore(t), gen, nil, cfg, nopLogger())
}

func TestLookupInternalSupplier(t *testing.T) {
	gen := &fakeGenerator{fn: textResult("não deveria ser chamado")}
	desk := newTestDesk(t, gen, config.ReputationConfig{})
	ctx := context.Background()

	report, err := desk.Lookup(ctx, "s1", "madeiras")
	require.NoError(t, err)
	require.Equal(t, model.ProvenanceInternal, report.Provenance)
	require.Equal(t, "4", report.Subject.SupplierID)
	require.Equal(t, "BOM", report.Verdict)
	require.NotEmpty(t, report.Text)
	require.NotNil(t, report.Sources)
	require.Len(t, report.Indicators.Certificates, 4)
	require.Len(t, report.Indicators.ExternalRatings, 2)
	require.Equal(t, 0, gen.Calls())

	again, err := desk.Lookup(ctx, "s2", "MADEIRAS BRASIL")
	require.NoError(t, err)
	require.Equal(t, report.Indicators, again.Indicators)
	require.Equal(t, report.Text, again.Text)
}

func TestLookupByTaxID(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{})

	for _, query := range []string{"12.345.678/0001-90", "12345678000190"} {
		report, err := desk.Lookup(context.Background(), "", query)
		require.NoError(t, err)
		require.Equal(t, "1", report.Subject.SupplierID)
	}
}

func TestFabricatedReportFollowsScore(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{})
	ctx := context.Background()

	good, err := desk.Lookup(ctx, "s", "TecnoGlobal")
	require.NoError(t, err)
	bad, err := desk.Lookup(ctx, "s", "Auto Peças Vale")
	require.NoError(t, err)

	require.Greater(t, good.Indicators.IEC, bad.Indicators.IEC)
	require.Greater(t, good.Indicators.OnTimeRate, bad.Indicators.OnTimeRate)
	require.Equal(t, "Ativa", good.Indicators.Status)
	require.Equal(t, "Bloqueada", bad.Indicators.Status)
	require.GreaterOrEqual(t, bad.Indicators.CriticalAlerts, 3)
}

func TestLookupExternal(t *testing.T) {
	gen := &fakeGenerator{fn: textResult("Empresa sem restrições.", genai.Citation{Title: "Receita", URI: "https://receita.example"})}
	desk := newTestDesk(t, gen, config.ReputationConfig{})

	report, err := desk.Lookup(context.Background(), "s1", "Empresa Desconhecida")
	require.NoError(t, err)
	require.Equal(t, model.ProvenanceExternal, report.Provenance)
	require.Nil(t, report.Subject)
	require.Equal(t, "Empresa sem restrições.", report.Text)
	require.Equal(t, []model.Source{{Title: "Receita", URL: "https://receita.example"}}, report.Sources)
	require.Contains(t, gen.prompts[0], "Empresa Desconhecida")

	state := desk.Current("s1")
	require.Equal(t, model.LookupSuccess, state.Status)
	require.Equal(t, report, state.Report)
}

func TestLookupExternalFailure(t *testing.T) {
	gen := &fakeGenerator{fn: func(context.Context, int) (*genai.Result, error) {
		return nil, errors.New("quota exceeded")
	}}
	desk := newTestDesk(t, gen, config.ReputationConfig{MaxAttempts: 2})

	_, err := desk.Lookup(context.Background(), "s1", "Empresa Desconhecida")
	require.ErrorIs(t, err, ErrExternalService)
	require.Equal(t, 2, gen.Calls())

	state := desk.Current("s1")
	require.Equal(t, model.LookupError, state.Status)
	require.Nil(t, state.Report)
	require.NotEmpty(t, state.Error)
}

func TestLookupRetriesUpToMaxAttempts(t *testing.T) {
	gen := &fakeGenerator{fn: func(_ context.Context, call int) (*genai.Result, error) {
		if call < 3 {
			return nil, errors.New("unavailable")
		}
		return &genai.Result{Text: "ok", Citations: []genai.Citation{}}, nil
	}}
	desk := newTestDesk(t, gen, config.ReputationConfig{MaxAttempts: 3})

	report, err := desk.Lookup(context.Background(), "s1", "Empresa Desconhecida")
	require.NoError(t, err)
	require.Equal(t, "ok", report.Text)
	require.Equal(t, 3, gen.Calls())
}

func TestLookupWithoutGenerator(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{})

	_, err := desk.Lookup(context.Background(), "s1", "Empresa Desconhecida")
	require.ErrorIs(t, err, ErrExternalService)
}

func TestLookupTimeout(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, _ int) (*genai.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	desk := newTestDesk(t, gen, config.ReputationConfig{Timeout: 30 * time.Millisecond})

	_, err := desk.Lookup(context.Background(), "s1", "Empresa Desconhecida")
	require.ErrorIs(t, err, ErrExternalService)
	require.EqualError(t, err, lookupTimeout)
	require.Equal(t, model.LookupError, desk.Current("s1").Status)
}

func TestLookupSuperseded(t *testing.T) {
	started := make(chan struct{})
	gen := &fakeGenerator{fn: func(ctx context.Context, call int) (*genai.Result, error) {
		if call == 1 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &genai.Result{Text: "segunda consulta", Citations: []genai.Citation{}}, nil
	}}
	desk := newTestDesk(t, gen, config.ReputationConfig{})
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := desk.Lookup(ctx, "s1", "Empresa Alfa")
		firstErr <- err
	}()
	<-started

	report, err := desk.Lookup(ctx, "s1", "Empresa Beta")
	require.NoError(t, err)
	require.Equal(t, "segunda consulta", report.Text)

	select {
	case err := <-firstErr:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first lookup did not finish")
	}

	state := desk.Current("s1")
	require.Equal(t, model.LookupSuccess, state.Status)
	require.Equal(t, "Empresa Beta", state.Query)
}

func TestLookupSessionsAreIndependent(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{})
	ctx := context.Background()

	_, err := desk.Lookup(ctx, "s1", "TecnoGlobal")
	require.NoError(t, err)
	_, err = desk.Lookup(ctx, "s2", "Empresa Desconhecida")
	require.Error(t, err)

	require.Equal(t, model.LookupSuccess, desk.Current("s1").Status)
	require.Equal(t, model.LookupError, desk.Current("s2").Status)
	require.Equal(t, model.LookupIdle, desk.Current("s3").Status)
}

func TestLookupRejectsBlankQuery(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{})

	_, err := desk.Lookup(context.Background(), "s1", "   ")
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, model.LookupIdle, desk.Current("s1").Status)
}

func TestSettledSessionsExpire(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{SessionTTL: time.Minute})
	clock := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	desk.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := desk.Lookup(ctx, fmt.Sprintf("sess-%d", i), "madeiras")
		require.NoError(t, err)
	}
	require.Len(t, desk.sessions, 50)
	require.Equal(t, model.LookupSuccess, desk.Current("sess-1").Status)

	clock = clock.Add(2 * time.Minute)
	require.Equal(t, model.LookupIdle, desk.Current("sess-1").Status)

	_, err := desk.Lookup(ctx, "fresh", "madeiras")
	require.NoError(t, err)
	require.Len(t, desk.sessions, 1)
	require.Equal(t, model.LookupSuccess, desk.Current("fresh").Status)
}

func TestSessionsAreCapped(t *testing.T) {
	desk := newTestDesk(t, nil, config.ReputationConfig{MaxSessions: 10})
	clock := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	desk.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := desk.Lookup(ctx, fmt.Sprintf("sess-%d", i), "madeiras")
		require.NoError(t, err)
	}

	require.LessOrEqual(t, len(desk.sessions), 10)
	require.Equal(t, model.LookupSuccess, desk.Current("sess-999").Status)
	require.Equal(t, model.LookupIdle, desk.Current("sess-0").Status)
}
