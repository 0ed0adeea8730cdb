package service

import (
	"context"
	"testing"
	"time"

	"supplier-portal/internal/penalty"

	"github.com/stretchr/testify/require"
)

func TestApplyWarningUntilBlocked(t *testing.T) {
	st := newSeededStore(t)
	svc := NewPenaltyService(st, nopLogger())
	svc.now = func() time.Time { return time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		detail, err := svc.ApplyWarning(ctx, "3", "", "gestor")
		require.NoError(t, err)
		require.Equal(t, i, detail.Supplier.Warnings)
	}

	sp, err := st.GetSupplier(ctx, "3")
	require.NoError(t, err)
	require.True(t, sp.IsBlocked)
	require.Equal(t, penalty.StateBlocked, penalty.StateOf(sp))

	log, err := svc.WarningLog(ctx, "3")
	require.NoError(t, err)
	require.Len(t, log, 3)
	require.Equal(t, "2025-11-03", log[0].Date)
	require.Equal(t, penalty.DefaultReason, log[0].Reason)
	require.Equal(t, "gestor", log[2].Manager)

	_, err = svc.ApplyWarning(ctx, "3", "mais uma", "gestor")
	require.ErrorIs(t, err, ErrConflict)

	log, err = svc.WarningLog(ctx, "3")
	require.NoError(t, err)
	require.Len(t, log, 3)
}

func TestResetWarnings(t *testing.T) {
	svc := NewPenaltyService(newSeededStore(t), nopLogger())
	ctx := context.Background()

	detail, err := svc.ResetWarnings(ctx, "5", "gestor")
	require.NoError(t, err)
	require.Equal(t, 0, detail.Supplier.Warnings)
	require.False(t, detail.Supplier.IsBlocked)
	require.Empty(t, detail.Supplier.WarningLogs)
	require.Equal(t, penalty.BlockThreshold, detail.RemainingWarnings)

	detail, err = svc.ApplyWarning(ctx, "5", "Nova falha", "gestor")
	require.NoError(t, err)
	require.Equal(t, 1, detail.Supplier.Warnings)
	require.Len(t, detail.Supplier.WarningLogs, 1)
}

func TestPenaltyUnknownSupplier(t *testing.T) {
	svc := NewPenaltyService(newSeededStore(t), nopLogger())
	ctx := context.Background()

	_, err := svc.ApplyWarning(ctx, "404", "r", "gestor")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ResetWarnings(ctx, "404", "gestor")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.WarningLog(ctx, "404")
	require.ErrorIs(t, err, ErrNotFound)
}
