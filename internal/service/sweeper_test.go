package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOnce_ReportsReleases(t *testing.T) {
	ledger := newFakeLedger()
	ledger.releasedUnits = 6
	ledger.releasedRecs = 2

	sweeper := NewClaimSweeper(ledger, 0)
	units, recs, err := sweeper.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6, units)
	assert.Equal(t, 2, recs)
}

func TestSweepOnce_Idle(t *testing.T) {
	sweeper := NewClaimSweeper(newFakeLedger(), 0)

	units, recs, err := sweeper.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, units)
	assert.Zero(t, recs)
}
