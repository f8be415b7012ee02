package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
)

func newTestBatch(t *testing.T, initial int64) *Batch {
	t.Helper()
	batch, err := NewBatch(uuid.New(), uuid.New(), "BATCH-001", decimal.NewFromInt(initial), nil, nil)
	require.NoError(t, err)
	return batch
}

func TestNewBatch(t *testing.T) {
	t.Run("creates batch with initial quantity", func(t *testing.T) {
		batch := newTestBatch(t, 100)

		assert.Equal(t, "BATCH-001", batch.BatchNumber)
		assert.True(t, batch.Received.Equal(decimal.NewFromInt(100)))
		assert.True(t, batch.EffectiveQuantity().Equal(decimal.NewFromInt(100)))
		assert.False(t, batch.Disabled)
		assert.Len(t, batch.GetDomainEvents(), 1)
	})

	t.Run("rejects empty batch number", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), "", decimal.Zero, nil, nil)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("rejects negative initial quantity", func(t *testing.T) {
		_, err := NewBatch(uuid.New(), uuid.New(), "B1", decimal.NewFromInt(-1), nil, nil)
		require.Error(t, err)
	})

	t.Run("rejects expiry before manufacturing", func(t *testing.T) {
		mfg := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		exp := mfg.AddDate(0, -1, 0)
		_, err := NewBatch(uuid.New(), uuid.New(), "B1", decimal.Zero, &mfg, &exp)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}

func TestBatch_ApplyMovement(t *testing.T) {
	t.Run("conservation holds across mixed movements", func(t *testing.T) {
		batch := newTestBatch(t, 0)

		require.NoError(t, batch.ApplyMovement(BatchMovementReceive, decimal.NewFromInt(100)))
		require.NoError(t, batch.ApplyMovement(BatchMovementConsume, decimal.NewFromInt(30)))
		require.NoError(t, batch.ApplyMovement(BatchMovementDispatch, decimal.NewFromInt(20)))
		require.NoError(t, batch.ApplyMovement(BatchMovementReturn, decimal.NewFromInt(5)))
		require.NoError(t, batch.ApplyMovement(BatchMovementScrap, decimal.NewFromInt(10)))

		// 100 - (30+20+10) + 5
		assert.True(t, batch.EffectiveQuantity().Equal(decimal.NewFromInt(45)))
	})

	t.Run("rejects movement that would drive on-hand negative and reverts", func(t *testing.T) {
		batch := newTestBatch(t, 10)

		err := batch.ApplyMovement(BatchMovementConsume, decimal.NewFromInt(11))
		require.Error(t, err)
		assert.Equal(t, shared.KindInvariantViolation, shared.KindOf(err))

		// Counters must be exactly as before the failed movement.
		assert.True(t, batch.Consumed.IsZero())
		assert.True(t, batch.EffectiveQuantity().Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects return exceeding outbound total", func(t *testing.T) {
		batch := newTestBatch(t, 50)
		require.NoError(t, batch.ApplyMovement(BatchMovementConsume, decimal.NewFromInt(10)))

		err := batch.ApplyMovement(BatchMovementReturn, decimal.NewFromInt(11))
		require.Error(t, err)
		assert.Equal(t, shared.KindInvariantViolation, shared.KindOf(err))
		assert.True(t, batch.Returned.IsZero())
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		batch := newTestBatch(t, 10)
		err := batch.ApplyMovement(BatchMovementConsume, decimal.Zero)
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("rejects movements on a disabled batch", func(t *testing.T) {
		batch := newTestBatch(t, 0)
		batch.Disable()

		err := batch.ApplyMovement(BatchMovementReceive, decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
	})

	t.Run("bumps version on success", func(t *testing.T) {
		batch := newTestBatch(t, 0)
		before := batch.Version
		require.NoError(t, batch.ApplyMovement(BatchMovementReceive, decimal.NewFromInt(1)))
		assert.Equal(t, before+1, batch.Version)
	})
}

func TestBatch_Expiry(t *testing.T) {
	t.Run("expired batch", func(t *testing.T) {
		past := time.Now().AddDate(0, 0, -1)
		batch, err := NewBatch(uuid.New(), uuid.New(), "B1", decimal.Zero, nil, &past)
		require.NoError(t, err)
		assert.True(t, batch.IsExpired())
		assert.True(t, batch.WillExpireWithin(24*time.Hour))
	})

	t.Run("batch without expiry never expires", func(t *testing.T) {
		batch := newTestBatch(t, 0)
		assert.False(t, batch.IsExpired())
		assert.False(t, batch.WillExpireWithin(24*time.Hour))
	})
}

func TestBatch_SetRetainSample(t *testing.T) {
	batch := newTestBatch(t, 100)

	require.NoError(t, batch.SetRetainSample(decimal.NewFromInt(2), "QC-SHELF-3"))
	assert.True(t, batch.RetainSampleQuantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "QC-SHELF-3", batch.RetainSampleLocation)

	err := batch.SetRetainSample(decimal.NewFromInt(-1), "QC")
	require.Error(t, err)
}
