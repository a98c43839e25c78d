package seat_test

import (
	"testing"

	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/seat"
	apperrors "event-rsvp-service/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_Sequential(t *testing.T) {
	t.Run("nth confirmation takes seat n", func(t *testing.T) {
		got, err := seat.Allocate(model.SeatPolicySequential, 10, 3, []int{1, 2})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("falls back to lowest free seat when count is taken", func(t *testing.T) {
		// 有人取消過：座位 2 空了，第 3 位確認者的座位 3 已被補位者佔走
		got, err := seat.Allocate(model.SeatPolicySequential, 10, 3, []int{1, 3})
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	})

	t.Run("first seat on empty event", func(t *testing.T) {
		got, err := seat.Allocate(model.SeatPolicySequential, 5, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("exhausted when every seat is taken", func(t *testing.T) {
		_, err := seat.Allocate(model.SeatPolicySequential, 3, 3, []int{1, 2, 3})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrSeatExhausted)
	})
}

func TestAllocate_Random(t *testing.T) {
	t.Run("seat is free and within range", func(t *testing.T) {
		taken := []int{2, 4}
		occupied := map[int]bool{2: true, 4: true}

		for i := 0; i < 50; i++ {
			got, err := seat.Allocate(model.SeatPolicyRandom, 5, 3, taken)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 5)
			assert.False(t, occupied[got], "seat %d is already taken", got)
		}
	})

	t.Run("single free seat is always chosen", func(t *testing.T) {
		got, err := seat.Allocate(model.SeatPolicyRandom, 3, 3, []int{1, 3})
		require.NoError(t, err)
		assert.Equal(t, 2, got)
	})

	t.Run("exhausted when every seat is taken", func(t *testing.T) {
		_, err := seat.Allocate(model.SeatPolicyRandom, 2, 2, []int{1, 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrSeatExhausted)
	})
}
