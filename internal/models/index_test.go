package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"modelreport/internal/data"
)

func TestResolveIndex_Ascending(t *testing.T) {
	for _, mode := range []data.SearchMode{data.ModeForward, data.ModeAllSubsets, data.ModeMaxR, data.ModeMaxRSweep} {
		t.Run(string(mode), func(t *testing.T) {
			for k := 1; k <= 4; k++ {
				idx, err := ResolveIndex(mode, k, 4, 4)
				require.NoError(t, err)
				require.Equal(t, k-1, idx)
			}
		})
	}
}

func TestResolveIndex_Backward(t *testing.T) {
	t.Run("offset arithmetic with five stored models", func(t *testing.T) {
		// offset = 5-2 = 3, index = 5-1-3 = 1
		idx, err := ResolveIndex(data.ModeBackward, 2, 5, 5)
		require.NoError(t, err)
		require.Equal(t, 1, idx)
	})

	t.Run("full store matches ascending modes", func(t *testing.T) {
		for k := 1; k <= 5; k++ {
			back, err := ResolveIndex(data.ModeBackward, k, 5, 5)
			require.NoError(t, err)
			fwd, err := ResolveIndex(data.ModeForward, k, 5, 5)
			require.NoError(t, err)
			require.Equal(t, fwd, back)
		}
	})

	t.Run("truncated store counts back from the largest model", func(t *testing.T) {
		// sizes 3, 4, 5 stored
		cases := map[int]int{5: 2, 4: 1, 3: 0}
		for k, want := range cases {
			idx, err := ResolveIndex(data.ModeBackward, k, 5, 3)
			require.NoError(t, err)
			require.Equal(t, want, idx, "size %d", k)
		}
	})

	t.Run("naive index is wrong for a truncated store", func(t *testing.T) {
		idx, err := ResolveIndex(data.ModeBackward, 3, 5, 3)
		require.NoError(t, err)
		require.NotEqual(t, 3-1, idx)
	})

	t.Run("sizes below the stored range are rejected", func(t *testing.T) {
		for _, k := range []int{1, 2} {
			_, err := ResolveIndex(data.ModeBackward, k, 5, 3)
			require.ErrorIs(t, err, data.ErrInvalidSubsetSize)
		}
	})
}

func TestResolveIndex_Bounds(t *testing.T) {
	for _, mode := range []data.SearchMode{data.ModeForward, data.ModeBackward, data.ModeAllSubsets, data.ModeMaxR, data.ModeMaxRSweep} {
		t.Run(string(mode), func(t *testing.T) {
			_, err := ResolveIndex(mode, 0, 3, 3)
			require.ErrorIs(t, err, data.ErrInvalidSubsetSize)
			require.Contains(t, err.Error(), "must be between 0 and")

			_, err = ResolveIndex(mode, -2, 3, 3)
			require.ErrorIs(t, err, data.ErrInvalidSubsetSize)

			_, err = ResolveIndex(mode, 4, 3, 3)
			require.ErrorIs(t, err, data.ErrInvalidSubsetSize)
			require.Contains(t, err.Error(), "cannot exceed")
		})
	}
}

func TestResolveIndex_UnknownMode(t *testing.T) {
	_, err := ResolveIndex("stepwise", 1, 3, 3)
	require.ErrorIs(t, err, data.ErrUnknownMode)
}
