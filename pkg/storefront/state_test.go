package storefront_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/camera_shop/pkg/storefront"
)

func TestSlice_Transitions(t *testing.T) {
	var s storefront.Slice[[]string]
	assert.Equal(t, storefront.StatusIdle, s.Snapshot().Status)

	seen := make(chan storefront.Status, 1)
	got, err := s.Run(context.Background(), func(context.Context) ([]string, error) {
		seen <- s.Snapshot().Status
		return []string{"a7"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, storefront.StatusLoading, <-seen)
	assert.Equal(t, []string{"a7"}, got)

	snap := s.Snapshot()
	assert.Equal(t, storefront.StatusSucceeded, snap.Status)
	assert.Equal(t, []string{"a7"}, snap.Data)
	assert.NoError(t, snap.Err)

	boom := errors.New("boom")
	_, err = s.Run(context.Background(), func(context.Context) ([]string, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	snap = s.Snapshot()
	assert.Equal(t, storefront.StatusFailed, snap.Status)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Equal(t, []string{"a7"}, snap.Data)

	s.Reset()
	assert.Equal(t, storefront.StatusIdle, s.Snapshot().Status)
	assert.Nil(t, s.Snapshot().Data)
}
