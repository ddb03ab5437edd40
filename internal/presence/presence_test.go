// internal/presence/presence_test.go

package presence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewService(client), mr
}

func TestOnlineOfflineLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.SetOnline(ctx, "alice"))

	status, err := svc.GetStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusOnline, status)

	require.NoError(t, svc.SetOffline(ctx, "alice"))

	status, err = svc.GetStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Status(""), status)
}

func TestMatchingPool(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.SetOnline(ctx, "alice"))
	require.NoError(t, svc.JoinMatchingPool(ctx, "alice"))
	require.NoError(t, svc.JoinMatchingPool(ctx, "bob"))

	count, err := svc.MatchingPoolCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	in, err := svc.IsInMatchingPool(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, in)

	status, _ := svc.GetStatus(ctx, "alice")
	assert.Equal(t, StatusMatching, status)

	// Leaving the pool restores ONLINE for connected users
	require.NoError(t, svc.LeaveMatchingPool(ctx, "alice"))

	in, err = svc.IsInMatchingPool(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, in)

	status, _ = svc.GetStatus(ctx, "alice")
	assert.Equal(t, StatusOnline, status)
}

func TestLeaveMatchingPoolNeverCreatesStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// Without a prior SetOnline there is no status key to restore, so
	// the connect path must establish it before any pool transitions
	require.NoError(t, svc.LeaveMatchingPool(ctx, "alice"))

	status, err := svc.GetStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Status(""), status)

	require.NoError(t, svc.SetOnline(ctx, "alice"))
	require.NoError(t, svc.LeaveMatchingPool(ctx, "alice"))

	status, _ = svc.GetStatus(ctx, "alice")
	assert.Equal(t, StatusOnline, status)
}

func TestSetBusyRemovesFromPool(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.JoinMatchingPool(ctx, "alice"))
	require.NoError(t, svc.SetBusy(ctx, "alice"))

	in, err := svc.IsInMatchingPool(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, in)

	status, _ := svc.GetStatus(ctx, "alice")
	assert.Equal(t, StatusBusy, status)
}

func TestSetOfflineClearsPoolMembership(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.JoinMatchingPool(ctx, "alice"))
	require.NoError(t, svc.SetOffline(ctx, "alice"))

	count, err := svc.MatchingPoolCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
