package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peegflow/internal/auth/models"
	"peegflow/pkg/requestcontext"
)

type store interface {
	Get(ctx context.Context, key string) (models.LockoutState, error)
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	Lock(ctx context.Context, key string, until time.Time) error
	Clear(ctx context.Context, key string) error
}

func stores(t *testing.T) map[string]store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]store{
		"memory": NewInMemory(),
		"redis":  NewRedis(client),
	}
}

func TestStoresCountLockAndClear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC()
			ctx := requestcontext.WithTime(context.Background(), now)
			key := "tenant:demo:ana@example.com"

			for i := 1; i <= 3; i++ {
				n, err := s.RecordFailure(ctx, key, 15*time.Minute)
				require.NoError(t, err)
				assert.Equal(t, i, n)
			}

			until := now.Add(10 * time.Minute)
			require.NoError(t, s.Lock(ctx, key, until))

			state, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, 3, state.Failures)
			assert.True(t, state.IsLocked(now))
			assert.False(t, state.IsLocked(until))

			require.NoError(t, s.Clear(ctx, key))
			state, err = s.Get(ctx, key)
			require.NoError(t, err)
			assert.Zero(t, state.Failures)
			assert.False(t, state.IsLocked(now))
		})
	}
}

func TestInMemoryWindowExpires(t *testing.T) {
	s := NewInMemory()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), start)

	_, err := s.RecordFailure(ctx, "k", time.Minute)
	require.NoError(t, err)

	later := requestcontext.WithTime(context.Background(), start.Add(2*time.Minute))
	n, err := s.RecordFailure(later, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "count restarts after the window")
}
