package flash

import (
	"context"
	"testing"
	"time"

	"foodfeed/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return map[string]Store{
		"redis":  NewRedisStore(rdb, time.Minute),
		"memory": NewMemoryStore(),
	}
}

func TestPushPopPreservesOrderAndClears(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Push(ctx, "s1",
				models.Error("Invalid image format. Accepted formats are JPEG, PNG and SVG."),
				models.Error("Post creation failed!"),
			))
			require.NoError(t, store.Push(ctx, "s2", models.Success("Post created successfully!")))

			got, err := store.Pop(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "Invalid image format. Accepted formats are JPEG, PNG and SVG.", got[0].Text)
			assert.Equal(t, models.Error("Post creation failed!"), got[1])

			again, err := store.Pop(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, again)

			other, err := store.Pop(ctx, "s2")
			require.NoError(t, err)
			assert.Equal(t, []models.Message{models.Success("Post created successfully!")}, other)
		})
	}
}

func TestEmptyInputsAreNoops(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.NoError(t, store.Push(ctx, "", models.Info("x")))
			assert.NoError(t, store.Push(ctx, "s"))
			got, err := store.Pop(ctx, "s")
			assert.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestRedisStoreSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)

	require.NoError(t, store.Push(context.Background(), "abc", models.Info("Sign in to create a post!")))
	assert.Equal(t, DefaultTTL, mr.TTL("flash:abc"))
}
