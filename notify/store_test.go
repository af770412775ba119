package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmenendez/agora/models"
)

func TestStoreMarkAllViewedThenCountZero(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", "alice@example.com")
	store := NewStore(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, user.ID, models.CommentTarget(1), now))
	require.NoError(t, store.Create(ctx, user.ID, models.CommentTarget(2), now))

	count, err := store.CountPending(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, store.MarkAllViewed(ctx, user.ID))

	count, err = store.CountPending(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	// Repeat mark is a no-op, not an error.
	require.NoError(t, store.MarkAllViewed(ctx, user.ID))
}

func TestStoreMarkAllViewedOnlyTouchesOwnRows(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	store := NewStore(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, alice.ID, models.CommentTarget(1), now))
	require.NoError(t, store.Create(ctx, bob.ID, models.CommentTarget(1), now))

	require.NoError(t, store.MarkAllViewed(ctx, alice.ID))

	count, err := store.CountPending(ctx, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestStoreListByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", "alice@example.com")
	store := NewStore(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.Create(ctx, user.ID, models.CommentTarget(1), base))
	require.NoError(t, store.Create(ctx, user.ID, models.CommentTarget(2), base.Add(time.Minute)))
	require.NoError(t, store.Create(ctx, user.ID, models.TopicTarget(3), base.Add(2*time.Minute)))

	records, err := store.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, models.TargetTopic, records[0].TargetKind)
	require.EqualValues(t, 3, records[0].TargetID)
	require.EqualValues(t, 2, records[1].TargetID)
	require.EqualValues(t, 1, records[2].TargetID)
}

func TestStoreDeleteByTargetMatchesKindAndID(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", "alice@example.com")
	store := NewStore(db)
	ctx := context.Background()
	now := time.Now()

	// Same numeric id across both kinds. Only the comment rows may go.
	require.NoError(t, store.Create(ctx, user.ID, models.CommentTarget(7), now))
	require.NoError(t, store.Create(ctx, user.ID, models.TopicTarget(7), now))
	require.NoError(t, store.Create(ctx, user.ID, models.CommentTarget(8), now))

	require.NoError(t, store.DeleteByTarget(ctx, models.CommentTarget(7)))

	records, err := store.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		require.False(t, record.TargetKind == models.TargetComment && record.TargetID == 7)
	}
}
