package repositories

import (
	"context"
	"testing"

	"github.com/digitalblog/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterRepository_DriftAndRecount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	a := mustUser(t, db, "a")
	b := mustUser(t, db, "b")
	p := mustPost(t, db, a, "p")
	q := mustPost(t, db, a, "q")
	c := mustComment(t, db, p, b, "c")

	views := NewPostgresPostViewRepository(db)
	for _, u := range []*models.User{a, b} {
		_, err := views.RecordView(ctx, u.ID, p.ID)
		require.NoError(t, err)
	}
	_, err := NewPostgresPostFavouriteRepository(db).Favourite(ctx, b.ID, p.ID)
	require.NoError(t, err)
	_, err = NewPostgresCommentLikeRepository(db).LikeComment(ctx, c.ID, a.ID)
	require.NoError(t, err)

	// q claims views nobody recorded
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", q.ID).UpdateColumn("views_count", 5).Error)

	repo := NewPostgresCounterRepository(db)

	drifts, err := repo.Drift(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Drift{
		{Counter: CounterPostViews, ID: p.ID, Stored: 0, Actual: 2},
		{Counter: CounterPostViews, ID: q.ID, Stored: 5, Actual: 0},
		{Counter: CounterPostFavourites, ID: p.ID, Stored: 0, Actual: 1},
		{Counter: CounterCommentLikes, ID: c.ID, Stored: 0, Actual: 1},
	}, drifts)

	changed, err := repo.Recount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed[CounterPostViews])
	assert.Equal(t, int64(1), changed[CounterPostFavourites])
	assert.Equal(t, int64(1), changed[CounterCommentLikes])

	var got models.Post
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, int64(2), got.ViewsCount)
	assert.Equal(t, int64(1), got.FavouritesCount)
	var gotQ models.Post
	require.NoError(t, db.First(&gotQ, q.ID).Error)
	assert.Zero(t, gotQ.ViewsCount)

	drifts, err = repo.Drift(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	changed, err = repo.Recount(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed[CounterPostViews])
}
