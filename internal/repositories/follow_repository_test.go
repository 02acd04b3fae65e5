package repositories

import (
	"context"
	"testing"

	"github.com/digitalblog/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_DuplicatePair(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)

	a := mustUser(t, db, "a")
	b := mustUser(t, db, "b")

	require.NoError(t, repo.CreateFollow(ctx, &models.Follower{FollowerID: a.ID, FollowedID: b.ID}))

	err := repo.CreateFollow(ctx, &models.Follower{FollowerID: a.ID, FollowedID: b.ID})
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err), "got %v", err)

	added, err := repo.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.Follow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, added, "the reverse edge is a different pair")

	assert.Equal(t, int64(2), count(t, db, &models.Follower{}, ""))
}

func TestFollowRepository_Queries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)

	a := mustUser(t, db, "a")
	b := mustUser(t, db, "b")
	c := mustUser(t, db, "c")

	for _, f := range []uint{b.ID, c.ID} {
		_, err := repo.Follow(ctx, f, a.ID)
		require.NoError(t, err)
	}

	followers, err := repo.GetFollowers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "b", followers[0].Username)
	assert.Equal(t, "c", followers[1].Username)

	following, err := repo.GetFollowing(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, a.ID, following[0].ID)

	n, err := repo.GetFollowersCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ok, err := repo.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.DeleteFollow(ctx, b.ID, a.ID))
	assert.True(t, IsNotFound(repo.DeleteFollow(ctx, b.ID, a.ID)))
}

func TestFollowRepository_RejectsSelfAndUnknown(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostgresFollowRepository(db)
	a := mustUser(t, db, "a")

	_, err := repo.Follow(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = repo.Follow(ctx, a.ID, 999)
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err), "got %v", err)
	assert.Zero(t, count(t, db, &models.Follower{}, ""))
}

func TestJoinTables_IdempotentActions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	u := mustUser(t, db, "u")
	p := mustPost(t, db, u, "p")
	c := mustComment(t, db, p, u, "c")

	views := NewPostgresPostViewRepository(db)
	favs := NewPostgresPostFavouriteRepository(db)
	likes := NewPostgresCommentLikeRepository(db)

	for i, want := range []bool{true, false} {
		added, err := views.RecordView(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, added, "view #%d", i)

		added, err = favs.Favourite(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, added, "favourite #%d", i)

		added, err = likes.LikeComment(ctx, c.ID, u.ID)
		require.NoError(t, err)
		assert.Equal(t, want, added, "like #%d", i)
	}

	err := views.CreateView(ctx, &models.PostView{UserID: u.ID, PostID: p.ID})
	assert.True(t, IsIntegrityViolation(err), "got %v", err)
	err = favs.CreateFavourite(ctx, &models.PostFavourite{UserID: u.ID, PostID: p.ID})
	assert.True(t, IsIntegrityViolation(err), "got %v", err)
	err = likes.CreateCommentLike(ctx, &models.CommentLike{UserID: u.ID, CommentID: c.ID})
	assert.True(t, IsIntegrityViolation(err), "got %v", err)

	viewed, err := views.HasViewed(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, viewed)

	ids, err := favs.GetFavouritePostIDs(ctx, u.ID, []uint{p.ID, 777})
	require.NoError(t, err)
	assert.True(t, ids[p.ID])
	assert.False(t, ids[777])

	require.NoError(t, favs.Unfavourite(ctx, u.ID, p.ID))
	fav, err := favs.IsFavourite(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, fav)

	require.NoError(t, likes.DeleteCommentLike(ctx, c.ID, u.ID))
	liked, err := likes.HasUserLikedComment(ctx, c.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestJoinTables_UnknownParents(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := mustUser(t, db, "u")

	_, err := NewPostgresPostViewRepository(db).RecordView(ctx, u.ID, 404)
	assert.True(t, IsIntegrityViolation(err), "got %v", err)

	_, err = NewPostgresPostFavouriteRepository(db).Favourite(ctx, 404, 404)
	assert.True(t, IsIntegrityViolation(err), "got %v", err)

	_, err = NewPostgresCommentLikeRepository(db).LikeComment(ctx, 404, u.ID)
	assert.True(t, IsIntegrityViolation(err), "got %v", err)
}
