package admin

import (
	"context"
	"fmt"

	"github.com/digitalblog/backoffice/internal/models"
	"github.com/digitalblog/backoffice/internal/repositories"
	"gorm.io/gorm"
)

// inserter stores a freshly decoded row of one model.
type inserter func(ctx context.Context, row interface{}) error

// inserters routes admin creates through the repositories, so the rules
// they enforce apply here too. Join rows go through the idempotent
// actions; a pair that already exists is reported as a conflict.
func inserters(db *gorm.DB) map[string]inserter {
	users := repositories.NewPostgresUserRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	messages := repositories.NewPostgresMessageRepository(db)
	notifies := repositories.NewPostgresNotifyRepository(db)
	stuff := repositories.NewPostgresStuffRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	views := repositories.NewPostgresPostViewRepository(db)
	favourites := repositories.NewPostgresPostFavouriteRepository(db)
	likes := repositories.NewPostgresCommentLikeRepository(db)

	return map[string]inserter{
		"user": func(ctx context.Context, row interface{}) error {
			return users.CreateUser(ctx, row.(*models.User))
		},
		"post": func(ctx context.Context, row interface{}) error {
			return posts.CreatePost(ctx, row.(*models.Post))
		},
		"comment": func(ctx context.Context, row interface{}) error {
			return comments.CreateComment(ctx, row.(*models.Comment))
		},
		"message": func(ctx context.Context, row interface{}) error {
			return messages.CreateMessage(ctx, row.(*models.Message))
		},
		"notify": func(ctx context.Context, row interface{}) error {
			return notifies.CreateNotify(ctx, row.(*models.Notify))
		},
		"stuff": func(ctx context.Context, row interface{}) error {
			return stuff.CreateStuff(ctx, row.(*models.Stuff))
		},
		"followers": func(ctx context.Context, row interface{}) error {
			f := row.(*models.Follower)
			return joined(follows.Follow(ctx, f.FollowerID, f.FollowedID))
		},
		"post_views": func(ctx context.Context, row interface{}) error {
			v := row.(*models.PostView)
			return joined(views.RecordView(ctx, v.UserID, v.PostID))
		},
		"post_favourites": func(ctx context.Context, row interface{}) error {
			f := row.(*models.PostFavourite)
			return joined(favourites.Favourite(ctx, f.UserID, f.PostID))
		},
		"comment_likes": func(ctx context.Context, row interface{}) error {
			l := row.(*models.CommentLike)
			return joined(likes.LikeComment(ctx, l.CommentID, l.UserID))
		},
	}
}

func joined(added bool, err error) error {
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: pair already exists", repositories.ErrIntegrityViolation)
	}
	return nil
}
