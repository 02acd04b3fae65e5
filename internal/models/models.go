package models

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// All returns one value of every persisted model, parents before children,
// in the order they have to be migrated.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Stuff{},
		&Post{},
		&Comment{},
		&Message{},
		&Notify{},
		&Notification{},
		&Follower{},
		&PostView{},
		&PostFavourite{},
		&CommentLike{},
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the `validate` struct tags of a model value.
func Validate(v interface{}) error {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate.Struct(v)
}
