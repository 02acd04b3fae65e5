package admin

import "github.com/digitalblog/backoffice/internal/models"

// CategoryService holds the bookkeeping tables.
const CategoryService = "Служебные"

func blogViews() []*View {
	return []*View{
		newView("user", "Пользователи", "", &models.User{},
			[]string{
				"username", "first_name", "last_name", "email", "role", "banned", "password",
				"avatar_url", "stroage_used", "stroage_granted", "sub_id", "about_me",
				"message_setting", "confirmed", "banned_reason", "blogger", "member_since",
				"last_seen", "last_message_read_time", "email_notify", "show_profile_id",
				"anonymous_show", "last_notify_read_time",
			},
			[]string{"id", "username", "email"},
			nil,
		),
		newView("post", "Публикации", "", &models.Post{},
			[]string{
				"title", "body", "timestamp", "last_update_time", "filename", "file_size",
				"views_count", "rate_count", "show", "allow_comments", "favourites_count",
				"user_id", "anonymous_show",
			},
			[]string{"id", "title", "body"},
			map[string]string{"author": "user_id"},
		),
		newView("message", "Личные сообщения", "", &models.Message{},
			[]string{
				"title", "body", "timestamp", "last_update_time", "filename", "file_size",
				"read", "sender_id", "recipient_id", "read_time",
			},
			[]string{"id", "title", "body"},
			map[string]string{"author": "sender_id", "recipient": "recipient_id"},
		),
		newView("notify", "Уведомления", "", &models.Notify{},
			[]string{"title", "body", "timestamp", "recipient_id"},
			[]string{"id", "title", "body"},
			map[string]string{"user": "recipient_id"},
		),
		newView("comment", "Комментарии", "", &models.Comment{},
			[]string{"comment", "timestamp", "last_update_time", "likes_count", "commented_by", "commented_on"},
			[]string{"id", "comment"},
			map[string]string{"author": "commented_by", "post": "commented_on"},
		),
		newView("stuff", "Дополнительно", "", &models.Stuff{},
			[]string{"name", "content"},
			nil,
			nil,
		),
		newView("notification", "Счётчик уведомлений", CategoryService, &models.Notification{}, nil, nil, nil),
		newView("post_favourites", "Избранные", CategoryService, &models.PostFavourite{}, nil, nil, nil),
		newView("post_views", "Просмотры публикаций", CategoryService, &models.PostView{}, nil, nil, nil),
		newView("followers", "Подписки", CategoryService, &models.Follower{}, nil, nil, nil),
		newView("comment_likes", "Лайки комментариев", CategoryService, &models.CommentLike{}, nil, nil, nil),
	}
}

// newView builds a view with the stock back-office behaviour: every filter
// column is editable inline, and create, edit, export and detail screens are
// all enabled with modal forms.
func newView(slug, name, category string, model interface{}, filters, searchable []string, aliases map[string]string) *View {
	return &View{
		Slug:              slug,
		Name:              name,
		Category:          category,
		Model:             model,
		ColumnFilters:     filters,
		SearchableColumns: searchable,
		EditableColumns:   append([]string(nil), filters...),
		Aliases:           aliases,
		CanCreate:         true,
		CanEdit:           true,
		CanDelete:         true,
		CanExport:         true,
		CanViewDetails:    true,
		CreateModal:       true,
		EditModal:         true,
	}
}
