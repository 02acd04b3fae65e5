package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/digitalblog/backoffice/internal/access"
	"github.com/digitalblog/backoffice/internal/audit"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/digitalblog/backoffice/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var root = access.Caller{Authenticated: true, UserID: 1, Role: models.RoleAdmin, Email: "root@example.com"}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *audit.Memory) {
	t.Helper()
	db := newTestDB(t)
	reg, err := Register(db, access.AdminOnly, Options{PageSize: 2})
	require.NoError(t, err)
	journal := &audit.Memory{}
	return NewService(db, reg, journal), db, journal
}

func seedUsers(t *testing.T, db *gorm.DB, names ...string) []*models.User {
	t.Helper()
	var users []*models.User
	for _, name := range names {
		u := &models.User{Username: name, Email: name + "@example.com"}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	return users
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	reg, err := Register(db, access.AdminOnly, Options{})
	require.NoError(t, err)

	assert.Equal(t, "DigitalBlog", reg.Name)
	require.Len(t, reg.Views(), 11)

	names := make([]string, 0, 11)
	for _, v := range reg.Views() {
		names = append(names, v.Name)
		assert.Equal(t, 10, v.PageSize)
		assert.Equal(t, v.ColumnFilters, v.EditableColumns, v.Slug)
		assert.True(t, v.CanExport && v.CanViewDetails && v.CreateModal && v.EditModal, v.Slug)
	}
	assert.Equal(t, []string{
		"Пользователи", "Публикации", "Личные сообщения", "Уведомления", "Комментарии", "Дополнительно",
		"Счётчик уведомлений", "Избранные", "Просмотры публикаций", "Подписки", "Лайки комментариев",
	}, names)

	menu := reg.Menu()
	require.Len(t, menu, 2)
	assert.Equal(t, "", menu[0].Name)
	assert.Len(t, menu[0].Views, 6)
	assert.Equal(t, CategoryService, menu[1].Name)
	assert.Len(t, menu[1].Views, 5)

	require.Len(t, reg.Links, 1)
	assert.Equal(t, MenuLink{Name: "Сайт", Category: "", URL: "https://digitalblog.repl.co/"}, reg.Links[0])

	users, err := reg.View("user")
	require.NoError(t, err)
	assert.Equal(t, "user", users.Table())
	assert.Equal(t, []string{"id", "username", "email"}, users.SearchableColumns)
	assert.Contains(t, users.ColumnFilters, "stroage_used")

	followers, err := reg.View("followers")
	require.NoError(t, err)
	assert.Equal(t, []string{"follower_id", "followed_id"}, followers.PrimaryKey())
	assert.Empty(t, followers.ColumnFilters)

	_, err = reg.View("nope")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	db := newTestDB(t)

	_, err := Register(db, nil, Options{})
	assert.Error(t, err)
	_, err = Register(nil, access.AdminOnly, Options{})
	assert.Error(t, err)

	reg, err := Register(db, access.AdminOnly, Options{})
	require.NoError(t, err)
	err = reg.add(db, newView("ghost", "Ghost", "", &models.Post{}, []string{"no_such_column"}, nil, nil))
	assert.ErrorContains(t, err, "no_such_column")

	err = reg.add(db, newView("post", "Again", "", &models.Post{}, nil, nil, nil))
	assert.ErrorContains(t, err, "duplicate")
}

func TestService_ListFilterSearch(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	users := seedUsers(t, db, "alice", "bob", "carol")
	for i, title := range []string{"Go tips", "Cooking", "More Go"} {
		require.NoError(t, db.Create(&models.Post{UserID: users[i%2].ID, Title: title, ViewsCount: int64(i)}).Error)
	}

	page, err := svc.List(ctx, "user", ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, "user", ListQuery{Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "carol", page.Items.([]models.User)[0].Username)

	page, err = svc.List(ctx, "user", ListQuery{Search: "BO"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = svc.List(ctx, "post", ListQuery{Filters: map[string]string{"author": "1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.List(ctx, "post", ListQuery{Filters: map[string]string{"title__like": "go"}, Sort: "views_count", Desc: true})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	assert.Equal(t, "More Go", page.Items.([]models.Post)[0].Title)

	page, err = svc.List(ctx, "post", ListQuery{Filters: map[string]string{"views_count__gt": "0", "show": "false"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.List(ctx, "post", ListQuery{Filters: map[string]string{"password": "x"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.List(ctx, "post", ListQuery{Filters: map[string]string{"views_count": "many"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.List(ctx, "stuff", ListQuery{Search: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.List(ctx, "user", ListQuery{Sort: "password; DROP TABLE"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_CreateUpdateDelete(t *testing.T) {
	svc, _, journal := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, root, "user", []byte(`{"username":"dave","email":"dave@example.com","password":"s3cret","role":2}`))
	require.NoError(t, err)
	dave := created.(*models.User)
	assert.NotEqual(t, "s3cret", dave.Password)
	assert.True(t, dave.CheckPassword("s3cret"))
	assert.Equal(t, models.RoleBlogger, dave.Role)

	_, err = svc.Create(ctx, root, "user", []byte(`{"username":"dave","email":"other@example.com"}`))
	assert.True(t, repositories.IsIntegrityViolation(err), "got %v", err)

	_, err = svc.Create(ctx, root, "user", []byte(`{"username":"eve","email":"eve@example.com","mystery":1}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	key := KeyOf(mustView(t, svc, "user"), dave)
	updated, err := svc.Update(ctx, root, "user", key, []byte(`{"role":4,"banned":true,"password":"n3w"}`))
	require.NoError(t, err)
	u := updated.(*models.User)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, u.Banned)
	assert.True(t, u.CheckPassword("n3w"))

	_, err = svc.Update(ctx, root, "user", key, []byte(`{"id":77}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Update(ctx, root, "user", "999", []byte(`{"banned":false}`))
	assert.True(t, repositories.IsNotFound(err), "got %v", err)

	require.NoError(t, svc.Delete(ctx, root, "user", key))
	assert.True(t, repositories.IsNotFound(svc.Delete(ctx, root, "user", key)))

	entries := journal.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, audit.ActionUpdate, entries[1].Action)
	assert.ElementsMatch(t, []string{"role", "banned", "password"}, entries[1].Detail["columns"])
	assert.Equal(t, audit.ActionDelete, entries[2].Action)
	assert.Equal(t, root.UserID, entries[2].ActorID)
}

func TestService_CompositeKeys(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	users := seedUsers(t, db, "a", "b")

	body := []byte(`{"follower_id":1,"followed_id":2}`)
	_, err := svc.Create(ctx, root, "followers", body)
	require.NoError(t, err)

	_, err = svc.Create(ctx, root, "followers", body)
	assert.True(t, repositories.IsIntegrityViolation(err), "got %v", err)

	_, err = svc.Create(ctx, root, "followers", []byte(`{"follower_id":1,"followed_id":1}`))
	assert.ErrorIs(t, err, repositories.ErrInvalidKey)
	_, err = svc.Create(ctx, root, "followers", []byte(`{"follower_id":1,"followed_id":99}`))
	assert.True(t, repositories.IsIntegrityViolation(err), "got %v", err)

	row, err := svc.Get(ctx, "followers", "1,2")
	require.NoError(t, err)
	assert.Equal(t, users[1].ID, row.(*models.Follower).FollowedID)

	_, err = svc.Get(ctx, "followers", "2,1")
	assert.True(t, repositories.IsNotFound(err))
	_, err = svc.Get(ctx, "followers", "1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Get(ctx, "followers", "x,2")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, root, "followers", "1,2", []byte(`{"followed_id":1}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.Delete(ctx, root, "followers", "1,2"))
	var n int64
	require.NoError(t, db.Model(&models.Follower{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestService_CreateJoinRows(t *testing.T) {
	svc, db, journal := newTestService(t)
	ctx := context.Background()
	users := seedUsers(t, db, "a")
	post := &models.Post{UserID: users[0].ID, Title: "p"}
	require.NoError(t, db.Create(post).Error)
	comment := &models.Comment{CommentedBy: users[0].ID, CommentedOn: post.ID, Comment: "c"}
	require.NoError(t, db.Create(comment).Error)

	for _, tc := range []struct {
		view string
		body string
	}{
		{"post_views", `{"user_id":1,"post_id":1}`},
		{"post_favourites", `{"user_id":1,"post_id":1}`},
		{"comment_likes", `{"user_id":1,"comment_id":1}`},
	} {
		t.Run(tc.view, func(t *testing.T) {
			_, err := svc.Create(ctx, root, tc.view, []byte(tc.body))
			require.NoError(t, err)
			_, err = svc.Create(ctx, root, tc.view, []byte(tc.body))
			assert.True(t, repositories.IsIntegrityViolation(err), "got %v", err)
		})
	}

	assert.Len(t, journal.Entries(), 3)
	var n int64
	require.NoError(t, db.Model(&models.PostView{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestService_DeleteCascades(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	users := seedUsers(t, db, "a", "b")

	post := &models.Post{UserID: users[0].ID, Title: "p"}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&models.Comment{CommentedOn: post.ID, CommentedBy: users[1].ID, Comment: "hi"}).Error)
	require.NoError(t, db.Create(&models.PostView{UserID: users[1].ID, PostID: post.ID}).Error)

	require.NoError(t, svc.Delete(ctx, root, "user", "1"))

	for _, model := range []interface{}{&models.Post{}, &models.Comment{}, &models.PostView{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

func TestService_Export(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{Username: "a", Email: "a@example.com", Password: "pw"}).Error)
	seedUsers(t, db, "b", "c")

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, "user", ListQuery{Search: "example"}, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "id", records[0][0])
	assert.NotContains(t, records[0], "password")
	assert.Contains(t, records[0], "stroage_used")
	assert.Equal(t, "1", records[1][0])
}

func mustView(t *testing.T, svc *Service, slug string) *View {
	t.Helper()
	v, err := svc.Registry().View(slug)
	require.NoError(t, err)
	return v
}
