package repositories

import (
	"context"

	"github.com/digitalblog/backoffice/internal/models"
	"gorm.io/gorm"
)

// Counter names a denormalized counter column and the join table it caches.
type Counter string

const (
	CounterPostViews      Counter = "post.views_count"
	CounterPostFavourites Counter = "post.favourites_count"
	CounterCommentLikes   Counter = "comment.likes_count"
)

// Drift is a row whose stored counter differs from its join-table count.
type Drift struct {
	Counter Counter `json:"counter"`
	ID      uint    `json:"id"`
	Stored  int64   `json:"stored"`
	Actual  int64   `json:"actual"`
}

// CounterRepository keeps the denormalized counters in line with the join
// tables. The join tables are the source of truth; the counters are a cache.
type CounterRepository interface {
	Recount(ctx context.Context) (map[Counter]int64, error)
	Drift(ctx context.Context) ([]Drift, error)
}

type counterSpec struct {
	counter   Counter
	model     interface{}
	table     string
	column    string
	joinTable string
	joinKey   string
}

var counterSpecs = []counterSpec{
	{CounterPostViews, &models.Post{}, "post", "views_count", "post_views", "post_id"},
	{CounterPostFavourites, &models.Post{}, "post", "favourites_count", "post_favourites", "post_id"},
	{CounterCommentLikes, &models.Comment{}, "comment", "likes_count", "comment_likes", "comment_id"},
}

type postgresCounterRepository struct {
	db *gorm.DB
}

func NewPostgresCounterRepository(db *gorm.DB) CounterRepository {
	return &postgresCounterRepository{db: db}
}

// Recount rewrites every drifted counter from its join table inside one
// transaction and returns how many rows changed per counter.
func (r *postgresCounterRepository) Recount(ctx context.Context) (map[Counter]int64, error) {
	changed := make(map[Counter]int64, len(counterSpecs))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, cs := range counterSpecs {
			actual := cs.actualCount(tx)
			res := tx.Model(cs.model).
				Where(gorm.Expr("? <> (?)", gorm.Expr(quoted(cs.column)), actual)).
				UpdateColumn(cs.column, cs.actualCount(tx))
			if res.Error != nil {
				return res.Error
			}
			changed[cs.counter] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return changed, nil
}

// Drift lists the rows whose counters no longer match the join tables.
func (r *postgresCounterRepository) Drift(ctx context.Context) ([]Drift, error) {
	var drifts []Drift
	db := r.db.WithContext(ctx)
	for _, cs := range counterSpecs {
		var rows []struct {
			ID     uint
			Stored int64
			Actual int64
		}
		err := db.Model(cs.model).
			Select("id, "+quoted(cs.column)+" AS stored, (?) AS actual", cs.actualCount(db)).
			Where(gorm.Expr("? <> (?)", gorm.Expr(quoted(cs.column)), cs.actualCount(db))).
			Order("id").
			Scan(&rows).Error
		if err != nil {
			return nil, classify(err)
		}
		for _, row := range rows {
			drifts = append(drifts, Drift{Counter: cs.counter, ID: row.ID, Stored: row.Stored, Actual: row.Actual})
		}
	}
	return drifts, nil
}

// actualCount is the correlated COUNT(*) of join rows for the outer row.
func (s counterSpec) actualCount(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table(s.joinTable).
		Select("COUNT(*)").
		Where(quoted(s.joinTable) + "." + quoted(s.joinKey) + " = " + quoted(s.table) + ".id")
}

func quoted(name string) string {
	return `"` + name + `"`
}
