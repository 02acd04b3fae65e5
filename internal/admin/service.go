package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/digitalblog/backoffice/internal/access"
	"github.com/digitalblog/backoffice/internal/audit"
	"github.com/digitalblog/backoffice/internal/models"
	"github.com/digitalblog/backoffice/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery selects one page of a view.
type ListQuery struct {
	Page int
	// Filters maps a filter column (or alias) to a value. A column may carry
	// an operator suffix: "__like", "__gt", "__lt" or "__ne".
	Filters map[string]string
	Search  string
	Sort    string
	Desc    bool
}

// Page is one page of rows of a view.
type Page struct {
	View       string      `json:"view"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Items      interface{} `json:"items"`
}

// Service runs the list, detail and edit operations of the registered views.
type Service struct {
	db        *gorm.DB
	registry  *Registry
	recorder  audit.Recorder
	inserters map[string]inserter
}

func NewService(db *gorm.DB, registry *Registry, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{db: db, registry: registry, recorder: recorder, inserters: inserters(db)}
}

func (s *Service) Registry() *Registry { return s.registry }

// List returns the requested page of a view, filtered and searched.
func (s *Service) List(ctx context.Context, slug string, q ListQuery) (*Page, error) {
	v, err := s.registry.View(slug)
	if err != nil {
		return nil, err
	}
	query, err := s.listQuery(ctx, v, q)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, repositories.Classify(err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	items := newSlice(v)
	err = query.Offset((page - 1) * v.PageSize).Limit(v.PageSize).Find(items).Error
	if err != nil {
		return nil, repositories.Classify(err)
	}

	return &Page{
		View:       v.Slug,
		Page:       page,
		PageSize:   v.PageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(v.PageSize))),
		Items:      reflect.ValueOf(items).Elem().Interface(),
	}, nil
}

func (s *Service) listQuery(ctx context.Context, v *View, q ListQuery) (*gorm.DB, error) {
	var conds []clause.Expression

	for name, raw := range q.Filters {
		cond, err := filterCondition(v, name, raw)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		if len(v.SearchableColumns) == 0 {
			return nil, fmt.Errorf("%w: view %s is not searchable", ErrInvalidInput, v.Slug)
		}
		conds = append(conds, searchCondition(v, search))
	}

	order, err := orderBy(v, q.Sort, q.Desc)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(newModel(v))
	if len(conds) > 0 {
		query = query.Clauses(clause.Where{Exprs: conds})
	}
	return query.Order(order).Session(&gorm.Session{}), nil
}

func filterCondition(v *View, name, raw string) (clause.Expression, error) {
	op := ""
	if i := strings.LastIndex(name, "__"); i > 0 {
		name, op = name[:i], name[i+2:]
	}
	col, ok := v.column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be filtered by %q", ErrInvalidInput, v.Slug, name)
	}
	column := clause.Column{Table: clause.CurrentTable, Name: col}

	if op == "like" {
		return clause.Expr{
			SQL:  "LOWER(CAST(? AS TEXT)) LIKE ?",
			Vars: []interface{}{column, "%" + strings.ToLower(raw) + "%"},
		}, nil
	}

	val, err := parseValue(v.field(col), raw)
	if err != nil {
		return nil, err
	}
	switch op {
	case "":
		return clause.Eq{Column: column, Value: val}, nil
	case "ne":
		return clause.Neq{Column: column, Value: val}, nil
	case "gt":
		return clause.Gt{Column: column, Value: val}, nil
	case "lt":
		return clause.Lt{Column: column, Value: val}, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter operator %q", ErrInvalidInput, op)
	}
}

// searchCondition matches the term case-insensitively against any
// searchable column; non-text columns are compared in their text form.
func searchCondition(v *View, term string) clause.Expression {
	pattern := "%" + strings.ToLower(term) + "%"
	exprs := make([]clause.Expression, 0, len(v.SearchableColumns))
	for _, col := range v.SearchableColumns {
		column := clause.Column{Table: clause.CurrentTable, Name: col}
		sql := "LOWER(?) LIKE ?"
		if f := v.field(col); f == nil || f.FieldType.Kind() != reflect.String {
			sql = "CAST(? AS TEXT) LIKE ?"
		}
		exprs = append(exprs, clause.Expr{SQL: sql, Vars: []interface{}{column, pattern}})
	}
	return clause.Or(exprs...)
}

func orderBy(v *View, sort string, desc bool) (clause.OrderBy, error) {
	var cols []string
	if sort != "" {
		col, ok := v.column(sort)
		if !ok && !contains(v.PrimaryKey(), sort) {
			return clause.OrderBy{}, fmt.Errorf("%w: %s cannot be sorted by %q", ErrInvalidInput, v.Slug, sort)
		}
		if !ok {
			col = sort
		}
		cols = append(cols, col)
	}
	for _, pk := range v.PrimaryKey() {
		if !contains(cols, pk) {
			cols = append(cols, pk)
		}
	}

	order := clause.OrderBy{}
	for i, col := range cols {
		order.Columns = append(order.Columns, clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: col},
			Desc:   i == 0 && desc,
		})
	}
	return order, nil
}

// Get loads one row by key.
func (s *Service) Get(ctx context.Context, slug, key string) (interface{}, error) {
	v, err := s.registry.View(slug)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, v, key)
}

func (s *Service) load(ctx context.Context, db *gorm.DB, v *View, key string) (interface{}, error) {
	conds, err := keyConditions(v, key)
	if err != nil {
		return nil, err
	}
	row := newModel(v)
	if err := db.WithContext(ctx).Clauses(clause.Where{Exprs: conds}).Take(row).Error; err != nil {
		return nil, repositories.Classify(err)
	}
	return row, nil
}

// Create inserts a row decoded from its JSON form.
func (s *Service) Create(ctx context.Context, actor access.Caller, slug string, body []byte) (interface{}, error) {
	v, err := s.registry.View(slug)
	if err != nil {
		return nil, err
	}
	if !v.CanCreate {
		return nil, fmt.Errorf("%w: %s does not allow creating rows", ErrInvalidInput, v.Slug)
	}

	row := newModel(v)
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := models.Validate(row); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, v, row); err != nil {
		return nil, err
	}

	s.record(ctx, actor, audit.ActionCreate, v, KeyOf(v, row), nil)
	return row, nil
}

func (s *Service) insert(ctx context.Context, v *View, row interface{}) error {
	if insert, ok := s.inserters[v.Slug]; ok {
		return insert(ctx, row)
	}
	return repositories.Classify(s.db.WithContext(ctx).Create(row).Error)
}

// Update changes the editable columns named in the JSON object body and
// returns the stored row.
func (s *Service) Update(ctx context.Context, actor access.Caller, slug, key string, body []byte) (interface{}, error) {
	v, err := s.registry.View(slug)
	if err != nil {
		return nil, err
	}
	if !v.CanEdit {
		return nil, fmt.Errorf("%w: %s does not allow editing rows", ErrInvalidInput, v.Slug)
	}

	var changes map[string]interface{}
	if err := json.Unmarshal(body, &changes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	updates, err := editableUpdates(v, changes)
	if err != nil {
		return nil, err
	}

	var row interface{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(ctx, tx, v, key)
		if err != nil {
			return err
		}
		if err := tx.Model(current).Updates(updates).Error; err != nil {
			return repositories.Classify(err)
		}
		row, err = s.load(ctx, tx, v, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(updates))
	for col := range updates {
		columns = append(columns, col)
	}
	s.record(ctx, actor, audit.ActionUpdate, v, key, map[string]interface{}{"columns": columns})
	return row, nil
}

func editableUpdates(v *View, changes map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(changes))
	for name, raw := range changes {
		col, ok := v.column(name)
		if !ok || !v.editable(col) {
			return nil, fmt.Errorf("%w: %s.%s is not editable", ErrInvalidInput, v.Slug, name)
		}
		val, err := jsonValue(v, col, raw)
		if err != nil {
			return nil, err
		}
		updates[col] = val
	}
	return updates, nil
}

// jsonValue converts a decoded JSON value to the column's Go type.
func jsonValue(v *View, col string, raw interface{}) (interface{}, error) {
	var text string
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		text = val
	case bool:
		text = strconv.FormatBool(val)
	case float64:
		text = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return nil, fmt.Errorf("%w: %s.%s cannot hold %T", ErrInvalidInput, v.Slug, col, raw)
	}
	return parseValue(v.field(col), text)
}

// Delete removes one row. Rows depending on it are removed by the
// database's cascading foreign keys in the same transaction.
func (s *Service) Delete(ctx context.Context, actor access.Caller, slug, key string) error {
	v, err := s.registry.View(slug)
	if err != nil {
		return err
	}
	if !v.CanDelete {
		return fmt.Errorf("%w: %s does not allow deleting rows", ErrInvalidInput, v.Slug)
	}
	conds, err := keyConditions(v, key)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.Where{Exprs: conds}).Delete(newModel(v))
		if res.Error != nil {
			return repositories.Classify(res.Error)
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, actor, audit.ActionDelete, v, key, nil)
	return nil
}

// record journals a change. A journal failure never fails the change itself.
func (s *Service) record(ctx context.Context, actor access.Caller, action string, v *View, key string, detail map[string]interface{}) {
	err := s.recorder.Record(ctx, audit.Entry{
		ActorID:    actor.UserID,
		ActorEmail: actor.Email,
		Action:     action,
		View:       v.Slug,
		Key:        key,
		At:         time.Now().UTC(),
		Detail:     detail,
	})
	if err != nil {
		slog.Warn("audit record failed", "action", action, "view", v.Slug, "key", key, "error", err)
	}
}

func newModel(v *View) interface{} {
	return reflect.New(v.schema.ModelType).Interface()
}

func newSlice(v *View) interface{} {
	return reflect.New(reflect.SliceOf(v.schema.ModelType)).Interface()
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
