package admin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/digitalblog/backoffice/internal/access"
	"gorm.io/gorm"
)

// ErrUnknownView is returned when a slug names no registered view.
var ErrUnknownView = errors.New("unknown admin view")

const (
	defaultName     = "DigitalBlog"
	defaultPageSize = 10
	defaultSiteURL  = "https://digitalblog.repl.co/"
)

// Options tune Register. Zero values fall back to the stock back-office.
type Options struct {
	Name     string
	PageSize int
	SiteURL  string
}

// Registry is the set of admin views guarded by one access policy.
type Registry struct {
	Name   string
	Policy access.Policy
	Links  []MenuLink

	views  []*View
	bySlug map[string]*View
}

// Register builds the back-office: one view per table, guarded by policy,
// plus the link back to the public site. Every column a view lists must
// exist in its model.
func Register(db *gorm.DB, policy access.Policy, opts Options) (*Registry, error) {
	if db == nil {
		return nil, errors.New("admin: nil database handle")
	}
	if policy == nil {
		return nil, errors.New("admin: nil access policy")
	}
	if opts.Name == "" {
		opts.Name = defaultName
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.SiteURL == "" {
		opts.SiteURL = defaultSiteURL
	}

	r := &Registry{
		Name:   opts.Name,
		Policy: policy,
		bySlug: make(map[string]*View),
	}
	for _, v := range blogViews() {
		if v.PageSize == 0 {
			v.PageSize = opts.PageSize
		}
		if err := r.add(db, v); err != nil {
			return nil, err
		}
	}
	r.Links = append(r.Links, MenuLink{Name: "Сайт", Category: "", URL: opts.SiteURL})

	slog.Info("admin views registered", "name", r.Name, "views", len(r.views))
	return r, nil
}

func (r *Registry) add(db *gorm.DB, v *View) error {
	if _, dup := r.bySlug[v.Slug]; dup {
		return fmt.Errorf("admin: duplicate view %q", v.Slug)
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(v.Model); err != nil {
		return fmt.Errorf("admin: parse model of view %q: %w", v.Slug, err)
	}
	v.schema = stmt.Schema

	for _, list := range [][]string{v.ColumnFilters, v.SearchableColumns, v.EditableColumns} {
		for _, col := range list {
			if f := v.schema.LookUpField(col); f == nil || f.DBName != col {
				return fmt.Errorf("admin: view %q lists unknown column %q of table %q", v.Slug, col, v.schema.Table)
			}
		}
	}
	for alias, col := range v.Aliases {
		if _, ok := v.column(col); !ok {
			return fmt.Errorf("admin: view %q alias %q points at unfiltered column %q", v.Slug, alias, col)
		}
	}

	r.views = append(r.views, v)
	r.bySlug[v.Slug] = v
	return nil
}

// Views returns the views in menu order.
func (r *Registry) Views() []*View {
	return append([]*View(nil), r.views...)
}

// View looks a view up by slug.
func (r *Registry) View(slug string) (*View, error) {
	v, ok := r.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, slug)
	}
	return v, nil
}

// Category groups the views shown under one menu heading.
type Category struct {
	Name  string  `json:"name"`
	Views []*View `json:"views"`
}

// Menu groups the views by category, uncategorized views first, keeping
// registration order inside each group.
func (r *Registry) Menu() []Category {
	var menu []Category
	index := make(map[string]int)
	for _, v := range r.views {
		i, ok := index[v.Category]
		if !ok {
			i = len(menu)
			index[v.Category] = i
			menu = append(menu, Category{Name: v.Category})
		}
		menu[i].Views = append(menu[i].Views, v)
	}
	return menu
}
