// Package admin describes the back-office views over the blog schema and
// serves the generic list, detail and edit operations behind them.
package admin

import (
	"gorm.io/gorm/schema"
)

// View is the admin screen of one table.
type View struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`

	// Model is a pointer to the zero value of the gorm model shown by the view.
	Model interface{} `json:"-"`

	ColumnFilters     []string `json:"column_filters"`
	SearchableColumns []string `json:"searchable_columns"`
	EditableColumns   []string `json:"editable_columns"`
	// Aliases lets filters name a relationship instead of its key column,
	// e.g. "author" for user_id.
	Aliases map[string]string `json:"aliases,omitempty"`

	PageSize       int  `json:"page_size"`
	CanCreate      bool `json:"can_create"`
	CanEdit        bool `json:"can_edit"`
	CanDelete      bool `json:"can_delete"`
	CanExport      bool `json:"can_export"`
	CanViewDetails bool `json:"can_view_details"`
	CreateModal    bool `json:"create_modal"`
	EditModal      bool `json:"edit_modal"`

	schema *schema.Schema
}

// MenuLink is an extra entry of the admin menu pointing outside the back-office.
type MenuLink struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// Table is the database table the view reads.
func (v *View) Table() string {
	if v.schema == nil {
		return ""
	}
	return v.schema.Table
}

// PrimaryKey lists the primary key columns in key order.
func (v *View) PrimaryKey() []string {
	if v.schema == nil {
		return nil
	}
	cols := make([]string, 0, len(v.schema.PrimaryFields))
	for _, f := range v.schema.PrimaryFields {
		cols = append(cols, f.DBName)
	}
	return cols
}

// Columns lists every stored column in declaration order.
func (v *View) Columns() []string {
	if v.schema == nil {
		return nil
	}
	return append([]string(nil), v.schema.DBNames...)
}

func (v *View) column(name string) (string, bool) {
	if col, ok := v.Aliases[name]; ok {
		name = col
	}
	for _, c := range v.ColumnFilters {
		if c == name {
			return c, true
		}
	}
	return "", false
}

func (v *View) editable(col string) bool {
	for _, c := range v.EditableColumns {
		if c == col {
			return true
		}
	}
	return false
}

func (v *View) field(col string) *schema.Field {
	if v.schema == nil {
		return nil
	}
	return v.schema.LookUpField(col)
}
