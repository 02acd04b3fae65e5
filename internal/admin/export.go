package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/digitalblog/backoffice/internal/repositories"
)

const exportBatchSize = 500

// hiddenColumns never leave the database through an export.
var hiddenColumns = map[string]bool{"password": true}

// Export writes every row matching q (ignoring paging) to w as CSV, one
// header line of column names first.
func (s *Service) Export(ctx context.Context, slug string, q ListQuery, w io.Writer) error {
	v, err := s.registry.View(slug)
	if err != nil {
		return err
	}
	if !v.CanExport {
		return fmt.Errorf("%w: %s does not allow exporting", ErrInvalidInput, v.Slug)
	}
	query, err := s.listQuery(ctx, v, q)
	if err != nil {
		return err
	}

	var columns []string
	for _, col := range v.Columns() {
		if !hiddenColumns[col] {
			columns = append(columns, col)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	for offset := 0; ; offset += exportBatchSize {
		batch := newSlice(v)
		if err := query.Offset(offset).Limit(exportBatchSize).Find(batch).Error; err != nil {
			return repositories.Classify(err)
		}
		rows := reflect.ValueOf(batch).Elem()
		for i := 0; i < rows.Len(); i++ {
			record := make([]string, len(columns))
			for j, col := range columns {
				val, _ := v.field(col).ValueOf(ctx, rows.Index(i))
				record[j] = csvValue(val)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		if rows.Len() < exportBatchSize {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvValue(val interface{}) string {
	rv := reflect.ValueOf(val)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return ""
	}
	if t, ok := rv.Interface().(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprint(rv.Interface())
}
