package admin

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// ErrInvalidInput is returned for filters, keys and payloads that do not fit
// the view's columns.
var ErrInvalidInput = errors.New("invalid input")

var timeType = reflect.TypeOf(time.Time{})

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseValue converts the text form of a value into the Go type of field.
func parseValue(field *schema.Field, raw string) (interface{}, error) {
	t := field.FieldType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == timeType {
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("%w: %s: %q is not a time", ErrInvalidInput, field.DBName, raw)
	}

	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidInput, field.DBName, raw)
		}
		return b, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidInput, field.DBName, raw)
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a non-negative integer", ErrInvalidInput, field.DBName, raw)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidInput, field.DBName, raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// keyConditions turns a key of the form "a" or "a,b" into one equality per
// primary key column.
func keyConditions(v *View, key string) ([]clause.Expression, error) {
	pk := v.schema.PrimaryFields
	parts := strings.Split(key, ",")
	if key == "" || len(parts) != len(pk) {
		return nil, fmt.Errorf("%w: key %q does not address %s (%s)", ErrInvalidInput, key, v.Slug, strings.Join(v.PrimaryKey(), ","))
	}

	conds := make([]clause.Expression, 0, len(pk))
	for i, f := range pk {
		val, err := parseValue(f, strings.TrimSpace(parts[i]))
		if err != nil {
			return nil, err
		}
		conds = append(conds, clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: f.DBName}, Value: val})
	}
	return conds, nil
}

// KeyOf renders the key of a loaded row the way keyConditions reads it.
func KeyOf(v *View, row interface{}) string {
	rv := reflect.Indirect(reflect.ValueOf(row))
	parts := make([]string, 0, len(v.schema.PrimaryFields))
	for _, f := range v.schema.PrimaryFields {
		val, _ := f.ValueOf(context.Background(), rv)
		parts = append(parts, fmt.Sprint(val))
	}
	return strings.Join(parts, ",")
}
