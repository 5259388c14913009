// Package dbx opens the PostgreSQL pool and provides the column-table helpers
// the repositories use to keep SELECT, INSERT and UPDATE lists in one place.
package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL through lib/pq and verifies the connection.
func Open(ctx context.Context, url string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Column binds a column name to the struct field that holds it.
type Column struct {
	Name string
	Ptr  interface{}
}

type Columns []Column

// Names renders the comma separated column list.
func (cs Columns) Names() string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, ",")
}

// Ptrs returns the scan destinations in column order.
func (cs Columns) Ptrs() []interface{} {
	ptrs := make([]interface{}, len(cs))
	for i, c := range cs {
		ptrs[i] = c.Ptr
	}
	return ptrs
}

// Args returns the current field values in column order.
func (cs Columns) Args() []interface{} {
	args := make([]interface{}, len(cs))
	for i, c := range cs {
		args[i] = Arg(c.Ptr)
	}
	return args
}

// Placeholders renders "$start,$start+1,...".
func (cs Columns) Placeholders(start int) string {
	ph := make([]string, len(cs))
	for i := range cs {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ",")
}

// Pick returns the named columns in the order given. Unknown names are an error.
func (cs Columns) Pick(names ...string) (Columns, error) {
	index := make(map[string]Column, len(cs))
	for _, c := range cs {
		index[c.Name] = c
	}
	out := make(Columns, 0, len(names))
	for _, n := range names {
		c, ok := index[n]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		out = append(out, c)
	}
	return out, nil
}

// Find returns the field pointer of the named column.
func (cs Columns) Find(name string) (interface{}, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c.Ptr, true
		}
	}
	return nil, false
}

// Arg dereferences a field pointer into a driver argument. Valuers are passed
// through; nil pointer fields become NULL.
func Arg(ptr interface{}) interface{} {
	if v, ok := ptr.(driver.Valuer); ok {
		return v
	}
	rv := reflect.ValueOf(ptr)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		if v, ok := rv.Interface().(driver.Valuer); ok {
			return v
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return rv.Interface()
	}
}
