package postgres_test

import "database/sql/driver"

// sliceArgConverter lets sqlmock accept slice arguments the way the pgx
// stdlib driver does for ANY($1) bindings; everything else falls through
// to the default converter.
type sliceArgConverter struct{}

func (sliceArgConverter) ConvertValue(v any) (driver.Value, error) {
	switch v.(type) {
	case []int64, []string:
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}
