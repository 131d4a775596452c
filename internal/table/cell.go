package table

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Cell is a single table value: either null or a scalar carrying its
// original textual representation. No type normalization is applied, so
// "1" and "1.0" are different cells.
type Cell struct {
	text  string
	valid bool
}

// Null returns the null cell.
func Null() Cell {
	return Cell{}
}

// Value returns a non-null cell holding s verbatim. The empty string is a
// valid, non-null value; loaders decide which source tokens mean null.
func Value(s string) Cell {
	return Cell{text: s, valid: true}
}

// FromAny converts a Go value (as produced by database drivers or decoded
// JSON) into a cell. nil becomes null; numbers use their shortest exact
// decimal form.
func FromAny(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Null()
	case Cell:
		return x
	case string:
		return Value(x)
	case []byte:
		return Value(string(x))
	case bool:
		return Value(strconv.FormatBool(x))
	case int:
		return Value(strconv.Itoa(x))
	case int16:
		return Value(strconv.FormatInt(int64(x), 10))
	case int32:
		return Value(strconv.FormatInt(int64(x), 10))
	case int64:
		return Value(strconv.FormatInt(x, 10))
	case float32:
		return Value(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		return Value(strconv.FormatFloat(x, 'f', -1, 64))
	case time.Time:
		return Value(x.Format(time.RFC3339Nano))
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return Value(fmt.Sprint(v))
		}
		if _, same := dv.(driver.Valuer); same {
			return Value(fmt.Sprint(dv))
		}
		return FromAny(dv)
	case fmt.Stringer:
		return Value(x.String())
	default:
		return Value(fmt.Sprint(v))
	}
}

// IsNull reports whether the cell is null.
func (c Cell) IsNull() bool {
	return !c.valid
}

// String returns the canonical string representation. Null is "".
func (c Cell) String() string {
	return c.text
}

// MarshalJSON encodes null cells as JSON null and values as strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts null, strings, numbers and booleans. Numbers keep
// their literal text.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Null()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Value(s)
		return nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Value(string(raw))
	return nil
}
