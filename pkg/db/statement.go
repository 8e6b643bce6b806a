package db

import (
	"fmt"
	"regexp"
	"strings"
)

// OptionalColumn pairs a developer-defined column identifier with a runtime
// value. Present reflects a schema capability probe performed by the caller;
// absent columns are silently skipped so statements keep working against
// partially migrated tables. Identifiers must never originate from user
// input.
type OptionalColumn struct {
	Name    string
	Present bool
	Value   any
}

// ErrNoColumns is returned when a statement would reference zero columns.
// Callers treat it as a schema incompatibility, not an empty success.
var ErrNoColumns = fmt.Errorf("no resolvable columns for statement")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// BuildInsert renders a parameterized INSERT over the present columns.
// When returning is non-empty a RETURNING clause is appended so the caller
// can scan back generated values.
func BuildInsert(table string, returning string, cols []OptionalColumn) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if returning != "" {
		if err := checkIdent(returning); err != nil {
			return "", nil, err
		}
	}

	names := make([]string, 0, len(cols))
	marks := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		if !col.Present {
			continue
		}
		if err := checkIdent(col.Name); err != nil {
			return "", nil, err
		}
		names = append(names, col.Name)
		marks = append(marks, "?")
		args = append(args, col.Value)
	}
	if len(names) == 0 {
		return "", nil, ErrNoColumns
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(marks, ", "))
	if returning != "" {
		fmt.Fprintf(&b, " RETURNING %s", returning)
	}
	return b.String(), args, nil
}

// BuildUpdate renders a parameterized UPDATE over the present columns. The
// where clause is appended verbatim with its own arguments; pass an empty
// clause for a full-table update.
func BuildUpdate(table string, set []OptionalColumn, where string, whereArgs ...any) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}

	assignments := make([]string, 0, len(set))
	args := make([]any, 0, len(set)+len(whereArgs))
	for _, col := range set {
		if !col.Present {
			continue
		}
		if err := checkIdent(col.Name); err != nil {
			return "", nil, err
		}
		assignments = append(assignments, col.Name+" = ?")
		args = append(args, col.Value)
	}
	if len(assignments) == 0 {
		return "", nil, ErrNoColumns
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", table, strings.Join(assignments, ", "))
	if where != "" {
		fmt.Fprintf(&b, " WHERE %s", where)
		args = append(args, whereArgs...)
	}
	return b.String(), args, nil
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}
