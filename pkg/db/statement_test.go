package db

import (
	"errors"
	"testing"
)

func TestBuildInsertSkipsAbsentColumns(t *testing.T) {
	sql, args, err := BuildInsert("weekly_menus", "id", []OptionalColumn{
		{Name: "metadata", Present: true, Value: `{"LUNDI":[]}`},
		{Name: "is_published", Present: true, Value: true},
		{Name: "week_number", Present: false, Value: 12},
		{Name: "created_by", Present: false, Value: nil},
	})
	if err != nil {
		t.Fatalf("BuildInsert returned error: %v", err)
	}

	want := "INSERT INTO weekly_menus (metadata, is_published) VALUES (?, ?) RETURNING id"
	if sql != want {
		t.Fatalf("unexpected SQL:\n got %q\nwant %q", sql, want)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}

func TestBuildInsertNoColumnsFails(t *testing.T) {
	_, _, err := BuildInsert("weekly_menus", "", []OptionalColumn{
		{Name: "metadata", Present: false},
	})
	if !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}

func TestBuildInsertRejectsBadIdentifiers(t *testing.T) {
	cases := []struct {
		table string
		col   string
	}{
		{table: "weekly_menus; DROP TABLE users", col: "metadata"},
		{table: "weekly_menus", col: `is_published" = true --`},
		{table: "WeeklyMenus", col: "metadata"},
	}
	for _, tc := range cases {
		_, _, err := BuildInsert(tc.table, "", []OptionalColumn{{Name: tc.col, Present: true, Value: 1}})
		if err == nil {
			t.Fatalf("expected identifier rejection for table=%q col=%q", tc.table, tc.col)
		}
	}
}

func TestBuildUpdateWithWhere(t *testing.T) {
	sql, args, err := BuildUpdate("users",
		[]OptionalColumn{
			{Name: "failed_login_attempts", Present: true, Value: 0},
			{Name: "last_failed_login_at", Present: true, Value: nil},
			{Name: "missing_col", Present: false, Value: 1},
		},
		"id = ?", "abc",
	)
	if err != nil {
		t.Fatalf("BuildUpdate returned error: %v", err)
	}

	want := "UPDATE users SET failed_login_attempts = ?, last_failed_login_at = ? WHERE id = ?"
	if sql != want {
		t.Fatalf("unexpected SQL:\n got %q\nwant %q", sql, want)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args (2 set + 1 where), got %d", len(args))
	}
	if args[2] != "abc" {
		t.Fatalf("where arg should come last, got %v", args[2])
	}
}

func TestBuildUpdateNoColumnsFails(t *testing.T) {
	_, _, err := BuildUpdate("users", []OptionalColumn{{Name: "x", Present: false}}, "")
	if !errors.Is(err, ErrNoColumns) {
		t.Fatalf("expected ErrNoColumns, got %v", err)
	}
}
