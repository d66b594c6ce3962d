package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan request: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: uniqueViolation}, ErrAlreadyExists},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, nil},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			switch {
			case tt.err == nil:
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
			case tt.want == nil:
				// ошибка проходит без изменений
				if got != tt.err {
					t.Errorf("expected passthrough, got %v", got)
				}
			case !errors.Is(got, tt.want):
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNullString(t *testing.T) {
	if nullString("") != nil {
		t.Error("empty string should map to NULL")
	}
	if got := nullString("student_1"); got == nil || *got != "student_1" {
		t.Errorf("unexpected value %v", got)
	}
}
