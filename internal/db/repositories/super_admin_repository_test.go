package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var superAdminCols = []string{"id", "user_id", "role_name", "is_active", "expires_at", "created_at"}

func TestListAssignments(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := NewSuperAdminRepository(db)

	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM super_admin_role_assignments WHERE user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(superAdminCols).
			AddRow(int64(2), int64(1), "platform", true, expires, time.Now()).
			AddRow(int64(1), int64(1), "platform", false, nil, time.Now()))

	got, err := repo.ListAssignments(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ExpiresAt == nil || !got[0].ExpiresAt.Equal(expires) {
		t.Errorf("got[0].ExpiresAt = %v, want %v", got[0].ExpiresAt, expires)
	}
	if got[1].IsActive {
		t.Error("got[1].IsActive = true, want false")
	}
	if got[1].ExpiresAt != nil {
		t.Errorf("got[1].ExpiresAt = %v, want nil", got[1].ExpiresAt)
	}
}

func TestListAssignments_DBError(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := NewSuperAdminRepository(db)
	mock.ExpectQuery(`FROM super_admin_role_assignments`).WillReturnError(errDB)

	if _, err := repo.ListAssignments(context.Background(), 1); err == nil {
		t.Fatal("expected error, got nil")
	}
}
