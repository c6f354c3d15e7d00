package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zhengbin-app/sociallink/internal/database"
	"github.com/zhengbin-app/sociallink/internal/models"
)

func newMockRepo(t *testing.T) (*database.AccountRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	return database.NewAccountRepository(sqlxDB), mock
}

func accountColumns() []string {
	return []string{"id", "owner_id", "platform", "account_name", "account_handle", "access_token", "token_expires_at", "created_at"}
}

func TestAccountRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	req := &models.AccountCreateRequest{
		OwnerID:       "user-1",
		Platform:      models.PlatformTwitter,
		AccountName:   "Twitter",
		AccountHandle: "alice",
		AccessToken:   models.ManualTrustToken,
	}

	id := uuid.New()
	rows := sqlmock.NewRows(accountColumns()).
		AddRow(id, "user-1", "twitter", "Twitter", "@alice", models.ManualTrustToken, nil, time.Now())
	mock.ExpectQuery("INSERT INTO social_accounts").WillReturnRows(rows)

	account, err := repo.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if account.AccountHandle != "@alice" {
		t.Errorf("AccountHandle = %q, want %q", account.AccountHandle, "@alice")
	}
	if account.Platform != models.PlatformTwitter {
		t.Errorf("Platform = %q, want twitter", account.Platform)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO social_accounts").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.AccountCreateRequest{
		OwnerID:       "user-1",
		Platform:      models.PlatformTwitter,
		AccountHandle: "@alice",
	})
	if !errors.Is(err, models.ErrAlreadyExists) {
		t.Fatalf("Create() error = %v, want ErrAlreadyExists", err)
	}
}

func TestAccountRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	testCases := []struct {
		name      string
		setupMock func()
		wantErr   error
	}{
		{
			name: "returns account when exists",
			setupMock: func() {
				rows := sqlmock.NewRows(accountColumns()).
					AddRow(id, "user-1", "linkedin", "LinkedIn", "@alice", "connected", nil, time.Now())
				mock.ExpectQuery("SELECT (.+) FROM social_accounts").WillReturnRows(rows)
			},
			wantErr: nil,
		},
		{
			name: "maps missing row to not found",
			setupMock: func() {
				mock.ExpectQuery("SELECT (.+) FROM social_accounts").WillReturnError(sql.ErrNoRows)
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			account, err := repo.GetByID(context.Background(), id)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("GetByID() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if account.ID != id {
				t.Errorf("ID = %v, want %v", account.ID, id)
			}
		})
	}
}

func TestAccountRepository_ListByOwner(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows(accountColumns()).
		AddRow(uuid.New(), "user-1", "twitter", "Twitter", "@alice", "connected", nil, time.Now()).
		AddRow(uuid.New(), "user-1", "facebook", "Facebook", "@mypage", "connected", nil, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM social_accounts").
		WithArgs("user-1").
		WillReturnRows(rows)

	accounts, err := repo.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("ListByOwner() returned %d accounts, want 2", len(accounts))
	}
}

func TestAccountRepository_ListByOwner_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM social_accounts").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows(accountColumns()))

	accounts, err := repo.ListByOwner(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("ListByOwner() returned %d accounts, want 0", len(accounts))
	}
}

func TestAccountRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	testCases := []struct {
		name      string
		setupMock func()
		wantErr   error
	}{
		{
			name: "deletes existing account",
			setupMock: func() {
				mock.ExpectExec("DELETE FROM social_accounts").
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: nil,
		},
		{
			name: "unknown id is not found",
			setupMock: func() {
				mock.ExpectExec("DELETE FROM social_accounts").
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			err := repo.Delete(context.Background(), id)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("Delete() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
