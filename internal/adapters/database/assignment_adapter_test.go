package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/entities"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/domain/repositories"
	"github.com/zatekoja/Referralnetworkdesign/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Referralnetworkdesign/backend/pkg/errors"
)

var assignmentRowColumns = []string{
	"id", "lead_id", "provider_id", "status", "month_bucket", "created_at", "updated_at",
}

func newMockedAssignmentRepo(t *testing.T) (repositories.AssignmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAssignmentAdapter(postgres.NewClientFromDB(db)), mock
}

func TestAssignmentAdapterCreate(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	mock.ExpectExec(`INSERT INTO "assignments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	err := repo.Create(context.Background(), &entities.Assignment{
		ID:          "a1",
		LeadID:      "l1",
		ProviderID:  "p1",
		Status:      entities.AssignmentStatusAssigned,
		MonthBucket: "2025-08",
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentAdapterGetActiveByLead(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM "assignments" WHERE .*'l1'.*ORDER BY "created_at" DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns).AddRow(
			"a1", "l1", "p1", "contacted", "2025-08", now, now,
		))

	assignment, err := repo.GetActiveByLead(context.Background(), "l1")

	require.NoError(t, err)
	assert.Equal(t, "a1", assignment.ID)
	assert.Equal(t, entities.AssignmentStatusContacted, assignment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentAdapterGetActiveByLeadNone(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	mock.ExpectQuery(`SELECT .* FROM "assignments"`).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))

	_, err := repo.GetActiveByLead(context.Background(), "l1")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestAssignmentAdapterUpdateProviderRequiresAssignedStatus(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	// Zero rows means the assignment left the assigned status concurrently.
	mock.ExpectExec(`UPDATE "assignments" SET .*'assigned'`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProvider(context.Background(), "a1", "p2")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentAdapterUpdateStatus(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	mock.ExpectExec(`UPDATE "assignments" SET .*'contacted'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "a1", entities.AssignmentStatusContacted)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentAdapterCountActive(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\).*FROM "assignments" WHERE .*'2025-08'`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountActive(context.Background(), "p1", "2025-08")

	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestAssignmentAdapterActiveCounts(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	mock.ExpectQuery(`SELECT "provider_id", COUNT\(\*\).*FROM "assignments" WHERE .*GROUP BY "provider_id"`).
		WillReturnRows(sqlmock.NewRows([]string{"provider_id", "count"}).
			AddRow("p1", 3).
			AddRow("p2", 1))

	counts, err := repo.ActiveCounts(context.Background(), "2025-08")

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 3, "p2": 1}, counts)
}

func TestAssignmentAdapterListReassignable(t *testing.T) {
	repo, mock := newMockedAssignmentRepo(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM "assignments" WHERE .*'assigned'.*ORDER BY "created_at" DESC LIMIT 2`).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns).
			AddRow("a2", "l2", "p1", "assigned", "2025-08", now, now).
			AddRow("a1", "l1", "p1", "assigned", "2025-08", now.Add(-time.Hour), now))

	assignments, err := repo.ListReassignable(context.Background(), "p1", "2025-08", 2)

	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "a2", assignments[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
