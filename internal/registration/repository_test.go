package registration_test

import (
	"context"
	"testing"
	"time"

	commonmetrics "registration-service/common/metrics"
	"registration-service/internal/registration"
	"registration-service/testing/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Shared(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	models, indexes := registration.Schema()
	pgContainer.RunMigrations(t, models, indexes...)

	repo := registration.NewRepository(pgContainer.DB, commonmetrics.NewMock())
	validator := registration.NewValidator(registration.DefaultContract())
	ctx := context.Background()

	newRecord := func(t *testing.T, team string, withTeacher bool) *registration.Record {
		t.Helper()
		req := validRequest()
		req.TeamName = team
		if withTeacher {
			req.TeacherName = "Mrs. Silva"
			req.TeacherEmail = "silva@school.lk"
			req.TeacherPhone = "0771234567"
		}
		reg, err := validator.Validate(req)
		require.NoError(t, err)
		return registration.NewRecord(reg)
	}

	t.Run("Insert_AssignsIDAndTimestamp", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		rec, err := repo.Insert(ctx, newRecord(t, "Byte Force", false))
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.WithinDuration(t, time.Now(), rec.CreatedAt, time.Minute)
		assert.Equal(t, "+94712345678", rec.TeamLeadPhone)
		assert.Empty(t, rec.TeacherName)
		require.Len(t, rec.Members, 2)
		assert.Equal(t, "Kamal", rec.Members[0].Name)
	})

	t.Run("Insert_StoresTeacherAsNullWhenAbsent", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		_, err := repo.Insert(ctx, newRecord(t, "No Teacher", false))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, newRecord(t, "With Teacher", true))
		require.NoError(t, err)

		var nulls int
		err = pgContainer.DB.NewSelect().
			TableExpr("registrations").
			ColumnExpr("count(*)").
			Where("teacher_name IS NULL AND teacher_email IS NULL AND teacher_phone IS NULL").
			Scan(ctx, &nulls)
		require.NoError(t, err)
		assert.Equal(t, 1, nulls)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		for _, team := range []string{"First", "Second", "Third"} {
			rec := newRecord(t, team, team == "Second")
			_, err := repo.Insert(ctx, rec)
			require.NoError(t, err)
		}

		records, err := repo.ListNewestFirst(ctx)
		require.NoError(t, err)
		require.Len(t, records, 3)

		for i := 1; i < len(records); i++ {
			assert.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt))
		}
		teams := []string{records[0].TeamName, records[1].TeamName, records[2].TeamName}
		assert.ElementsMatch(t, []string{"First", "Second", "Third"}, teams)
	})

	t.Run("ListNewestFirst_Empty", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		records, err := repo.ListNewestFirst(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NotNil(t, records)
	})

	t.Run("Insert_ConstraintViolationIsRejected", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "registrations")

		rec, err := repo.Insert(ctx, newRecord(t, "Original", false))
		require.NoError(t, err)

		dup := newRecord(t, "Duplicate", false)
		dup.ID = rec.ID
		_, err = repo.Insert(ctx, dup)
		assert.ErrorIs(t, err, registration.ErrStorageRejected)
	})

	t.Run("Insert_CancelledContextIsUnavailable", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := repo.Insert(cancelled, newRecord(t, "Late", false))
		assert.ErrorIs(t, err, registration.ErrStorageUnavailable)
	})
}
