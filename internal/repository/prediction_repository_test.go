package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/repository"
	dbbuilder "github.com/appsforbuild-cmyk/evalifyai-sub001/pkg/database"
)

func TestPredictionRepository_SaveAtomicity(t *testing.T) {
	ctx := context.Background()
	assessment := domain.NewAssessment(72, 65, nil, nil, domain.StrategyRuleBased)
	at := time.Date(2025, 10, 1, 2, 0, 0, 0, time.UTC)

	t.Run("history failure rolls back the upsert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO attrition_predictions").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO attrition_prediction_history").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		repo := repository.NewPredictionRepository(db, dbbuilder.DriverSQLite)
		err = repo.Save(ctx, "emp-1", assessment, at)

		assert.ErrorContains(t, err, "insert prediction history")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert failure never writes history", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO attrition_predictions").
			WillReturnError(errors.New("constraint"))
		mock.ExpectRollback()

		repo := repository.NewPredictionRepository(db, dbbuilder.DriverSQLite)
		err = repo.Save(ctx, "emp-1", assessment, at)

		assert.ErrorContains(t, err, "upsert prediction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("both writes commit together", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO attrition_predictions").
			WithArgs("emp-1", 72, "high", "30-60d", 65, "[]", "[]", "rule_based", at).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO attrition_prediction_history").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		repo := repository.NewPredictionRepository(db, dbbuilder.DriverSQLite)
		require.NoError(t, repo.Save(ctx, "emp-1", assessment, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
