package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

var failureModeCols = []string{"id", "mpn", "family", "mode", "lambda", "detection_coverage", "created_at"}

func TestFailureModesByMPN(t *testing.T) {
	repo, mock := newMockRepo(t, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM failure_modes WHERE mpn = $1")).
		WithArgs("RC0603").
		WillReturnRows(sqlmock.NewRows(failureModeCols).
			AddRow(uuid.New().String(), "RC0603", nil, "open", 10.0, 0.9, time.Now().UTC()).
			AddRow(uuid.New().String(), "RC0603", nil, "drift", 5.0, nil, time.Now().UTC()))

	modes, err := repo.FailureModesByMPN(context.Background(), "RC0603")
	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.Equal(t, 0.9, modes[0].Coverage())
	assert.Nil(t, modes[1].DetectionCoverage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailureModesByFamily(t *testing.T) {
	repo, mock := newMockRepo(t, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(family) = lower($1) ORDER BY created_at, id")).
		WithArgs("Thick-Film").
		WillReturnRows(sqlmock.NewRows(failureModeCols).
			AddRow(uuid.New().String(), nil, "thick-film", "open", 1.0, nil, time.Now().UTC()))

	modes, err := repo.FailureModesByFamily(context.Background(), "Thick-Film", 0)
	require.NoError(t, err)
	require.Len(t, modes, 1)
	assert.Equal(t, "thick-film", modes[0].Family)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE family IS NOT NULL ORDER BY created_at, id LIMIT $1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(failureModeCols))

	modes, err = repo.FailureModesByFamily(context.Background(), "", 10)
	require.NoError(t, err)
	assert.NotNil(t, modes)
	assert.Empty(t, modes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFailureMode(t *testing.T) {
	repo, mock := newMockRepo(t, nil)
	id := uuid.New()
	created := time.Now().UTC()
	coverage := 0.5
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO failure_modes")).
		WithArgs("RC0603", nil, "short", 2.0, 0.5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), created))

	out, err := repo.CreateFailureMode(context.Background(), models.FailureMode{MPN: "RC0603", Mode: "short", Lambda: 2, DetectionCoverage: &coverage})
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.Equal(t, "short", out.Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFailureModeRequiresKey(t *testing.T) {
	repo, _ := newMockRepo(t, nil)
	_, err := repo.CreateFailureMode(context.Background(), models.FailureMode{Mode: "open"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrInvalidRequest))
}
