package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/src/model"
)

func TestExceptionRepositoryCreate(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewExceptionRepository(db)

	exc := &model.Exception{
		Service: "stocktracker",
		Module:  "portfolio",
		Method:  "SubmitTrade",
		Message: "position update failed",
		Level:   "error",
		Context: `{"reference":"abc"}`,
	}
	require.NoError(t, repo.Create(context.Background(), exc))
	assert.NotZero(t, exc.ID)

	var stored model.Exception
	require.NoError(t, db.First(&stored, exc.ID).Error)
	assert.Equal(t, "SubmitTrade", stored.Method)
	assert.Equal(t, `{"reference":"abc"}`, stored.Context)
}
