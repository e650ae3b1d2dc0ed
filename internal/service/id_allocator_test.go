package service

import (
	"Larder/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdAllocatorSeedsFromExistingRows(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&model.User{ID: 41, Name: "imported", Gender: "f", Password: "h"}).Error)

	dbc := readCtx(context.Background())
	id, err := f.ids.NextID(dbc, ScopeUsers)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	id, err = f.ids.NextID(dbc, ScopeUsers)
	require.NoError(t, err)
	assert.Equal(t, uint64(43), id)

	// scopes are independent
	id, err = f.ids.NextID(dbc, ScopeRecipes)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestIdAllocatorUsesExistingSequenceRow(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&model.IdSequence{Scope: ScopeReviews, NextID: 500}).Error)

	id, err := f.ids.NextID(readCtx(context.Background()), ScopeReviews)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), id)

	var seq model.IdSequence
	require.NoError(t, f.db.First(&seq, "scope = ?", ScopeReviews).Error)
	assert.Equal(t, uint64(501), seq.NextID)
}
