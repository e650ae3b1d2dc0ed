package service

import (
	"Larder/internal/pkg/dbctx"
	"Larder/internal/repository"
)

// Scopes double as the backing table names used to seed a sequence.
const (
	ScopeUsers   = "users"
	ScopeRecipes = "recipes"
	ScopeReviews = "reviews"
)

// IdAllocator hands out identifiers from a locked sequence row inside the
// caller's transaction. A rolled back insert releases nothing it handed out
// because the advance rolls back with it.
type IdAllocator struct {
	idSequenceRepo repository.IdSequenceRepo
}

func NewIdAllocator(idSequenceRepo repository.IdSequenceRepo) *IdAllocator {
	return &IdAllocator{idSequenceRepo: idSequenceRepo}
}

func (a *IdAllocator) NextID(dbc dbctx.Context, scope string) (uint64, error) {
	seq, err := a.idSequenceRepo.GetSequenceForUpdate(dbc, scope)
	if err != nil {
		return 0, err
	}
	if seq == nil {
		maxID, err := a.idSequenceRepo.GetMaxID(dbc, scope)
		if err != nil {
			return 0, err
		}
		if err = a.idSequenceRepo.CreateSequence(dbc, scope, maxID+1); err != nil {
			return 0, err
		}
		// another transaction may have seeded it first; its row wins
		if seq, err = a.idSequenceRepo.GetSequenceForUpdate(dbc, scope); err != nil {
			return 0, err
		}
		if seq == nil {
			return 0, NewError(KindStorage, "service.id_allocator", "sequence row missing after seed", nil)
		}
	}

	id := seq.NextID
	if err = a.idSequenceRepo.AdvanceSequence(dbc, scope, id+1); err != nil {
		return 0, err
	}
	return id, nil
}
