package service

import (
	"Larder/internal/model"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/pkg/security"
	"Larder/internal/repository"
)

// Credential is the (userId, password) pair every mutation carries.
type Credential struct {
	UserID   uint64
	Password string
}

type AuthGate struct {
	userRepo repository.UserRepo
	hasher   security.PasswordHasher
}

func NewAuthGate(userRepo repository.UserRepo, hasher security.PasswordHasher) *AuthGate {
	return &AuthGate{userRepo: userRepo, hasher: hasher}
}

// Authenticate resolves the credential to an active user. The row is read
// under a shared lock so a concurrent soft-delete waits for this transaction.
// Unknown, deleted and wrong-password callers all get the same AuthError.
func (g *AuthGate) Authenticate(dbc dbctx.Context, cred Credential) (*model.User, error) {
	if cred.UserID == 0 || cred.Password == "" {
		return nil, ErrMissingCredentials
	}
	user, err := g.userRepo.GetUserForShare(dbc, cred.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted {
		return nil, ErrAuthFailed
	}
	if err = g.hasher.CheckPasswordHash(cred.Password, user.Password); err != nil {
		return nil, ErrAuthFailed
	}
	return user, nil
}

// Authorize requires the caller to be the owner of the row.
func (g *AuthGate) Authorize(callerID, ownerID uint64) error {
	if callerID != ownerID {
		return UnauthorizedError
	}
	return nil
}
