package service

import (
	"Larder/internal/api/dto"
	"Larder/internal/model"
	"Larder/internal/pkg/consts"
	"Larder/internal/pkg/dbctx"
	"Larder/internal/pkg/security"
	"Larder/internal/pkg/util"
	"Larder/internal/repository"
	"context"
	"strconv"

	"github.com/jinzhu/copier"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (uint64, error)
	Login(ctx context.Context, cred Credential) (uint64, error)
	UpdateProfile(ctx context.Context, cred Credential, req *dto.UpdateProfileDTO) error
	DeleteAccount(ctx context.Context, cred Credential, userID uint64) (bool, error)
	ToggleFollow(ctx context.Context, cred Credential, followingID uint64) (*ToggleResult, error)
	GetUser(ctx context.Context, userID uint64) (*dto.UserDTO, error)
	GetFollowCounts(ctx context.Context, userID uint64) (*dto.FollowCountDTO, error)
	GetHighestFollowRatio(ctx context.Context) (*dto.FollowRatioDTO, error)
}

type UserServiceImpl struct {
	base           BaseDeps
	userRepo       repository.UserRepo
	userFollowRepo repository.UserFollowRepo
	hasher         security.PasswordHasher
	auth           *AuthGate
	ids            *IdAllocator
}

func NewUserService(
	base BaseDeps,
	userRepo repository.UserRepo,
	userFollowRepo repository.UserFollowRepo,
	hasher security.PasswordHasher,
	auth *AuthGate,
	ids *IdAllocator,
) UserService {
	return &UserServiceImpl{
		base:           base.withDefaults(),
		userRepo:       userRepo,
		userFollowRepo: userFollowRepo,
		hasher:         hasher,
		auth:           auth,
		ids:            ids,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (uint64, error) {
	const op = "user.register"
	if req == nil {
		return 0, validationFailed(ctx, op, ErrParamInvalid)
	}
	if err := util.ValidateDTO(req); err != nil {
		return 0, validationFailed(ctx, op, err)
	}

	passwordHash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return 0, validationFailed(ctx, op, err)
	}

	var id uint64
	err = executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		newID, err := s.ids.NextID(dbc, ScopeUsers)
		if err != nil {
			return err
		}
		now := s.base.now()
		user := &model.User{
			ID:        newID,
			Name:      req.Name,
			Gender:    req.Gender,
			Age:       req.Age,
			Password:  passwordHash,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = s.userRepo.CreateUser(dbc, user); err != nil {
			return err
		}
		id = newID
		return nil
	})
	return id, err
}

func (s *UserServiceImpl) Login(ctx context.Context, cred Credential) (uint64, error) {
	var id uint64
	err := executeWrite(ctx, s.base, "user.login", func(dbc dbctx.Context) error {
		user, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}
		id = user.ID
		return nil
	})
	return id, err
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, cred Credential, req *dto.UpdateProfileDTO) error {
	const op = "user.update_profile"
	if req == nil || (req.Gender == nil && req.Age == nil) {
		return validationFailed(ctx, op, ErrParamInvalid)
	}
	if err := util.ValidateDTO(req); err != nil {
		return validationFailed(ctx, op, err)
	}

	return executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		user, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{"updated_at": s.base.now()}
		if req.Gender != nil {
			updates["gender"] = *req.Gender
		}
		if req.Age != nil {
			updates["age"] = *req.Age
		}
		return s.userRepo.UpdateUserProfile(dbc, user.ID, updates)
	})
}

// DeleteAccount soft-deletes the caller. Edges, reviews and recipes stay, and
// so do the counters derived from them.
func (s *UserServiceImpl) DeleteAccount(ctx context.Context, cred Credential, userID uint64) (bool, error) {
	const op = "user.delete_account"
	if userID == 0 {
		return false, validationFailed(ctx, op, ErrParamInvalid)
	}

	var deleted bool
	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		caller, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}
		target, err := s.userRepo.GetUserById(dbc, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrUserNotFound
		}
		if err = s.auth.Authorize(caller.ID, target.ID); err != nil {
			return err
		}
		affected, err := s.userRepo.SoftDeleteUser(dbc, target.ID)
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	return deleted, err
}

// ToggleFollow follows followingID, or unfollows when the edge already exists.
// The returned count is the follower count of followingID. Both user rows are
// locked first, so concurrent toggles on one pair apply one after another.
func (s *UserServiceImpl) ToggleFollow(ctx context.Context, cred Credential, followingID uint64) (*ToggleResult, error) {
	const op = "user.toggle_follow"
	if followingID == 0 {
		return nil, validationFailed(ctx, op, ErrParamInvalid)
	}
	if followingID == cred.UserID {
		return nil, validationFailed(ctx, op, ErrUserFollowSelf)
	}

	var result *ToggleResult
	err := executeWrite(ctx, s.base, op, func(dbc dbctx.Context) error {
		// both rows are locked up front in id order, so two opposite follows
		// between the same pair cannot deadlock on the counter updates
		if _, err := s.userRepo.LockUsers(dbc, []uint64{cred.UserID, followingID}); err != nil {
			return err
		}
		user, err := s.auth.Authenticate(dbc, cred)
		if err != nil {
			return err
		}

		edges := &followEdges{
			userRepo:       s.userRepo,
			userFollowRepo: s.userFollowRepo,
			now:            s.base.now(),
		}
		state, err := Toggle[uint64, uint64](dbc, edges, user.ID, followingID)
		if err != nil {
			return err
		}

		target, err := s.userRepo.GetUserById(dbc, followingID)
		if err != nil {
			return err
		}
		result = &ToggleResult{State: state, Count: target.FollowerCount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.base.Cache.Evict(ctx,
		consts.UserFollowingCountKey+strconv.FormatUint(cred.UserID, 10),
		consts.UserFollowerCountKey+strconv.FormatUint(followingID, 10),
	)
	return result, nil
}

// GetUser returns the profile with follower and following id lists. Deleted
// users are returned with IsDeleted set.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	const op = "user.get"
	dbc := readCtx(ctx)

	user, err := s.userRepo.GetUserById(dbc, userID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if user == nil {
		return nil, MapError(op, ErrUserNotFound)
	}

	userDTO := &dto.UserDTO{}
	if err = copier.Copy(userDTO, user); err != nil {
		return nil, MapError(op, err)
	}
	if userDTO.Followers, err = s.userFollowRepo.GetFollowerIDs(dbc, userID); err != nil {
		return nil, MapError(op, err)
	}
	if userDTO.Following, err = s.userFollowRepo.GetFollowingIDs(dbc, userID); err != nil {
		return nil, MapError(op, err)
	}
	return userDTO, nil
}

// GetFollowCounts serves both counters through the cache, falling back to the
// stored columns.
func (s *UserServiceImpl) GetFollowCounts(ctx context.Context, userID uint64) (*dto.FollowCountDTO, error) {
	const op = "user.follow_counts"
	idStr := strconv.FormatUint(userID, 10)
	followerKey := consts.UserFollowerCountKey + idStr
	followingKey := consts.UserFollowingCountKey + idStr

	follower, ok1 := s.base.Cache.GetCount(ctx, followerKey)
	following, ok2 := s.base.Cache.GetCount(ctx, followingKey)
	if ok1 && ok2 {
		return &dto.FollowCountDTO{FollowerCount: follower, FollowingCount: following}, nil
	}

	user, err := s.userRepo.GetUserById(readCtx(ctx), userID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if user == nil {
		return nil, MapError(op, ErrUserNotFound)
	}

	s.base.Cache.SetCount(ctx, followerKey, user.FollowerCount)
	s.base.Cache.SetCount(ctx, followingKey, user.FollowingCount)
	return &dto.FollowCountDTO{FollowerCount: user.FollowerCount, FollowingCount: user.FollowingCount}, nil
}

// GetHighestFollowRatio returns the active user with the highest
// follower/following ratio, or nil when nobody follows anyone.
func (s *UserServiceImpl) GetHighestFollowRatio(ctx context.Context) (*dto.FollowRatioDTO, error) {
	row, err := s.userRepo.GetHighestFollowRatio(readCtx(ctx))
	if err != nil {
		return nil, MapError("user.highest_follow_ratio", err)
	}
	if row == nil {
		return nil, nil
	}
	return &dto.FollowRatioDTO{UserID: row.UserID, Name: row.Name, Ratio: row.Ratio}, nil
}
