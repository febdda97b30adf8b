package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/auth"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/validation"
)

const defaultRole = "CITIZEN"

// UserStore is the persistence the identity registry needs
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserService handles account business logic
type UserService struct {
	store    UserStore
	hasher   *auth.Hasher
	tokens   *auth.TokenIssuer
	validate *validation.Validator
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(store UserStore, hasher *auth.Hasher, tokens *auth.TokenIssuer, validate *validation.Validator, logger *zap.SugaredLogger) *UserService {
	return &UserService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an account. Email and username must be unused.
func (s *UserService) Register(ctx context.Context, req *models.Registration) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	if taken, err := s.store.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("email already exists: %s", req.Email)
	}
	if taken, err := s.store.ExistsByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("username already exists: %s", req.Username)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = defaultRole
	}
	now := s.now().UTC()
	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// the store enforces uniqueness again for concurrent registrations
	if err := s.store.Create(ctx, u); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.PersistenceFailed(err, "failed to save user")
		}
		return nil, err
	}

	s.logger.Infow("User registered", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if !s.hasher.Check(req.Password, u.PasswordHash) {
		s.logger.Warnw("Login failed", "user_id", u.ID)
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("User logged in", "user_id", u.ID)
	return &LoginResult{Token: token, User: u}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.Get(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.GetByEmail(ctx, email)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.List(ctx)
}

// Exists reports whether the email or username is taken. Empty arguments
// are not checked.
func (s *UserService) Exists(ctx context.Context, email, username string) (bool, error) {
	if email == "" && username == "" {
		return false, apperr.Invalid("email or username is required")
	}
	if email != "" {
		taken, err := s.store.ExistsByEmail(ctx, email)
		if err != nil || taken {
			return taken, err
		}
	}
	if username != "" {
		return s.store.ExistsByUsername(ctx, username)
	}
	return false, nil
}

// Update applies a sparse patch to an account
func (s *UserService) Update(ctx context.Context, id int64, patch *models.UserPatch) (*models.User, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !patch.Apply(u, s.now().UTC()) {
		return u, nil
	}

	if err := s.store.Update(ctx, u); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.PersistenceFailed(err, "failed to update user")
		}
		return nil, err
	}

	s.logger.Infow("User updated", "user_id", u.ID)
	return u, nil
}

// Delete removes an account. Complaints and notifications that reference it
// are owned by other services and stay in place.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("User deleted", "user_id", id)
	return nil
}
