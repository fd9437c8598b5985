package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"careercast/internal/domain/user"
	"careercast/internal/storage"
	"careercast/pkg/auth"
	"careercast/pkg/errors"
	"careercast/pkg/logger"
)

var (
	// ErrInvalidCredentials is returned when identifier/password don't match
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service handles signup and login over the persistence gateway.
type Service struct {
	store      storage.Gateway
	jwtService *auth.JWTService
	log        *logger.Logger
}

// NewService creates a new auth service
func NewService(store storage.Gateway, jwtService *auth.JWTService) *Service {
	return &Service{
		store:      store,
		jwtService: jwtService,
		log:        logger.Get().With("service", "auth"),
	}
}

// SignupInput contains data for account creation
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput contains data for login. Username accepts either the username or
// the email address.
type LoginInput struct {
	Username string
	Password string
}

// AuthResponse contains a signed session token and the account it belongs to
type AuthResponse struct {
	Token string
	User  *user.User
}

// Signup registers a new account. Duplicate username or email surfaces as
// errors.ErrDuplicateKey; the storage engine enforces uniqueness, so there is
// no check-then-insert race.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*user.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" || email == "" || input.Password == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "all fields required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	u, err := s.store.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, errors.ErrDuplicateKey) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to create user")
	}

	s.log.Infof("User registered: %s", u.Username)
	return u, nil
}

// Login authenticates by username or email and returns a signed token.
// Unknown accounts and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	identifier := strings.TrimSpace(input.Username)
	if identifier == "" || input.Password == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "username and password required")
	}

	u, err := s.store.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(u.ID, u.Username, u.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}

	return &AuthResponse{Token: token, User: u}, nil
}
