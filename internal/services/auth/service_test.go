package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"careercast/internal/domain/prediction"
	"careercast/internal/domain/user"
	pkgauth "careercast/pkg/auth"
	pkgerrors "careercast/pkg/errors"
)

// MockGateway is a mock for storage.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateUser(ctx context.Context, username, email, passwordHash string) (*user.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockGateway) FindUserByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockGateway) SavePrediction(ctx context.Context, rec *prediction.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockGateway) ListPredictionsByUser(ctx context.Context, userID string, limit int) ([]*prediction.Record, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*prediction.Record), args.Error(1)
}

func (m *MockGateway) ListAllPredictionsWithUser(ctx context.Context, limit int) ([]*prediction.RecordWithUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*prediction.RecordWithUser), args.Error(1)
}

func (m *MockGateway) Engine() string                     { return "mock" }
func (m *MockGateway) Health(ctx context.Context) error   { return nil }
func (m *MockGateway) Close(ctx context.Context) error    { return nil }

func testJWTService() *pkgauth.JWTService {
	return pkgauth.NewJWTService("test-secret-key-min-32-characters-long", "test", time.Hour)
}

func TestSignup_Success(t *testing.T) {
	store := new(MockGateway)
	store.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.AnythingOfType("string")).
		Return(&user.User{ID: "1", Username: "alice", Email: "alice@example.com"}, nil)

	service := NewService(store, testJWTService())

	u, err := service.Signup(context.Background(), SignupInput{
		Username: " alice ",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	// The stored hash must verify against the original password
	storedHash := store.Calls[0].Arguments.String(3)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret123")))
	store.AssertExpectations(t)
}

func TestSignup_MissingFields(t *testing.T) {
	service := NewService(new(MockGateway), testJWTService())

	_, err := service.Signup(context.Background(), SignupInput{Username: "alice"})

	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
}

func TestSignup_Duplicate(t *testing.T) {
	store := new(MockGateway)
	store.On("CreateUser", mock.Anything, "alice", "alice@example.com", mock.Anything).
		Return(nil, pkgerrors.Wrap(pkgerrors.ErrDuplicateKey, "username taken"))

	service := NewService(store, testJWTService())

	_, err := service.Signup(context.Background(), SignupInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateKey)
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	store := new(MockGateway)
	store.On("FindUserByIdentifier", mock.Anything, "alice@example.com").
		Return(&user.User{ID: "1", Username: "alice", Email: "alice@example.com", PasswordHash: string(hash)}, nil)

	service := NewService(store, testJWTService())

	resp, err := service.Login(context.Background(), LoginInput{
		Username: "alice@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := testJWTService().ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	store := new(MockGateway)
	store.On("FindUserByIdentifier", mock.Anything, "alice").
		Return(&user.User{ID: "1", Username: "alice", PasswordHash: string(hash)}, nil)

	service := NewService(store, testJWTService())

	_, err = service.Login(context.Background(), LoginInput{Username: "alice", Password: "nope"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	store := new(MockGateway)
	store.On("FindUserByIdentifier", mock.Anything, "ghost").
		Return(nil, pkgerrors.Wrap(pkgerrors.ErrNotFound, "user not found"))

	service := NewService(store, testJWTService())

	_, err := service.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})

	// Unknown user and wrong password are indistinguishable
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
