package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-app/inkwell/internal/model"
	"github.com/inkwell-app/inkwell/internal/store"
	"github.com/inkwell-app/inkwell/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = token.ErrInvalidToken
)

// Identity is the decoded bearer identity attached to a request.
type Identity struct {
	UserID  string
	IsAdmin bool
}

type Service struct {
	store  store.Store
	tokens *token.Manager
}

func NewService(store store.Store, tokens *token.Manager) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register hashes the password and persists a new non-admin user. Email
// uniqueness is deliberately not checked here; the store accepts
// duplicates.
func (s *Service) Register(ctx context.Context, username, email, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      false,
		CreatedAt:    time.Now(),
	}
	if _, err := s.store.CreateUser(ctx, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token. An
// unknown email and a wrong password both yield ErrInvalidCredentials,
// so responses do not reveal which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID, user.IsAdmin)
}

// Authenticate verifies a bearer token string and returns the identity
// it encodes.
func (s *Service) Authenticate(bearer string) (Identity, error) {
	claims, err := s.tokens.Verify(bearer)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}
