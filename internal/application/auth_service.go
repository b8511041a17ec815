package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/lablink/internal/persistence"
)

const bearerPrefix = "Bearer "

// AuthService coordinates registration, login, logout and token resolution.
type AuthService struct {
	store          StateStore
	idGenerator    func() string
	tokenGenerator func() string
	hashPassword   PasswordHasher
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(store StateStore, idGenerator, tokenGenerator func() string, hasher PasswordHasher) *AuthService {
	return NewAuthServiceWithLogger(store, idGenerator, tokenGenerator, hasher, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(store StateStore, idGenerator, tokenGenerator func() string, hasher PasswordHasher, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if tokenGenerator == nil {
		tokenGenerator = idGenerator
	}
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultArgon2idParams)
	}
	return &AuthService{
		store:          store,
		idGenerator:    idGenerator,
		tokenGenerator: tokenGenerator,
		hashPassword:   hasher,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks the credentials and issues a fresh opaque token. Users still
// carrying a plaintext secret are upgraded to a password hash on success.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("AuthService is not configured")
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	invalid := newError(ErrInvalidCredentials, "Invalid credentials")
	if email == "" || params.Password == "" {
		err = invalid
		return
	}

	err = s.store.Update(ctx, func(state *persistence.State) error {
		idx := findUserByEmail(state.Users, email)
		if idx < 0 {
			return invalid
		}
		user := &state.Users[idx]

		legacy, verifyErr := verifyUserSecret(*user, params.Password)
		if verifyErr != nil {
			return invalid
		}
		if legacy {
			hash, hashErr := s.hashPassword(params.Password)
			if hashErr != nil {
				return fmt.Errorf("hash password: %w", hashErr)
			}
			user.PasswordHash = hash
			user.Password = ""
		}

		token := s.tokenGenerator()
		if token == "" {
			return errors.New("token generator returned an empty token")
		}
		state.Tokens[token] = user.ID
		result = LoginResult{Token: token, User: userFromRecord(*user)}
		return nil
	})
	if err != nil {
		result = LoginResult{}
	}
	err = mapStoreError(err)
	return
}

// Register creates a new account with a hashed secret.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("AuthService is not configured")
		return
	}

	email := normalizeEmail(params.Email)
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	if email == "" || params.Password == "" {
		vErr := &ValidationError{Message: "email and password are required"}
		if email == "" {
			vErr.add("email", "email is required")
		}
		if params.Password == "" {
			vErr.add("password", "password is required")
		}
		err = vErr
		return
	}

	var hash string
	hash, err = s.hashPassword(params.Password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = email
	}

	err = s.store.Update(ctx, func(state *persistence.State) error {
		if findUserByEmail(state.Users, email) >= 0 {
			return newError(ErrConflict, "User already exists")
		}
		record := persistence.User{
			ID:           prefixedID("user", s.idGenerator()),
			Email:        email,
			Name:         name,
			PasswordHash: hash,
		}
		state.Users = append(state.Users, record)
		user = userFromRecord(record)
		return nil
	})
	if err != nil {
		user = User{}
	}
	err = mapStoreError(err)
	return
}

// Resolve returns the user a token belongs to.
func (s *AuthService) Resolve(ctx context.Context, token string) (User, error) {
	if s == nil || s.store == nil {
		return User{}, fmt.Errorf("AuthService is not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, newError(ErrUnauthorized, "Missing bearer token")
	}

	state := s.store.Snapshot()
	userID, ok := state.Tokens[token]
	if !ok {
		return User{}, newError(ErrUnauthorized, "Invalid session")
	}
	for _, u := range state.Users {
		if u.ID == userID {
			return userFromRecord(u), nil
		}
	}
	s.loggerWith(ctx, "Resolve", "user_id", userID).WarnContext(ctx, "token maps to a missing user")
	return User{}, newError(ErrUnauthorized, "Invalid session")
}

// CurrentUser resolves the caller from an Authorization header value.
func (s *AuthService) CurrentUser(ctx context.Context, authorization string) (User, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return User{}, newError(ErrUnauthorized, "Missing bearer token")
	}
	return s.Resolve(ctx, token)
}

// Logout revokes a token.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	if s == nil || s.store == nil {
		return fmt.Errorf("AuthService is not configured")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session revoked")
	}()

	token = strings.TrimSpace(token)
	err = s.store.Update(ctx, func(state *persistence.State) error {
		if _, ok := state.Tokens[token]; !ok || token == "" {
			return newError(ErrUnauthorized, "Invalid session")
		}
		delete(state.Tokens, token)
		return nil
	})
	return mapStoreError(err)
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>".
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findUserByEmail(users []persistence.User, email string) int {
	for i, u := range users {
		if normalizeEmail(u.Email) == email {
			return i
		}
	}
	return -1
}

func prefixedID(prefix, id string) string {
	return prefix + "-" + id
}
