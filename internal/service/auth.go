package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"qa-assignment-api/internal/domain"
)

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
	Refresh(token string) (string, error)
}

// RehashChecker flags stored hashes that predate the current scheme.
type RehashChecker interface {
	NeedsRehash(hashed string) bool
}

const TokenTypeBearer = "bearer"

type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginResult struct {
	TokenPair
	User domain.User `json:"user"`
}

type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	rehash RehashChecker
	log    *zap.Logger
}

func NewAuthService(users domain.UserRepository, tokens TokenIssuer, rehash RehashChecker, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, rehash: rehash, log: l.Named("auth")}
}

func (s *AuthService) Register(email, password, name string) (domain.User, error) {
	u, err := s.users.Register(email, password, name)
	if err != nil {
		s.log.Info("register rejected", zap.String("email", email), zap.Error(err))
		return domain.User{}, err
	}
	s.log.Info("user registered", zap.Int("id", u.ID), zap.String("email", u.Email))
	return u, nil
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(email, password string) (LoginResult, error) {
	if !s.users.Verify(email, password) {
		s.log.Info("login failed", zap.String("email", email))
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	u, ok := s.users.Find(email)
	if !ok {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if s.rehash != nil && s.rehash.NeedsRehash(u.PasswordHash) {
		s.log.Warn("password hash uses an outdated scheme", zap.Int("id", u.ID))
	}
	tok, err := s.tokens.Issue(u.Email, 0)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Debug("login ok", zap.Int("id", u.ID))
	return LoginResult{TokenPair: TokenPair{AccessToken: tok, TokenType: TokenTypeBearer}, User: u}, nil
}

func (s *AuthService) Refresh(token string) (TokenPair, error) {
	tok, err := s.tokens.Refresh(token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			s.log.Debug("refresh rejected", zap.Error(err))
			return TokenPair{}, domain.ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("refresh token: %w", err)
	}
	return TokenPair{AccessToken: tok, TokenType: TokenTypeBearer}, nil
}

// WhoAmI resolves a token to its user. A valid token whose subject is not in
// the store yields domain.ErrNotFound.
func (s *AuthService) WhoAmI(token string) (domain.User, error) {
	sub, err := s.tokens.Verify(token)
	if err != nil {
		return domain.User{}, domain.ErrInvalidToken
	}
	u, ok := s.users.Find(sub)
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", sub, domain.ErrNotFound)
	}
	return u, nil
}
