package admin

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPassword = errors.New("invalid admin password")

// Service checks the shared admin secret and hands out sessions.
type Service struct {
	secret   string
	hashed   bool
	sessions *Sessions
}

// NewService accepts the secret either as plain text or as a bcrypt hash.
func NewService(secret string, sessions *Sessions) *Service {
	return &Service{
		secret:   secret,
		hashed:   isBcryptHash(secret),
		sessions: sessions,
	}
}

func isBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func (s *Service) Authenticate(password string) error {
	if password == "" {
		return ErrInvalidPassword
	}

	if s.hashed {
		if err := bcrypt.CompareHashAndPassword([]byte(s.secret), []byte(password)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(s.secret)), []byte(password)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// Login authenticates password and returns a session token with its expiry.
func (s *Service) Login(password string) (string, time.Time, error) {
	if err := s.Authenticate(password); err != nil {
		return "", time.Time{}, err
	}
	return s.sessions.Issue()
}

func (s *Service) Sessions() *Sessions {
	return s.sessions
}
