package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"syncalendar/internal/models"
	"syncalendar/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
)

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// Validate checks the registration form the same way the sign-up screen does.
func (r Registration) Validate() error {
	if len([]rune(strings.TrimSpace(r.Name))) < 2 {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	var lower, upper, digit bool
	for _, c := range r.Password {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return fmt.Errorf("%w: password needs a lowercase letter, an uppercase letter and a digit", ErrInvalidInput)
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		return fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	return nil
}

// Service issues sessions for email/password and Google sign-in.
type Service struct {
	users  storage.UserRepository
	tokens storage.GoogleTokenRepository
	issuer *TokenIssuer
	log    *logrus.Entry
}

func NewService(users storage.UserRepository, tokens storage.GoogleTokenRepository, issuer *TokenIssuer, log *logrus.Entry) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		issuer: issuer,
		log:    log,
	}
}

func (s *Service) Register(ctx context.Context, r Registration) (Session, error) {
	op := "internal/auth/service.go Register"

	if err := r.Validate(); err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(r.Password)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email: strings.ToLower(strings.TrimSpace(r.Email)),
		Name:  strings.TrimSpace(r.Name),
	}
	if err := s.users.CreateUser(ctx, &user, hash); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.WithField("op", op).WithField("user_id", user.ID).Info("user registered")
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	op := "internal/auth/service.go Login"

	user, hash, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := CheckPassword(hash, password); err != nil {
		return Session{}, err
	}

	return s.session(user)
}

// GoogleSignIn finds or creates the account for a Google profile and stores
// the Google token, if any, for calendar mirroring.
func (s *Service) GoogleSignIn(ctx context.Context, gu GoogleUser, tok *oauth2.Token) (Session, error) {
	op := "internal/auth/service.go GoogleSignIn"

	user, _, err := s.users.GetUserByEmail(ctx, gu.Email)
	if errors.Is(err, storage.ErrNotFound) {
		user = models.User{Email: strings.ToLower(gu.Email), Name: gu.Name, Avatar: gu.Picture}
		if err := s.users.CreateUser(ctx, &user, ""); err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.WithField("op", op).WithField("user_id", user.ID).Info("user created from google profile")
	} else if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if tok != nil {
		if err := s.tokens.SaveGoogleToken(ctx, user.ID, tok); err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return s.session(user)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := s.issuer.Parse(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, ErrUnauthorized
	}
	if err != nil {
		return models.User{}, fmt.Errorf("internal/auth/service.go Authenticate: %w", err)
	}
	return user, nil
}

func (s *Service) Issuer() *TokenIssuer {
	return s.issuer
}

func (s *Service) session(user models.User) (Session, error) {
	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}
