package auth

import (
	"context"
	"time"

	"github.com/busesamerica/buses-america-inventory/internal/modules/user"
	"github.com/busesamerica/buses-america-inventory/internal/platform/apperr"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

type service struct {
	userRepo user.Repository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(userRepo user.Repository, secret string, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{userRepo: userRepo, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	now := s.now()
	expirationTime := now.Add(s.ttl)
	c := &claims{
		Email: u.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Token{AccessToken: tokenString, TokenType: "Bearer", ExpiresAt: expirationTime}, nil
}

func (s *service) Verify(tokenString string) (Operator, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Operator{}, apperr.Unauthorized("invalid or expired token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Operator{}, apperr.Unauthorized("invalid token subject")
	}
	return Operator{ID: id, Email: c.Email}, nil
}
