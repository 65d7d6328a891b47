// Package identity wraps account management and session observation around
// the users table.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"bloom/internal/services"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already in use")
)

// Principal is an authenticated identity.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"` // encrypted in DB
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	CreatedAt    time.Time `db:"created_at"`
}

type Service struct {
	db        *sqlx.DB
	encSvc    *services.EncryptionService
	jwtSecret []byte
}

func NewService(db *sqlx.DB, encSvc *services.EncryptionService, jwtSecret []byte) *Service {
	return &Service{db: db, encSvc: encSvc, jwtSecret: jwtSecret}
}

// CreateAccount registers a new account. The email is stored encrypted with
// a blind index for lookup.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	encEmail, blindIndex, err := s.encSvc.EncryptEmail(email)
	if err != nil {
		return nil, fmt.Errorf("encrypt email: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, email, email_blind_index, password_hash) VALUES ($1, $2, $3, $4)`,
		id, encEmail, blindIndex, string(hashed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &Principal{ID: id, Email: email}, nil
}

// SignIn verifies credentials and returns the principal.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var u userRow
	err := s.db.GetContext(ctx, &u, `SELECT id, email, password_hash, display_name, created_at FROM users WHERE email_blind_index=$1`,
		s.encSvc.EmailBlindIndex(email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &Principal{ID: u.ID, Email: email, DisplayName: u.DisplayName}, nil
}

// IssueToken signs a JWT carrying the principal and its device session.
func (s *Service) IssueToken(principal *Principal, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": principal.ID,
		"sid": sessionID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
