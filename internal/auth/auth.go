package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Identity is what the rest of the application sees after a successful
// credential check. Plaintext secrets never leave this package.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Account struct {
	Username string
	Password string
	Role     string
}

// DefaultAccounts are the operator logins installed on first start.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", Password: "alfa@01admin", Role: "creator"},
		{Username: "dev", Password: "dev@123", Role: "creator"},
	}
}

type Authenticator struct {
	db     *sql.DB
	dbPath string
}

func NewAuthenticator(path string) *Authenticator {
	return &Authenticator{dbPath: path}
}

func (a *Authenticator) Init() error {
	var err error

	a.db, err = sql.Open("sqlite3", a.dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	if err = a.db.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	_, err = a.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("error creating users table: %w", err)
	}
	return nil
}

// Seed installs accounts that do not exist yet. Existing rows are left
// untouched, so restarts never reset changed passwords.
func (a *Authenticator) Seed(ctx context.Context, accounts []Account) error {
	for _, acct := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("error hashing password for %s: %w", acct.Username, err)
		}
		_, err = a.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO users (username, password_hash, role) VALUES (?, ?, ?)",
			acct.Username, string(hash), acct.Role)
		if err != nil {
			return fmt.Errorf("error seeding user %s: %w", acct.Username, err)
		}
	}
	return nil
}

// Verify checks a username/secret pair and returns the identity, or
// nil when the credentials do not match.
func (a *Authenticator) Verify(ctx context.Context, username, secret string) (*Identity, error) {
	row := a.db.QueryRowContext(ctx,
		"SELECT username, password_hash, role FROM users WHERE username = ?", username)

	var storedUser, hash, role string
	if err := row.Scan(&storedUser, &hash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading user %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		return nil, fmt.Errorf("error comparing password for %s: %w", username, err)
	}

	return &Identity{Username: storedUser, Role: role}, nil
}

func (a *Authenticator) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
