package database

import (
	"time"
)

type User struct {
	ID               int       `json:"id"`
	Provider         string    `json:"provider"`
	ProviderID       string    `json:"provider_id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	AvatarURL        string    `json:"avatar_url"`
	Role             Role      `json:"role"`
	ProfileCompleted bool      `json:"profile_completed"`
	PasswordHash     string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const userColumns = `id, provider, provider_id, email, name, avatar_url, role, profile_completed, COALESCE(password_hash, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Provider, &user.ProviderID, &user.Email,
		&user.Name, &user.AvatarURL, &user.Role, &user.ProfileCompleted,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateOrUpdateUser upserts a federated-login user keyed by provider
// identity. Role defaults to client on first sign-in and is never
// overwritten here.
func (s *service) CreateOrUpdateUser(user *User) error {
	if user.Role == "" {
		user.Role = RoleClient
	}

	query := `
		INSERT INTO users (provider, provider_id, email, name, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (provider, provider_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING id, role, profile_completed, created_at, updated_at`

	err := s.db.QueryRow(query, user.Provider, user.ProviderID, user.Email, user.Name, user.AvatarURL, user.Role).
		Scan(&user.ID, &user.Role, &user.ProfileCompleted, &user.CreatedAt, &user.UpdatedAt)

	return err
}

// CreateUserWithPassword registers a password-credential account. The
// provider columns keep the same identity shape as OAuth accounts.
func (s *service) CreateUserWithPassword(user *User, passwordHash string) error {
	if user.Role == "" {
		user.Role = RoleClient
	}
	user.Provider = "password"
	user.ProviderID = user.Email

	query := `
		INSERT INTO users (provider, provider_id, email, name, avatar_url, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, profile_completed, created_at, updated_at`

	err := s.db.QueryRow(query, user.Provider, user.ProviderID, user.Email, user.Name, user.AvatarURL, user.Role, passwordHash).
		Scan(&user.ID, &user.ProfileCompleted, &user.CreatedAt, &user.UpdatedAt)

	return err
}

// GetUserByID retrieves a user by ID
func (s *service) GetUserByID(id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(query, id))
}

// GetUserByEmail retrieves a user by email
func (s *service) GetUserByEmail(email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRow(query, email))
}

// UpdateUserProfile records the complete-profile flow: display name and
// the completed flag.
func (s *service) UpdateUserProfile(id int, name string, profileCompleted bool) error {
	query := `UPDATE users SET name = $2, profile_completed = $3, updated_at = NOW() WHERE id = $1`
	_, err := s.db.Exec(query, id, name, profileCompleted)
	return err
}
