package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distingue clientes de gestores.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleManager  Role = "MANAGER"
)

// User representa un usuario del sistema. Password guarda siempre el hash,
// nunca la contraseña en claro.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventRecorder `json:"-"`
}

// NewUser crea un usuario con el hash de contraseña ya calculado.
func NewUser(email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) AggregateID() uuid.UUID { return u.ID }
