// Package auth implementa el colaborador de hashing de contraseñas.
package auth

import (
	"github.com/davicafu/comanda/internal/ordering/domain"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher usa bcrypt con el coste por defecto.
type BcryptHasher struct{}

func NewBcryptHasher() *BcryptHasher { return &BcryptHasher{} }

func (BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ domain.PasswordHasher = (*BcryptHasher)(nil)
