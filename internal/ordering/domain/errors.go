package domain

import (
	"errors"
	"fmt"
)

// ---------- Errores de dominio ----------

var (
	// ErrUnroutableMessage indica que el bus no tiene handler registrado
	// para el tipo de comando recibido.
	ErrUnroutableMessage = errors.New("no handler registered for message")

	// ErrHealthCheck envuelve cualquier fallo (timeout incluido) del probe
	// contra el almacenamiento.
	ErrHealthCheck = errors.New("health check failed")

	// ErrInvalidCredentials se devuelve cuando la contraseña no verifica.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indica que el usuario no es dueño del recurso.
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFoundError indica que una búsqueda por id no encontró la entidad.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound comprueba si err es (o envuelve) un NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError indica que una regla de negocio fue violada
// (transición de estado ilegal, nombre de variación duplicado, etc.).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidation construye un ValidationError con formato printf.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation comprueba si err es (o envuelve) un ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError envuelve un fallo de la capa de almacenamiento durante
// el commit o una primitiva del repositorio.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistence construye un PersistenceError.
func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence comprueba si err es (o envuelve) un PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
