package domain

import "fmt"

// AccountType restricts the profile "tipo" field to its two legal values.
type AccountType string

const (
	AccountParticular AccountType = "particular"
	AccountEmpresa    AccountType = "empresa"
)

// ParseAccountType validates a raw tipo value.
func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(raw) {
	case AccountParticular, AccountEmpresa:
		return AccountType(raw), nil
	}
	return "", fmt.Errorf("invalid account type %q (valid options: particular, empresa)", raw)
}

// Profile is the per-user document kept in the document store, keyed by UID.
// Email is written once at registration and never changed from the client.
type Profile struct {
	UID      string      `json:"uid"`
	Nombre   string      `json:"nombre" validate:"required"`
	Apellido string      `json:"apellido" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Tipo     AccountType `json:"tipo" validate:"required,oneof=particular empresa"`
	Bio      string      `json:"bio"`
}
