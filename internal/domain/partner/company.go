package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
)

// Role is the position a company holds in the supply chain
type Role string

const (
	RoleCustomer     Role = "CUSTOMER"
	RoleBroker       Role = "BROKER"
	RoleIntermediary Role = "INTERMEDIARY"
	RoleManufacturer Role = "MANUFACTURER"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleBroker, RoleIntermediary, RoleManufacturer:
		return true
	}
	return false
}

// Company is reference data for a party on a job. Maintaining companies is
// done elsewhere; this service only reads them.
type Company struct {
	shared.BaseEntity
	Name  string
	Role  Role
	Code  string
	Email string
}

// NewCompany creates a company
func NewCompany(name string, role Role, code, email string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_COMPANY_ROLE", "Unknown company role")
	}
	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Role:       role,
		Code:       NormalizeCode(code),
		Email:      strings.TrimSpace(email),
	}, nil
}

// NormalizeCode canonicalizes a customer code for lookups
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CompanyRepository reads companies
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByCode(ctx context.Context, code string) (*Company, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Company, error)
	Save(ctx context.Context, c *Company) error
}
