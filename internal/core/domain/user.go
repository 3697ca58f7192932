package domain

// UserRole controls which surfaces a user can reach. Mirrors the role
// groups of the legacy system.
type UserRole string

const (
	RoleTaxAnalyst  UserRole = "ANALISTA_TRIBUTARIO"
	RoleStockBroker UserRole = "CORREDOR_BOLSA"
	RoleAuditor     UserRole = "AUDITOR_INTERNO"
)

// User is an application account referenced as actor by events, ratings and
// audit records.
type User struct {
	UserID   string   `json:"userID"` // Primary key (UUID)
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
	AuditFields
}
