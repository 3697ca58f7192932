package mapping

import (
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	"github.com/fintaxcl/tax_events_app/internal/models"
)

// ToDomainUser converts a model User to a domain User. The password hash is
// deliberately not part of the domain type.
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:      m.UserID,
		Username:    m.Username,
		Name:        m.Name,
		Role:        domain.UserRole(m.Role),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
