package admission

import (
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/services/filestore"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"gorm.io/gorm"
)

// AdmissionHandler handles the public application form and the admin review
// workflow around the provisioning engine.
type AdmissionHandler struct {
	db           *gorm.DB
	provisioning *services.ProvisioningService
	files        *filestore.Client
	audit        *services.AuditService
	validator    *validation.Validator
}

// NewAdmissionHandler creates a new admission handler. files may be nil when
// no object store is configured; document upload is then disabled.
func NewAdmissionHandler(db *gorm.DB, provisioning *services.ProvisioningService, files *filestore.Client, audit *services.AuditService) *AdmissionHandler {
	return &AdmissionHandler{
		db:           db,
		provisioning: provisioning,
		files:        files,
		audit:        audit,
		validator:    validation.NewValidator(),
	}
}
