package interfaces

import (
	"context"
	"time"

	"github.com/partnerflow/partnerflow/pkg/domain/model"
)

// AutomationRepository stores automation runs and the aggregations the
// dashboards are built on
type AutomationRepository interface {
	// Create stores a new automation with an auto-generated ID. CreatedAt is
	// kept when set.
	Create(ctx context.Context, automation *model.Automation) (*model.Automation, error)

	// Update replaces the activities of an existing automation
	Update(ctx context.Context, automation *model.Automation) (*model.Automation, error)

	// Get retrieves an automation by ID. Returns an error wrapping
	// model.ErrAutomationNotFound when no record exists.
	Get(ctx context.Context, id int64) (*model.Automation, error)

	// List returns the automations matching the filter, newest first, and
	// the number of matches before Offset and Limit are applied
	List(ctx context.Context, filter model.AutomationFilter) ([]*model.Automation, int, error)

	// UpsellingPartners ranks partners by onboarding automations created in
	// [from, to], returning one page and the total number of ranked partners
	UpsellingPartners(ctx context.Context, from, to time.Time, offset, limit int) ([]*model.UpsellingPartner, int, error)

	// PartnerStats counts onboarding and offboarding automations and distinct
	// partners created in [from, to]
	PartnerStats(ctx context.Context, from, to time.Time) (*model.PartnerStats, error)
}
