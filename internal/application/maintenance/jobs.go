package maintenance

import (
	"context"
	"time"

	"github.com/turtacn/BioSecure-Portal/internal/application/alert"
	"github.com/turtacn/BioSecure-Portal/internal/application/compliance"
)

const defaultJobTimeout = 5 * time.Minute

// ComplianceSweep expires active compliance records past their expiry date.
func ComplianceSweep(svc compliance.Service, schedule string, lock Locker) Job {
	return Job{
		Name:     JobComplianceSweep,
		Schedule: schedule,
		Timeout:  defaultJobTimeout,
		Lock:     lock,
		Run:      svc.ExpireDue,
	}
}

// AlertHousekeeping deactivates alerts older than maxAge.
func AlertHousekeeping(svc alert.Service, schedule string, maxAge time.Duration, lock Locker) Job {
	return Job{
		Name:     JobAlertHousekeeping,
		Schedule: schedule,
		Timeout:  defaultJobTimeout,
		Lock:     lock,
		Run: func(ctx context.Context) (int64, error) {
			return svc.DeactivateOlderThan(ctx, maxAge)
		},
	}
}
