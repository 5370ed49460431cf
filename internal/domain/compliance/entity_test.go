package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioSecure-Portal/pkg/errors"
)

func TestInputValidate(t *testing.T) {
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := issue.AddDate(0, 0, -1)

	err := (&Input{FarmID: uuid.New(), ComplianceType: "GAP", IssueDate: &issue, ExpiryDate: &expiry}).Validate()
	assert.True(t, errors.IsCode(err, errors.ErrCodeComplianceDateInvalid))

	err = (&Input{Status: "lost"}).Validate()
	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, errors.CodeValidation, ae.Code)
	assert.Contains(t, ae.Fields, "farm_id")
	assert.Contains(t, ae.Fields, "compliance_type")
	assert.Contains(t, ae.Fields, "status")
}

func TestNew_DefaultsToPending(t *testing.T) {
	in := &Input{FarmID: uuid.New(), ComplianceType: " Organic "}
	require.NoError(t, in.Validate())
	r := New(in)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "Organic", r.ComplianceType)
}

func TestExpiredAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Record{ExpiryDate: &past}).ExpiredAt(now))
	assert.False(t, (&Record{ExpiryDate: &future}).ExpiredAt(now))
	assert.False(t, (&Record{}).ExpiredAt(now))
}
