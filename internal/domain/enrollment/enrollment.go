package enrollment

import (
	"context"

	"github.com/google/uuid"
)

// Dispatcher grants course access after a completed purchase. The checkout
// service guarantees a single logical grant per completed transaction, not
// single-call delivery; implementations must tolerate repeated calls for the
// same (user, course) pair.
type Dispatcher interface {
	GrantAccess(ctx context.Context, userID, courseID uuid.UUID) error
}
