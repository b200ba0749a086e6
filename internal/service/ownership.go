package service

import "github.com/dtroode/bookworm-server/internal/apierrors"

// CanMutate reports whether caller may modify a resource owned by owner. An
// empty caller never owns anything.
func CanMutate(ownerID, callerID string) bool {
	return callerID != "" && ownerID == callerID
}

// Authorize returns a Forbidden error unless caller owns the resource.
func Authorize(ownerID, callerID string) error {
	if !CanMutate(ownerID, callerID) {
		return apierrors.NewErrForbidden()
	}
	return nil
}
