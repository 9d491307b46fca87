package app

import "transcripthub/pkg/domain"

// authorizeOwner gates every read or mutation that touches an owned record.
// The check runs before any side effect, so a forbidden request leaves no
// partial state behind.
func authorizeOwner(principal domain.User, ownerID string) error {
	if principal.ID != ownerID {
		return ErrForbidden
	}
	return nil
}
