package services

// Guard decides whether a caller may act on a resource. Callers pass the
// owner or participant id read from the stored record, never one taken from
// the request payload.
type Guard struct{}

func (Guard) Authorize(callerID, ownerID uint) error {
	if callerID == 0 || callerID != ownerID {
		return ErrForbidden
	}
	return nil
}
