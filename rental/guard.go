package rental

// CanEnterProtected reports whether a protected screen may be entered: a live
// session exists, or a credential is still persisted in durable storage (the
// latter covers entering a screen before Restore has run). This is a
// point-in-time check, re-evaluated on every navigation attempt.
func CanEnterProtected(store *SessionStore) bool {
	if store.Current() != nil {
		return true
	}
	return store.Token() != ""
}
