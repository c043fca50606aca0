package view

// LoadingState is the per-control busy flag. While Loading is true the
// control carries exactly one indicator and is disabled.
type LoadingState struct {
	Loading bool
}

// NextLoading is the state transition for SetLoading. Asking for the state
// the control is already in returns it unchanged, so enabling twice never
// yields a second indicator and disabling an idle control is a no-op.
func NextLoading(s LoadingState, loading bool) LoadingState {
	if s.Loading == loading {
		return s
	}
	return LoadingState{Loading: loading}
}

// SetLoading attaches (loading=true) or removes the loading indicator of c
// and disables or re-enables it accordingly.
func SetLoading(c *Control, loading bool) {
	c.mu.Lock()
	c.state = NextLoading(c.state, loading)
	c.mu.Unlock()
}
