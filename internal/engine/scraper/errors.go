package scraper

import "fmt"

// SessionError indicates the browser process could not be started.
// It is fatal for the whole run.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session: %v", e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// NavigationError indicates a listing page failed to load within its
// timeout. The affected category is abandoned; the run continues.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigating %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }
