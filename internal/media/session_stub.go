//go:build !linux && !windows

package media

// NewSession creates a new platform-specific media session
// This is the fallback for unsupported platforms
func NewSession() (Session, error) {
	return NewNoOpSession(), nil
}
