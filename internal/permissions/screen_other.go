//go:build !darwin

package permissions

// HasScreenRecording is always true outside macOS.
func HasScreenRecording() bool { return true }

// RequestScreenRecording is a no-op outside macOS.
func RequestScreenRecording() bool { return true }
