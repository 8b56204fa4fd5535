//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

// Available since macOS 10.15.
int screenCaptureAllowed() {
    return CGPreflightScreenCaptureAccess();
}

int askScreenCapture() {
    return CGRequestScreenCaptureAccess();
}
*/
import "C"

// HasScreenRecording reports whether the process may capture the screen.
func HasScreenRecording() bool {
	return C.screenCaptureAllowed() != 0
}

// RequestScreenRecording prompts for Screen Recording permission. It returns
// true if already granted; otherwise the process must be restarted once the
// user grants it in System Settings.
func RequestScreenRecording() bool {
	return C.askScreenCapture() != 0
}
