package display

// Display renders frames in a native window.
type Display interface {
	Run() error
}
