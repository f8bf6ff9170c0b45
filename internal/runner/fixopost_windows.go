//go:build windows

package runner

// Console output on Windows is unaffected by raw input mode.
func fixOutputProcessing(int) {}
