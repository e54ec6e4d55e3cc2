//go:build amd64 || arm64

package relax

// Pause hints to the processor that the caller is in a spin-wait loop. It
// executes PAUSE on amd64 and YIELD on arm64.
func Pause()
