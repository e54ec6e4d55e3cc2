//go:build !amd64 && !arm64

package relax

// Pause hints to the processor that the caller is in a spin-wait loop. There
// is no such instruction on this architecture; the call itself is the delay.
//
//go:noinline
func Pause() {}
