package encryption

// Result is the outcome of one file sent through the processor, consumed
// by the printer goroutine.
type Result struct {
	// Input is the source file path.
	Input string

	// Output is the written file path, empty when processing failed.
	Output string

	// OutputSize is the final size of Output in bytes.
	OutputSize int64

	// Error is the failure, if any; the other fields besides Input are
	// meaningless when it is set.
	Error error
}
