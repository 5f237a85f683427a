// Package errors provides examples of structured error handling in netbuf.
package errors_test

import (
	"fmt"
	"syscall"

	"github.com/ajitpratap0/netbuf/pkg/errors"
)

// Example demonstrates basic error creation and wrapping.
func Example() {
	// Create a new error with type
	err := errors.New(errors.ErrorTypeExhausted, "arena block budget reached")

	// Add context details
	err = err.WithDetail("blocks", 64).
		WithDetail("block_size", 1<<20)

	// Print the error
	fmt.Println(err.Error())

	// Output:
	// exhausted: arena block budget reached
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	// Simulate an underlying error from the operating system
	originalErr := syscall.ENOMEM

	// Wrap the error with context
	err := errors.Wrap(originalErr, errors.ErrorTypeExhausted, "mmap of buffer chunk failed").
		WithDetail("chunk_size", 16384)

	// Check the error type
	if errors.IsType(err, errors.ErrorTypeExhausted) {
		fmt.Println("This is an exhaustion error")
	}

	// Output:
	// This is an exhaustion error
}

// ExampleIsRetryable shows how to check if an error is retryable.
func ExampleIsRetryable() {
	// Create different types of errors
	tempErr := errors.New(errors.ErrorTypeExhausted, "no chunk available")
	fatalErr := errors.New(errors.ErrorTypeInternal, "allocator state corrupted")

	// Check if errors are retryable
	if errors.IsRetryable(tempErr) {
		fmt.Println("Exhaustion is retryable once buffers are returned")
	}

	if !errors.IsRetryable(fatalErr) {
		fmt.Println("Internal error is not retryable")
	}

	// Output:
	// Exhaustion is retryable once buffers are returned
	// Internal error is not retryable
}

// ExampleIsType demonstrates checking error types through wrapping.
func ExampleIsType() {
	cfgErr := errors.New(errors.ErrorTypeConfig, "chunk size below metadata overhead")

	// Wrap the error at a higher layer
	wrappedErr := errors.Wrap(cfgErr, errors.ErrorTypeValidation, "pool construction rejected")

	// IsType reports the outermost type
	fmt.Printf("Is validation error: %v\n", errors.IsType(wrappedErr, errors.ErrorTypeValidation))
	fmt.Printf("Is config error: %v\n", errors.IsType(wrappedErr, errors.ErrorTypeConfig))

	// Output:
	// Is validation error: true
	// Is config error: false
}

// Example_errorChain shows how error context accumulates across layers.
func Example_errorChain() {
	err := reserveChunk()
	if err != nil {
		err = errors.Wrap(err, errors.ErrorTypeExhausted, "borrow failed").
			WithDetail("pool", "frontend")

		fmt.Println("Full error chain:", err)
	}

	// Output:
	// Full error chain: exhausted: borrow failed: exhausted: arena block budget reached
}

// reserveChunk simulates an allocator running out of arena blocks
func reserveChunk() error {
	return errors.New(errors.ErrorTypeExhausted, "arena block budget reached").
		WithDetail("blocks", 64)
}
