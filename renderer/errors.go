package renderer

import "github.com/cockroachdb/errors"

// Error categories of the frame loop. Every error leaving this package or one of the Vulkan backed
// implementations is marked with exactly one of them, callers test with errors.Is.
var (
	ErrSwapchainCreation = errors.New("swapchain creation failed")
	ErrResourceCreation  = errors.New("resource creation failed")
	ErrAcquire           = errors.New("image acquisition failed")
	ErrCommandRecord     = errors.New("command recording failed")
	ErrSubmit            = errors.New("queue submission failed")
	ErrPresent           = errors.New("presentation failed")
	ErrFenceTimeout      = errors.New("fence wait timed out")
	ErrFenceWait         = errors.New("fence wait failed")
)

var categories = []error{
	ErrSwapchainCreation,
	ErrResourceCreation,
	ErrAcquire,
	ErrCommandRecord,
	ErrSubmit,
	ErrPresent,
	ErrFenceTimeout,
	ErrFenceWait,
}

// Mark wraps err with a message and attaches the given category. An error that already carries a category keeps
// it, so the innermost classification wins.
func Mark(err error, category error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrapf(err, format, args...)
	if Category(err) != nil {
		return wrapped
	}
	return errors.Mark(wrapped, category)
}

// Category returns the category err is marked with or nil.
func Category(err error) error {
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}

// Newf creates a fresh error already marked with category.
func Newf(category error, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), category)
}
