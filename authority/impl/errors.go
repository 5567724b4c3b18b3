package impl

import "golang.org/x/xerrors"

var (
	// ErrInvalidInput is wrapped by every error reporting a violated
	// precondition: out of domain values, bad indices, inconsistent keys.
	ErrInvalidInput = xerrors.New("invalid input")

	// ErrSizeMismatch reports sequences of the wrong length. It wraps
	// ErrInvalidInput.
	ErrSizeMismatch = xerrors.Errorf("size mismatch: %w", ErrInvalidInput)
)

func invalidInput(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

func sizeMismatch(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrSizeMismatch)...)
}
