package executor

import (
	"errors"
	"fmt"
)

// ErrPoolClosed is returned by pool adapters when a borrow is attempted
// against a closed pool.
var ErrPoolClosed = errors.New("resource pool is closed")

// ErrSessionConcluded reports a protocol violation: a command was issued
// against a transaction session that already committed or aborted.
var ErrSessionConcluded = errors.New("transaction session already concluded")

// AcquisitionError reports that borrowing a resource from the pool failed.
// No resource was borrowed, so no release was attempted and the caller's
// operation was never invoked.
type AcquisitionError struct {
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire pooled resource: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// OperationError wraps a failure raised by the caller's operation or the
// underlying driver during non-transactional execution.
type OperationError struct {
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation failed: %v", e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// TransactionError wraps a failure raised during the begin/queue/commit
// protocol. If a recovery abort was attempted and itself failed, that failure
// is carried as Suppressed; it never replaces the primary cause.
type TransactionError struct {
	Err        error
	Suppressed error
}

func (e *TransactionError) Error() string {
	if e.Suppressed != nil {
		return fmt.Sprintf("transaction failed: %v (suppressed abort failure: %v)", e.Err, e.Suppressed)
	}
	return fmt.Sprintf("transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// inTaxonomy reports whether err already carries one of the executor error
// types, in which case it is surfaced unchanged rather than double-wrapped.
func inTaxonomy(err error) bool {
	var acq *AcquisitionError
	var op *OperationError
	var tx *TransactionError
	return errors.As(err, &acq) || errors.As(err, &op) || errors.As(err, &tx)
}
