// Package xerr models the OCR "returnDetail" error codes (spec.md §7) as
// a typed Go error, wrapping causes with github.com/pkg/errors the way
// the teacher wraps transport/storage failures with cmn.NewErrAborted /
// cmn.NewErrXactUsePrev (xact/xs/tcb.go).
package xerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Detail is the numeric returnDetail carried in a PolicyMsg (spec.md §6).
type Detail int

const (
	OK Detail = iota
	E_GUID_EXISTS
	E_PENDING
	E_BUSY
	E_NOMEM
	E_INVAL
	E_NOTSUP
	E_NOENT
	E_FAULT
	E_PERM
)

func (d Detail) String() string {
	switch d {
	case OK:
		return "OK"
	case E_GUID_EXISTS:
		return "E_GUID_EXISTS"
	case E_PENDING:
		return "E_PENDING"
	case E_BUSY:
		return "E_BUSY"
	case E_NOMEM:
		return "E_NOMEM"
	case E_INVAL:
		return "E_INVAL"
	case E_NOTSUP:
		return "E_NOTSUP"
	case E_NOENT:
		return "E_NOENT"
	case E_FAULT:
		return "E_FAULT"
	case E_PERM:
		return "E_PERM"
	default:
		return fmt.Sprintf("Detail(%d)", int(d))
	}
}

// OpError is the error value returned across the core's public surface.
type OpError struct {
	Op     string // the OCR call or internal operation that failed
	Detail Detail
	Loc    string // PD/location tag, set by callers that know their PD
	Cause  error
}

func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *OpError) Unwrap() error { return e.Cause }

// New constructs a detail-only OpError (no underlying cause), the
// equivalent of OCR returning a bare error code.
func New(op string, detail Detail) error {
	return &OpError{Op: op, Detail: detail}
}

// Wrap attaches a returnDetail to an arbitrary cause, stack-annotated via
// pkg/errors so diagnostics retain the originating frame.
func Wrap(op string, detail Detail, cause error) error {
	if cause == nil {
		return New(op, detail)
	}
	return &OpError{Op: op, Detail: detail, Cause: errors.WithStack(cause)}
}

// Is reports whether err (or anything it wraps) carries the given detail.
func Is(err error, detail Detail) bool {
	var oe *OpError
	for err != nil {
		if e, ok := err.(*OpError); ok {
			oe = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return oe != nil && oe.Detail == detail
}

// DetailOf extracts the Detail from err, or OK if err is nil, or
// E_FAULT if err is a plain error without a Detail.
func DetailOf(err error) Detail {
	if err == nil {
		return OK
	}
	if oe, ok := err.(*OpError); ok {
		return oe.Detail
	}
	return E_FAULT
}
