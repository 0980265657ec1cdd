package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds reports a fee that is not smaller than the funding value.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrMalformedInput reports absent or malformed funding data.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidState reports a builder transition called out of order.
	ErrInvalidState = errors.New("invalid builder state")
)

// Stage names the step of a build that failed.
type Stage string

const (
	StageFunding  Stage = "funding"
	StageSighash  Stage = "sighash"
	StageSigning  Stage = "signing"
	StageEncoding Stage = "encoding"
)

// StageError tags an error with the build stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
