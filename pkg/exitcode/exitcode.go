/*
 * Copyright 2022 The Furiko Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package exitcode

import (
	"fmt"

	"github.com/pkg/errors"
	utilexec "k8s.io/utils/exec"

	rerrors "github.com/furiko-io/k8s-psl/pkg/errors"
)

// Exit codes returned by the command-line utility.
const (
	Success      = 0
	GenericError = 1
	UsageError   = 2
	APIError     = 66
	ServiceError = 68
)

// Outcome is the terminal state of a single run.
type Outcome string

const (
	OutcomeSuccess           Outcome = "Success"
	OutcomeUsageError        Outcome = "UsageError"
	OutcomeSpawnFailed       Outcome = "SpawnFailed"
	OutcomeChildFailed       Outcome = "ChildFailed"
	OutcomePatchAPIError     Outcome = "PatchAPIError"
	OutcomePatchServiceError Outcome = "PatchServiceError"
	OutcomeOtherError        Outcome = "OtherError"
)

// Error is an error that terminates the run with a specific exit code.
type Error struct {
	Outcome Outcome

	// ChildCode is the exit code of the child process, only meaningful for
	// OutcomeChildFailed.
	ChildCode int

	Err error
}

var _ utilexec.ExitError = (*Error)(nil)

// NewUsageError returns an Error for invalid arguments.
func NewUsageError(err error) *Error {
	return &Error{Outcome: OutcomeUsageError, Err: err}
}

// NewSpawnError returns an Error for a child process that could not be started.
func NewSpawnError(err error) *Error {
	return &Error{Outcome: OutcomeSpawnFailed, Err: err}
}

// NewChildError returns an Error for a child process that exited with a
// non-zero code. Codes outside of 1-255 cannot be propagated and are reported
// as OutcomeOtherError.
func NewChildError(code int) *Error {
	if code <= 0 || code > 255 {
		return &Error{
			Outcome: OutcomeOtherError,
			Err:     fmt.Errorf("command terminated with unrepresentable exit code %v", code),
		}
	}
	return &Error{
		Outcome:   OutcomeChildFailed,
		ChildCode: code,
		Err:       fmt.Errorf("command exited with code %v", code),
	}
}

// NewPatchError returns an Error for a failed patch request, depending on the
// Reason of err.
func NewPatchError(err error) *Error {
	outcome := OutcomeOtherError
	switch rerrors.GetReason(err) {
	case rerrors.ReasonAPIError:
		outcome = OutcomePatchAPIError
	case rerrors.ReasonServiceError:
		outcome = OutcomePatchServiceError
	}
	return &Error{Outcome: outcome, Err: err}
}

// NewOtherError returns an Error that maps to the generic exit code.
func NewOtherError(err error) *Error {
	return &Error{Outcome: OutcomeOtherError, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Outcome)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) String() string {
	return e.Error()
}

// Exited always returns true, the run terminates with ExitStatus.
func (e *Error) Exited() bool {
	return true
}

// ExitStatus returns the exit code for the outcome.
func (e *Error) ExitStatus() int {
	return Code(e.Outcome, e.ChildCode)
}

// Silent returns true if the error should not be printed. A failed child
// has already reported its own failure.
func (e *Error) Silent() bool {
	return e.Outcome == OutcomeChildFailed
}

// Code translates an outcome to an exit code.
func Code(outcome Outcome, childCode int) int {
	switch outcome {
	case OutcomeSuccess:
		return Success
	case OutcomeUsageError:
		return UsageError
	case OutcomeChildFailed:
		if childCode <= 0 || childCode > 255 {
			return GenericError
		}
		return childCode
	case OutcomePatchAPIError:
		return APIError
	case OutcomePatchServiceError:
		return ServiceError
	default:
		return GenericError
	}
}

// FromError returns the exit code for an error returned by the root command.
// Errors that are not *Error are argument parsing errors from cobra.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var exitErr *Error
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus()
	}
	return UsageError
}

// IsSilent returns true if err should not be printed to the user.
func IsSilent(err error) bool {
	var exitErr *Error
	return errors.As(err, &exitErr) && exitErr.Silent()
}
