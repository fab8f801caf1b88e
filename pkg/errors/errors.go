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

package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilnet "k8s.io/apimachinery/pkg/util/net"
)

// Reason categorizes an error returned by the Kubernetes API client.
type Reason string

const (
	// ReasonUnknown is an error that could not be categorized.
	ReasonUnknown Reason = "Unknown"

	// ReasonAPIError is an error returned by the API server, e.g. the resource
	// was not found or the request was forbidden.
	ReasonAPIError Reason = "APIError"

	// ReasonServiceError is an error reaching the API server, e.g. the
	// connection was refused or timed out.
	ReasonServiceError Reason = "ServiceError"
)

// internalError encapsulates a semantic meaning to an error, allowing us to
// propagate the category of an error between scopes easily.
type internalError struct {
	Reason Reason
	Err    error
}

func (e *internalError) Error() string {
	return fmt.Sprintf("%v - %v", e.GetReason(), e.GetMessage())
}

func (e *internalError) Unwrap() error {
	return e.Err
}

func (e *internalError) GetReason() Reason {
	return e.Reason
}

func (e *internalError) GetMessage() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Error is exposed by errors to get a Reason and Message.
type Error interface {
	error
	GetReason() Reason
	GetMessage() string
}

// GetReason returns the Reason of err if it is an Error, otherwise
// ReasonUnknown.
func GetReason(err error) Reason {
	if rerr := Error(nil); errors.As(err, &rerr) {
		return rerr.GetReason()
	}
	return ReasonUnknown
}

// GetMessage returns the message of err if it is an Error.
func GetMessage(err error) string {
	if rerr := Error(nil); errors.As(err, &rerr) {
		return rerr.GetMessage()
	}
	return ""
}

// NewClientError wraps an error returned by the Kubernetes API client and
// tags it with its Reason. Returns nil if err is nil.
func NewClientError(err error) error {
	if err == nil {
		return nil
	}
	return &internalError{
		Reason: Classify(err),
		Err:    err,
	}
}

// IsAPIError returns true if err is an Error whose Reason is ReasonAPIError.
func IsAPIError(err error) bool {
	return GetReason(err) == ReasonAPIError
}

// IsServiceError returns true if err is an Error whose Reason is
// ReasonServiceError.
func IsServiceError(err error) bool {
	return GetReason(err) == ReasonServiceError
}

// Classify determines the Reason of an error returned by the Kubernetes API
// client. Status errors from the API server take precedence over transport
// errors.
func Classify(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}

	if status := apierrors.APIStatus(nil); errors.As(err, &status) {
		return ReasonAPIError
	}

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &urlErr),
		errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		utilnet.IsConnectionRefused(err),
		utilnet.IsConnectionReset(err),
		utilnet.IsProbableEOF(err):
		return ReasonServiceError
	}

	return ReasonUnknown
}
