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

package exitcode_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilexec "k8s.io/utils/exec"

	rerrors "github.com/furiko-io/k8s-psl/pkg/errors"
	"github.com/furiko-io/k8s-psl/pkg/exitcode"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name      string
		outcome   exitcode.Outcome
		childCode int
		want      int
	}{
		{name: "success", outcome: exitcode.OutcomeSuccess, want: 0},
		{name: "usage error", outcome: exitcode.OutcomeUsageError, want: 2},
		{name: "spawn failed", outcome: exitcode.OutcomeSpawnFailed, want: 1},
		{name: "child failed with 1", outcome: exitcode.OutcomeChildFailed, childCode: 1, want: 1},
		{name: "child failed with 3", outcome: exitcode.OutcomeChildFailed, childCode: 3, want: 3},
		{name: "child failed with 255", outcome: exitcode.OutcomeChildFailed, childCode: 255, want: 255},
		{name: "child failed with 256", outcome: exitcode.OutcomeChildFailed, childCode: 256, want: 1},
		{name: "child failed with -1", outcome: exitcode.OutcomeChildFailed, childCode: -1, want: 1},
		{name: "patch api error", outcome: exitcode.OutcomePatchAPIError, want: 66},
		{name: "patch service error", outcome: exitcode.OutcomePatchServiceError, want: 68},
		{name: "other error", outcome: exitcode.OutcomeOtherError, want: 1},
		{name: "unknown outcome", outcome: "Unknown", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitcode.Code(tt.outcome, tt.childCode))
		})
	}
}

func TestNewChildError(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		wantOutcome exitcode.Outcome
		wantStatus  int
	}{
		{name: "1", code: 1, wantOutcome: exitcode.OutcomeChildFailed, wantStatus: 1},
		{name: "66", code: 66, wantOutcome: exitcode.OutcomeChildFailed, wantStatus: 66},
		{name: "255", code: 255, wantOutcome: exitcode.OutcomeChildFailed, wantStatus: 255},
		{name: "256", code: 256, wantOutcome: exitcode.OutcomeOtherError, wantStatus: 1},
		{name: "killed by signal", code: -1, wantOutcome: exitcode.OutcomeOtherError, wantStatus: 1},
		{name: "0", code: 0, wantOutcome: exitcode.OutcomeOtherError, wantStatus: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitcode.NewChildError(tt.code)
			assert.Equal(t, tt.wantOutcome, err.Outcome)
			assert.Equal(t, tt.wantStatus, err.ExitStatus())
			assert.Equal(t, tt.wantStatus, exitcode.FromError(err))
			assert.True(t, err.Exited())
		})
	}
}

func TestFromError(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name       string
		err        error
		want       int
		wantSilent bool
	}{
		{name: "nil", err: nil, want: 0},
		{name: "cobra error", err: errors.New(`unknown flag: --foo`), want: 2},
		{name: "usage error", err: exitcode.NewUsageError(cause), want: 2},
		{name: "spawn error", err: exitcode.NewSpawnError(cause), want: 1},
		{name: "other error", err: exitcode.NewOtherError(cause), want: 1},
		{name: "child error", err: exitcode.NewChildError(7), want: 7, wantSilent: true},
		{name: "wrapped child error", err: errors.Wrap(exitcode.NewChildError(7), "wrapped"), want: 7, wantSilent: true},
		{
			name: "api error",
			err:  &exitcode.Error{Outcome: exitcode.OutcomePatchAPIError, Err: cause},
			want: 66,
		},
		{
			name: "service error",
			err:  &exitcode.Error{Outcome: exitcode.OutcomePatchServiceError, Err: cause},
			want: 68,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitcode.FromError(tt.err))
			assert.Equal(t, tt.wantSilent, exitcode.IsSilent(tt.err))
		})
	}
}

func TestError(t *testing.T) {
	cause := errors.New("cause")
	err := exitcode.NewOtherError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cause", err.Error())
	assert.Equal(t, "cause", err.String())

	var exitErr utilexec.ExitError
	assert.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitStatus())

	assert.Equal(t, "UsageError", (&exitcode.Error{Outcome: exitcode.OutcomeUsageError}).Error())
}

func TestNewPatchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "api error",
			err:  rerrors.NewClientError(apierrors.NewNotFound(schema.GroupResource{Resource: "pods"}, "worker-1")),
			want: exitcode.APIError,
		},
		{
			name: "service error",
			err:  rerrors.NewClientError(context.DeadlineExceeded),
			want: exitcode.ServiceError,
		},
		{
			name: "unknown client error",
			err:  rerrors.NewClientError(errors.New("boom")),
			want: exitcode.GenericError,
		},
		{
			name: "untagged error",
			err:  errors.New("cannot build patch"),
			want: exitcode.GenericError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitcode.NewPatchError(tt.err)
			assert.Equal(t, tt.want, exitcode.FromError(err))
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, exitcode.IsSilent(err))
		})
	}
}
