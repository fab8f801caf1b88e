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

package identifier

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidResourceKind is returned when a resource identifier does not start
// with one of the supported kinds.
var ErrInvalidResourceKind = errors.New("invalid or missing resource kind")

// ResourceKind is the kind of resource that can be labelled.
type ResourceKind string

const (
	ResourceKindPod ResourceKind = "pod"
	ResourceKindJob ResourceKind = "job"
)

// ResourceKinds returns all supported kinds.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{ResourceKindPod, ResourceKindJob}
}

// ResourceRef refers to a single namespaced resource by kind and name.
type ResourceRef struct {
	Kind ResourceKind
	Name string
}

// ParseResource parses a resource identifier of the form <kind>/<name>.
// The kind must be exactly "pod" or "job". Everything after the first slash
// is the name, which is not validated here and may be empty.
func ParseResource(input string) (ResourceRef, error) {
	kind, name, _ := strings.Cut(input, "/")
	switch ResourceKind(kind) {
	case ResourceKindPod, ResourceKindJob:
	default:
		return ResourceRef{}, errors.Wrapf(ErrInvalidResourceKind, "%q must be one of %v", kind, ResourceKinds())
	}
	return ResourceRef{
		Kind: ResourceKind(kind),
		Name: name,
	}, nil
}

// String returns the identifier in <kind>/<name> form.
func (r ResourceRef) String() string {
	return string(r.Kind) + "/" + r.Name
}
