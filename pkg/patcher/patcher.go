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

package patcher

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/metadata"
	"k8s.io/klog/v2"

	rerrors "github.com/furiko-io/k8s-psl/pkg/errors"
	"github.com/furiko-io/k8s-psl/pkg/identifier"
)

// ErrUnsupportedKind is returned when there is no ResourceType for a kind.
var ErrUnsupportedKind = errors.New("unsupported resource kind")

// ResourceType describes the API surface used to patch a kind of resource.
type ResourceType struct {
	// Resource is used to build the request path.
	Resource schema.GroupVersionResource

	// Kind is sent in the apply configuration.
	Kind schema.GroupVersionKind
}

// ResourceTypes maps each supported ResourceKind to its ResourceType.
var ResourceTypes = map[identifier.ResourceKind]ResourceType{
	identifier.ResourceKindPod: {
		Resource: corev1.SchemeGroupVersion.WithResource("pods"),
		Kind:     corev1.SchemeGroupVersion.WithKind("Pod"),
	},
	identifier.ResourceKindJob: {
		Resource: batchv1.SchemeGroupVersion.WithResource("jobs"),
		Kind:     batchv1.SchemeGroupVersion.WithKind("Job"),
	},
}

// Patcher applies labels to resources using server-side apply.
type Patcher struct {
	client       metadata.Interface
	fieldManager string
}

// New returns a Patcher that applies labels as fieldManager.
func New(client metadata.Interface, fieldManager string) *Patcher {
	return &Patcher{
		client:       client,
		fieldManager: fieldManager,
	}
}

// ApplyLabel applies label to the resource referred to by ref in namespace.
// Only the label is asserted by the field manager, so labels owned by other
// managers are left untouched and repeated calls are idempotent.
//
// Any error from the API client is returned as a pkg/errors Error, whose
// Reason categorizes the failure.
func (p *Patcher) ApplyLabel(
	ctx context.Context,
	namespace string,
	ref identifier.ResourceRef,
	label identifier.Label,
) error {
	resourceType, ok := ResourceTypes[ref.Kind]
	if !ok {
		return errors.Wrapf(ErrUnsupportedKind, "%v", ref.Kind)
	}

	data, err := NewApplyPatch(resourceType, namespace, ref.Name, label)
	if err != nil {
		return errors.Wrapf(err, "cannot build patch")
	}

	klog.V(4).InfoS("sending apply patch",
		"resource", resourceType.Resource.String(),
		"namespace", namespace,
		"name", ref.Name,
		"patch", string(data),
	)

	if _, err := p.client.Resource(resourceType.Resource).Namespace(namespace).Patch(
		ctx, ref.Name, types.ApplyPatchType, data, metav1.PatchOptions{
			FieldManager: p.fieldManager,
		},
	); err != nil {
		return rerrors.NewClientError(errors.Wrapf(err, "cannot apply label to %v", ref))
	}

	klog.V(1).InfoS("applied label",
		"resource", ref.String(),
		"namespace", namespace,
		"label", label.String(),
	)

	return nil
}

// NewApplyPatch returns the apply configuration that sets a single label on a
// resource of the given type.
func NewApplyPatch(resourceType ResourceType, namespace, name string, label identifier.Label) ([]byte, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(resourceType.Kind)
	obj.SetNamespace(namespace)
	obj.SetName(name)
	obj.SetLabels(label.Map())
	return json.Marshal(obj.Object)
}
