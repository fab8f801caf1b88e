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

package testing

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	testinginterface "github.com/mitchellh/go-testing-interface"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
	ktesting "k8s.io/client-go/testing"

	"github.com/furiko-io/k8s-psl/pkg/identifier"
	"github.com/furiko-io/k8s-psl/pkg/patcher"
)

var (
	defaultVerbs = []string{
		"create",
		"update",
		"patch",
		"delete",
	}
)

type ActionTest struct {
	// Verbs contains the list of verbs that should be checked.
	// Defaults to write-only verbs.
	Verbs []string

	// Actions contains a list of actions that should exist in the result.
	// It is expected that they will be in the correct order.
	Actions []ktesting.Action
}

func (t ActionTest) GetVerbs() []string {
	if len(t.Verbs) == 0 {
		return defaultVerbs
	}
	return t.Verbs
}

// NewApplyLabelAction returns the action expected when applying label to the
// resource referred to by ref.
func NewApplyLabelAction(namespace string, ref identifier.ResourceRef, label identifier.Label) ktesting.Action {
	resourceType := patcher.ResourceTypes[ref.Kind]
	patch, err := patcher.NewApplyPatch(resourceType, namespace, ref.Name, label)
	if err != nil {
		panic(fmt.Sprintf("cannot build apply patch: %v", err))
	}
	return ktesting.NewPatchAction(resourceType.Resource, namespace, ref.Name, types.ApplyPatchType, patch)
}

// CompareActions compares the actions we received against the ActionTest expectations.
func CompareActions(t testinginterface.T, test ActionTest, got []ktesting.Action) {
	verbs := sets.NewString(test.GetVerbs()...)

	var idx int
	for _, gotAction := range got {
		if !verbs.Has(gotAction.GetVerb()) {
			continue
		}
		if idx >= len(test.Actions) {
			t.Errorf("saw extra action: %v %v", gotAction.GetVerb(), GetFullResourceName(gotAction))
			continue
		}
		wantAction := test.Actions[idx]
		idx++
		CompareAction(t, wantAction, gotAction)
	}

	for i := idx; i < len(test.Actions); i++ {
		action := test.Actions[i]
		t.Errorf("did not see action: %v %v", action.GetVerb(), GetFullResourceName(action))
	}
}

type NameGetter interface {
	GetName() string
}

type PatchGetter interface {
	GetPatch() []byte
	GetPatchType() types.PatchType
}

// CompareAction compares two Actions.
func CompareAction(t testinginterface.T, want, got ktesting.Action) {
	if !want.Matches(got.GetVerb(), got.GetResource().Resource) {
		t.Errorf("mismatched actions, want %v %v got %v %v",
			want.GetVerb(), want.GetResource(), got.GetVerb(), got.GetResource())
		return
	}

	if want.GetResource() != got.GetResource() {
		t.Errorf("mismatched resources for %v action, want %v got %v",
			want.GetVerb(), want.GetResource(), got.GetResource())
	}

	if want.GetNamespace() != got.GetNamespace() {
		t.Errorf("mismatched namespaces for %v %v action, want %v got %v", want.GetVerb(), want.GetResource().Resource,
			want.GetNamespace(), got.GetNamespace())
	}

	// Compare by NameGetter.
	if wantObj, ok := want.(NameGetter); ok {
		if gotObj, ok := got.(NameGetter); ok {
			CompareNames(t, want, wantObj, gotObj)
		}
	}

	// Compare by PatchGetter.
	if wantObj, ok := want.(PatchGetter); ok {
		if gotObj, ok := got.(PatchGetter); ok {
			ComparePatches(t, want, wantObj, gotObj)
		}
	}
}

// CompareNames compares two names.
func CompareNames(t testinginterface.T, action ktesting.Action, want, got NameGetter) {
	if want.GetName() != got.GetName() {
		t.Errorf("mismatched names for %v %v action, want %v got %v", action.GetVerb(), action.GetResource().Resource,
			want.GetName(), got.GetName())
	}
}

// ComparePatches compares two patches.
func ComparePatches(t testinginterface.T, action ktesting.Action, want, got PatchGetter) {
	if want.GetPatchType() != got.GetPatchType() {
		t.Errorf("mismatched patch types for %v %v action, want %v got %v", action.GetVerb(),
			action.GetResource().Resource, want.GetPatchType(), got.GetPatchType())
	}
	if string(want.GetPatch()) != string(got.GetPatch()) {
		t.Errorf("mismatched patches for %v %v action\ndiff = %v", action.GetVerb(), action.GetResource().Resource,
			cmp.Diff(string(want.GetPatch()), string(got.GetPatch())))
	}
}

// GetFullResourceName returns the full resource name, including subresource if any.
func GetFullResourceName(action ktesting.Action) string {
	if action.GetSubresource() != "" {
		return fmt.Sprintf("%v/%v", action.GetResource().Resource, action.GetSubresource())
	}
	return action.GetResource().Resource
}
