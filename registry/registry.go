// Package registry implements the per-conversion reference registry: a
// canonical-key to assigned-id map guaranteeing at most one resource per
// canonical key per conversion.
//
// A registry is scoped to exactly one conversion call and never reused
// across documents; its keys are only unique within one document's
// identifier space. It is not safe for concurrent use, matching the
// single-threaded conversion model.
package registry

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gofhir/cdaconvert/fhir"
)

// idNamespace seeds deterministic resource ids. Converting the same
// document twice yields the same ids, so bundles diff cleanly.
var idNamespace = uuid.MustParse("5f793a42-6a4e-4d22-8c2e-0a3c2a7e9b11")

// IdentityKey builds a canonical key from a resource kind and a source
// identifier (root plus optional extension).
func IdentityKey(kind, root, extension string) string {
	if extension == "" {
		return kind + "|" + root
	}
	return kind + "|" + root + "^" + extension
}

// SynthesisKey builds a canonical key for an entity with no usable source
// identifier, from stable content parts (code, effective time, status).
// The same content always synthesizes the same key.
func SynthesisKey(kind string, parts ...string) string {
	return kind + "|~|" + strings.Join(parts, "|")
}

type entry struct {
	key      string
	resource fhir.Resource
}

// Registry assigns ids and deduplicates resources for one conversion.
type Registry struct {
	entries map[string]*entry
	order   []string
}

// New returns an empty registry for one conversion call.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// AssignID returns the deterministic id for a canonical key without
// registering a resource.
func AssignID(key string) string {
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Claim registers a resource under a canonical key. The first claim wins:
// when the key is already taken, the existing resource is returned and
// created is false, so statements referring to the same real-world entity
// converge on one resource. The resource's id is assigned before return.
func (r *Registry) Claim(key string, build func(id string) fhir.Resource) (res fhir.Resource, created bool) {
	if e, ok := r.entries[key]; ok {
		return e.resource, false
	}
	res = build(AssignID(key))
	r.entries[key] = &entry{key: key, resource: res}
	r.order = append(r.order, key)
	return res, true
}

// Lookup returns the resource registered under a key.
func (r *Registry) Lookup(key string) (fhir.Resource, bool) {
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.resource, true
}

// Reference returns a bundle-internal reference to the resource registered
// under a key. The second return is false when nothing is registered; the
// caller omits the referencing field rather than leaving it dangling.
func (r *Registry) Reference(key string) (*fhir.Reference, bool) {
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return &fhir.Reference{Reference: "urn:uuid:" + e.resource.GetID()}, true
}

// RefTo builds a bundle-internal reference to an already-claimed resource.
func RefTo(res fhir.Resource) *fhir.Reference {
	return &fhir.Reference{Reference: "urn:uuid:" + res.GetID()}
}

// Resources returns every registered resource in claim order.
func (r *Registry) Resources() []fhir.Resource {
	out := make([]fhir.Resource, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key].resource)
	}
	return out
}

// Len reports the number of registered resources.
func (r *Registry) Len() int {
	return len(r.order)
}
