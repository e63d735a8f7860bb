package fhir

// Bundle is the top-level output container. For document bundles the
// Composition entry always comes first and every reference inside the
// bundle resolves to another entry of the same bundle.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Identifier   *Identifier   `json:"identifier,omitempty"`
	Type         string        `json:"type"`
	Timestamp    string        `json:"timestamp,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// BundleEntry is one resource in the bundle.
type BundleEntry struct {
	FullURL  string   `json:"fullUrl,omitempty"`
	Resource Resource `json:"resource,omitempty"`
}

// NewDocumentBundle creates an empty bundle of type "document".
func NewDocumentBundle() *Bundle {
	return &Bundle{
		ResourceType: "Bundle",
		Type:         "document",
	}
}

// Add appends a resource entry with a urn:uuid fullUrl derived from its id.
func (b *Bundle) Add(r Resource) {
	b.Entry = append(b.Entry, BundleEntry{
		FullURL:  "urn:uuid:" + r.GetID(),
		Resource: r,
	})
}

// FindByID returns the entry resource with the given logical id, or nil.
func (b *Bundle) FindByID(id string) Resource {
	for _, e := range b.Entry {
		if e.Resource != nil && e.Resource.GetID() == id {
			return e.Resource
		}
	}
	return nil
}

// ResourcesOfKind returns all entry resources of one kind.
func (b *Bundle) ResourcesOfKind(kind string) []Resource {
	var out []Resource
	for _, e := range b.Entry {
		if e.Resource != nil && e.Resource.Kind() == kind {
			out = append(out, e.Resource)
		}
	}
	return out
}
