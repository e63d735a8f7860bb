package mapper

import (
	"github.com/gofhir/cdaconvert/fhir"
	"github.com/gofhir/cdaconvert/pipeline"
	"github.com/gofhir/cdaconvert/registry"
	"github.com/gofhir/cdaconvert/statement"
	"github.com/gofhir/cdaconvert/terminology"
)

// headerStage maps the document header: the patient, the authoring
// practitioners, devices and organizations, the custodian, and the
// composition resource that anchors the bundle.
type headerStage struct {
	m *Mapper
}

func (s *headerStage) Name() string { return "header" }

func (s *headerStage) Run(pc *pipeline.Context) error {
	m := s.m
	doc := pc.Doc

	pc.PatientKey = m.claimPatient(pc, doc.Patient)

	comp := fhir.NewComposition()
	comp.Status = "final"
	comp.Title = doc.Title
	comp.Date = timeString(doc.Effective)
	if !doc.ID.IsZero() {
		ids := identifiersOf([]statement.Identifier{doc.ID})
		comp.Identifier = &ids[0]
		comp.SetID(registry.AssignID(registry.IdentityKey("Composition", doc.ID.Root, doc.ID.Extension)))
		pc.Result.DocumentID = doc.ID.Key()
	} else {
		comp.SetID(registry.AssignID(registry.SynthesisKey("Composition", doc.Title, timeString(doc.Effective))))
	}
	comp.Type = m.concept(nil, doc.Code, "ClinicalDocument/code")
	if ref, ok := pc.PatientRef(); ok {
		comp.Subject = ref
	}

	for _, author := range doc.Authors {
		if ref, ok := m.claimAuthor(pc, &author); ok {
			comp.Author = append(comp.Author, *ref)
		}
	}
	if doc.Custodian != nil {
		if ref, ok := m.claimOrganization(pc, doc.Custodian.IDs, doc.Custodian.Name, doc.Custodian); ok {
			comp.Custodian = ref
		}
	}

	pc.Composition = comp
	return nil
}

// claimPatient registers the document subject and returns its registry key.
func (m *Mapper) claimPatient(pc *pipeline.Context, info *statement.PatientInfo) string {
	var key string
	synthesized := false
	switch {
	case info == nil:
		return ""
	case len(info.IDs) > 0:
		key = registry.IdentityKey("Patient", info.IDs[0].Root, info.IDs[0].Extension)
	default:
		key = registry.SynthesisKey("Patient", info.Name.Text(), timeString(info.BirthTime))
		synthesized = true
	}

	res, created := pc.Registry.Claim(key, func(id string) fhir.Resource {
		p := fhir.NewPatient()
		p.SetID(id)
		p.Identifier = identifiersOf(info.IDs)
		if hn := humanNameOf(info.Name); hn != nil {
			p.Name = []fhir.HumanName{*hn}
		}
		if info.Gender != nil && info.Gender.Code != "" {
			p.Gender = terminology.Gender(info.Gender.Code)
		}
		p.BirthDate = timeString(info.BirthTime)
		p.Address = addressesOf(info.Addresses)
		p.Telecom = contactPointsOf(info.Telecoms)
		p.MaritalStatus = m.concept(nil, info.MaritalStatus, "recordTarget/patientRole/patient/maritalStatusCode")
		return p
	})
	if created && synthesized {
		m.recordSynthesizedID(pc, "recordTarget/patientRole", res)
	}
	return key
}

// claimAuthor registers the practitioner, device or organization behind an
// author element and returns a reference to it. Authors naming neither a
// person, a device nor an organization are not mappable.
func (m *Mapper) claimAuthor(pc *pipeline.Context, a *statement.Author) (*fhir.Reference, bool) {
	if a.PersonName != nil || (a.Device == nil && len(a.IDs) > 0) {
		if res, ok := m.claimPractitioner(pc, a.PersonName, a.IDs); ok {
			return registry.RefTo(res), true
		}
	}
	if a.Device != nil {
		name := a.Device.ManufacturerModelName
		if name == "" {
			name = a.Device.SoftwareName
		}
		if name == "" && len(a.IDs) == 0 {
			return nil, false
		}
		var key string
		if len(a.IDs) > 0 {
			key = registry.IdentityKey("Device", a.IDs[0].Root, a.IDs[0].Extension)
		} else {
			key = registry.SynthesisKey("Device", name)
		}
		res, _ := pc.Registry.Claim(key, func(id string) fhir.Resource {
			d := fhir.NewDevice()
			d.SetID(id)
			d.Identifier = identifiersOf(a.IDs)
			if a.Device.ManufacturerModelName != "" {
				d.DeviceName = append(d.DeviceName, fhir.DeviceName{
					Name: a.Device.ManufacturerModelName,
					Type: "manufacturer-name",
				})
			}
			if a.Device.SoftwareName != "" {
				d.DeviceName = append(d.DeviceName, fhir.DeviceName{
					Name: a.Device.SoftwareName,
					Type: "model-name",
				})
			}
			return d
		})
		return registry.RefTo(res), true
	}
	if a.OrgName != "" || len(a.OrgIDs) > 0 {
		org := &statement.OrgInfo{IDs: a.OrgIDs, Name: a.OrgName}
		if ref, ok := m.claimOrganization(pc, org.IDs, org.Name, org); ok {
			return ref, true
		}
	}
	return nil, false
}

// claimPractitioner deduplicates practitioners by identifier, falling back
// to a name synthesis key. Statements identifying the same practitioner by
// the same identifier converge on one resource.
func (m *Mapper) claimPractitioner(pc *pipeline.Context, name *statement.PersonName, ids []statement.Identifier) (fhir.Resource, bool) {
	var key string
	switch {
	case len(ids) > 0:
		key = registry.IdentityKey("Practitioner", ids[0].Root, ids[0].Extension)
	case name != nil:
		key = registry.SynthesisKey("Practitioner", name.Text())
	default:
		return nil, false
	}

	res, _ := pc.Registry.Claim(key, func(id string) fhir.Resource {
		p := fhir.NewPractitioner()
		p.SetID(id)
		p.Identifier = identifiersOf(ids)
		if hn := humanNameOf(name); hn != nil {
			p.Name = []fhir.HumanName{*hn}
		}
		return p
	})
	return res, true
}

// claimOrganization deduplicates organizations by identifier or name.
func (m *Mapper) claimOrganization(pc *pipeline.Context, ids []statement.Identifier, name string, info *statement.OrgInfo) (*fhir.Reference, bool) {
	var key string
	switch {
	case len(ids) > 0:
		key = registry.IdentityKey("Organization", ids[0].Root, ids[0].Extension)
	case name != "":
		key = registry.SynthesisKey("Organization", name)
	default:
		return nil, false
	}

	res, _ := pc.Registry.Claim(key, func(id string) fhir.Resource {
		org := fhir.NewOrganization()
		org.SetID(id)
		org.Identifier = identifiersOf(ids)
		org.Name = name
		if info != nil {
			org.Address = addressesOf(info.Addresses)
			org.Telecom = contactPointsOf(info.Telecoms)
		}
		return org
	})
	return registry.RefTo(res), true
}
