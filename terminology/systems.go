// Package terminology holds the static, read-only code-system knowledge
// the mapper consults: legacy OID to canonical URI translation, UCUM
// constants, and the display tables for fixed value sets. Everything is
// loaded once at init and never mutated; lookups are safe for concurrent
// use. Nothing here validates codes against external vocabularies.
package terminology

import "strings"

// Canonical code-system URIs.
const (
	LOINC   = "http://loinc.org"
	SNOMED  = "http://snomed.info/sct"
	RxNorm  = "http://www.nlm.nih.gov/research/umls/rxnorm"
	ICD10CM = "http://hl7.org/fhir/sid/icd-10-cm"
	ICD9CM  = "http://hl7.org/fhir/sid/icd-9-cm"
	CVX     = "http://hl7.org/fhir/sid/cvx"
	NDC     = "http://hl7.org/fhir/sid/ndc"
	CPT     = "http://www.ama-assn.org/go/cpt"
	UNII    = "http://fdasis.nlm.nih.gov"

	// UCUM is the unit system carried by every emitted quantity.
	UCUM = "http://unitsofmeasure.org"

	// UnitDimensionless marks a quantity supplied without a unit. The
	// system field still carries UCUM; it is never omitted.
	UnitDimensionless = "1"
)

// systemURIs translates the legacy numeric identifiers seen in source
// documents to their canonical URIs.
var systemURIs = map[string]string{
	"2.16.840.1.113883.6.1":      LOINC,
	"2.16.840.1.113883.6.96":     SNOMED,
	"2.16.840.1.113883.6.88":     RxNorm,
	"2.16.840.1.113883.6.90":     ICD10CM,
	"2.16.840.1.113883.6.103":    ICD9CM,
	"2.16.840.1.113883.6.104":    ICD9CM,
	"2.16.840.1.113883.12.292":   CVX,
	"2.16.840.1.113883.6.69":     NDC,
	"2.16.840.1.113883.6.12":     CPT,
	"2.16.840.1.113883.4.9":      UNII,
	"2.16.840.1.113883.5.1":      "http://terminology.hl7.org/CodeSystem/v3-AdministrativeGender",
	"2.16.840.1.113883.5.4":      "http://terminology.hl7.org/CodeSystem/v3-ActCode",
	"2.16.840.1.113883.5.6":      "http://terminology.hl7.org/CodeSystem/v3-ActClass",
	"2.16.840.1.113883.5.112":    "http://terminology.hl7.org/CodeSystem/v3-RouteOfAdministration",
	"2.16.840.1.113883.5.2":      "http://terminology.hl7.org/CodeSystem/v3-MaritalStatus",
	"2.16.840.1.113883.5.83":     "http://terminology.hl7.org/CodeSystem/v3-ObservationInterpretation",
	"2.16.840.1.113883.4.1":      "http://hl7.org/fhir/sid/us-ssn",
	"2.16.840.1.113883.4.6":      "http://hl7.org/fhir/sid/us-npi",
	"2.16.840.1.113883.6.238":    "urn:oid:2.16.840.1.113883.6.238",
	"2.16.840.1.113883.6.259":    "http://terminology.hl7.org/CodeSystem/HSLOC",
	"2.16.840.1.113883.6.301.5":  "https://www.nubc.org/CodeSystem/RevenueCodes",
	"2.16.840.1.113883.6.285":    "https://www.cms.gov/Medicare/Coding/HCPCSReleaseCodeSets",
	"2.16.840.1.113883.3.26.1.1": "http://ncithesaurus-stage.nci.nih.gov",
}

// SystemURI translates a code-system identifier to its canonical URI. An
// already-canonical identifier passes through unchanged; an unknown OID is
// namespaced rather than dropped, so downstream consumers can still route
// on it.
func SystemURI(id string) string {
	if id == "" {
		return ""
	}
	if strings.Contains(id, "://") || strings.HasPrefix(id, "urn:") {
		return id
	}
	if uri, ok := systemURIs[id]; ok {
		return uri
	}
	return "urn:oid:" + id
}
