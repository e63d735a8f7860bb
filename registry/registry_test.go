package registry

import (
	"testing"

	"github.com/gofhir/cdaconvert/fhir"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "identity with extension",
			got:  IdentityKey("Practitioner", "2.16.840.1.113883.4.6", "1234567890"),
			want: "Practitioner|2.16.840.1.113883.4.6^1234567890",
		},
		{
			name: "identity root only",
			got:  IdentityKey("Condition", "1.2.3.4", ""),
			want: "Condition|1.2.3.4",
		},
		{
			name: "synthesis",
			got:  SynthesisKey("Observation", "8480-6", "2017-08-21", "completed"),
			want: "Observation|~|8480-6|2017-08-21|completed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("key = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestAssignIDDeterministic(t *testing.T) {
	key := IdentityKey("Patient", "2.16.840.1.113883.19.5", "12345")
	a := AssignID(key)
	b := AssignID(key)
	if a != b {
		t.Errorf("same key assigned different ids: %q vs %q", a, b)
	}
	if a == AssignID(IdentityKey("Patient", "2.16.840.1.113883.19.5", "12346")) {
		t.Error("different keys assigned the same id")
	}
}

func TestClaimFirstWins(t *testing.T) {
	reg := New()
	key := IdentityKey("Practitioner", "2.16.840.1.113883.4.6", "99999")

	first, created := reg.Claim(key, func(id string) fhir.Resource {
		p := fhir.NewPractitioner()
		p.ID = id
		return p
	})
	if !created {
		t.Fatal("first claim should create")
	}

	builderRan := false
	second, created := reg.Claim(key, func(id string) fhir.Resource {
		builderRan = true
		p := fhir.NewPractitioner()
		p.ID = id
		return p
	})
	if created {
		t.Error("second claim should not create")
	}
	if builderRan {
		t.Error("builder must not run for an already-claimed key")
	}
	if first != second {
		t.Error("both claims should yield the same resource")
	}
}

func TestReference(t *testing.T) {
	reg := New()
	key := IdentityKey("Patient", "1.2.3", "p1")

	if _, ok := reg.Reference(key); ok {
		t.Error("reference to an unclaimed key should report false")
	}

	res, _ := reg.Claim(key, func(id string) fhir.Resource {
		p := fhir.NewPatient()
		p.ID = id
		return p
	})

	ref, ok := reg.Reference(key)
	if !ok {
		t.Fatal("reference to a claimed key should resolve")
	}
	want := "urn:uuid:" + res.GetID()
	if ref.Reference != want {
		t.Errorf("reference = %q, want %q", ref.Reference, want)
	}
	if got := RefTo(res); got.Reference != want {
		t.Errorf("RefTo = %q, want %q", got.Reference, want)
	}
}

func TestResourcesClaimOrder(t *testing.T) {
	reg := New()
	keys := []string{
		IdentityKey("Patient", "1.2.3", "p1"),
		IdentityKey("Condition", "1.2.3", "c1"),
		IdentityKey("Condition", "1.2.3", "c2"),
	}
	for _, key := range keys {
		reg.Claim(key, func(id string) fhir.Resource {
			c := fhir.NewCondition()
			c.ID = id
			return c
		})
	}
	// A repeated claim must not reorder or duplicate.
	reg.Claim(keys[0], func(id string) fhir.Resource {
		p := fhir.NewPatient()
		p.ID = id
		return p
	})

	got := reg.Resources()
	if len(got) != 3 || reg.Len() != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, key := range keys {
		if got[i].GetID() != AssignID(key) {
			t.Errorf("resource %d out of claim order", i)
		}
	}
}
