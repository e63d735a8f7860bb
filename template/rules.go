package template

import (
	"github.com/gofhir/cdaconvert/datatype"
	"github.com/gofhir/cdaconvert/statement"
)

// Rule constructors. Each builds one predicate with its conformance
// citation baked in so violations always name the rule they break.

func requireID(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain at least one id",
		Check: func(s *statement.ClinicalStatement) bool {
			for _, id := range s.IDs {
				if !id.IsZero() {
					return true
				}
			}
			return false
		},
	}
}

func requireStatus(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain exactly one statusCode",
		Check: func(s *statement.ClinicalStatement) bool {
			return s.StatusCode != ""
		},
	}
}

func fixedStatus(ruleID, want string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "statusCode SHALL equal " + want,
		Check: func(s *statement.ClinicalStatement) bool {
			return s.StatusCode == want
		},
	}
}

// fixedCode enforces a fixed concern-act style code. Replacing it with an
// unrelated code is a genuine semantic mismatch, enforced strictly.
func fixedCode(ruleID, code, system string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "code SHALL equal " + code + " from code system " + system,
		Check: func(s *statement.ClinicalStatement) bool {
			return s.Code != nil && s.Code.Code == code && s.Code.CodeSystem == system
		},
	}
}

func requireCode(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain exactly one code",
		Check: func(s *statement.ClinicalStatement) bool {
			return s.Code.HasCode() || (s.Code != nil && s.Code.OriginalTextRef != "")
		},
	}
}

func requireEffectiveTime(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain exactly one effectiveTime",
		Check: func(s *statement.ClinicalStatement) bool {
			if s.Effective == nil {
				return false
			}
			return s.Effective.Low != nil || s.Effective.High != nil ||
				s.Effective.LowNull.IsNull() || s.Effective.HighNull.IsNull()
		},
	}
}

// highWhenCompleted enforces the concern-act closure constraint: a
// completed concern states when it ended.
func highWhenCompleted(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "effectiveTime SHALL contain high when statusCode is completed",
		Check: func(s *statement.ClinicalStatement) bool {
			if s.StatusCode != "completed" {
				return true
			}
			return s.Effective != nil &&
				(s.Effective.High != nil || s.Effective.HighNull.IsNull())
		},
	}
}

// requireValueKind enforces the value's wire type through the datatype
// compatibility table. A quantitative slot never accepts a coded value,
// null-flavored or not; that mismatch aborts the statement rather than
// being coerced.
func requireValueKind(ruleID string, want datatype.Kind) Rule {
	return Rule{
		ID:          ruleID,
		Description: "value SHALL be of type " + string(want),
		Check: func(s *statement.ClinicalStatement) bool {
			if s.Value == nil {
				return false
			}
			return datatype.Compatible(want, s.Value.Kind)
		},
	}
}

func requireValue(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain exactly one value",
		Check: func(s *statement.ClinicalStatement) bool {
			return s.Value != nil
		},
	}
}

func requireConsumable(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain exactly one consumable product",
		Check: func(s *statement.ClinicalStatement) bool {
			return s.Consumable != nil
		},
	}
}

func requireComponent(ruleID string) Rule {
	return Rule{
		ID:          ruleID,
		Description: "SHALL contain at least one component observation",
		Check: func(s *statement.ClinicalStatement) bool {
			return len(s.Components) > 0
		},
	}
}
