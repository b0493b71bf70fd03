package report

import (
	"strings"

	"github.com/foxseedlab/shussekin/internal/identity"
)

// InclusionPolicy decides whether a resolved profile appears in the report.
// The active policy is chosen once at wiring time; see RegisterDI.
type InclusionPolicy func(identity.Profile) bool

// IncludeAll is the current production policy.
func IncludeAll(identity.Profile) bool {
	return true
}

// RequireEmailDomain restricts the report to registrants whose email
// contains the given fragment. Used for single-sponsor event reports.
func RequireEmailDomain(fragment string) InclusionPolicy {
	return func(p identity.Profile) bool {
		return strings.Contains(strings.ToLower(p.Email), strings.ToLower(fragment))
	}
}

// RequirePartnerOptIn keeps only registrants who explicitly agreed to share
// their details with partners.
func RequirePartnerOptIn() InclusionPolicy {
	return func(p identity.Profile) bool {
		return p.ConnectWithPartners == "true"
	}
}

// ExcludeCountry drops registrants from one country, matched
// case-insensitively.
func ExcludeCountry(country string) InclusionPolicy {
	return func(p identity.Profile) bool {
		return !strings.EqualFold(strings.TrimSpace(p.Country), country)
	}
}

// AllOf combines policies; a profile must pass every one.
func AllOf(policies ...InclusionPolicy) InclusionPolicy {
	return func(p identity.Profile) bool {
		for _, policy := range policies {
			if !policy(p) {
				return false
			}
		}
		return true
	}
}
