package resource

import "github.com/kc-aidesigntech/atlas/internal/enrollee"

// IsEligible reports whether the resource's intake criteria match the
// enrollee. A resource with no classification codes accepts everyone;
// otherwise at least one of its codes must appear on the enrollee's risk
// profile. Pure function of its inputs.
//
// The income-band criterion is stored on resources but not evaluated here.
func IsEligible(subject *enrollee.Enrollee, res *Resource) bool {
	if subject == nil || res == nil {
		return false
	}

	codes := res.Eligibility.ClassificationCodes
	if len(codes) == 0 {
		return true
	}

	for _, code := range codes {
		if subject.HasCode(code) {
			return true
		}
	}
	return false
}

// FilterEligible returns the resources eligible for the enrollee, preserving
// order.
func FilterEligible(subject *enrollee.Enrollee, resources []Resource) []Resource {
	eligible := make([]Resource, 0, len(resources))
	for i := range resources {
		if IsEligible(subject, &resources[i]) {
			eligible = append(eligible, resources[i])
		}
	}
	return eligible
}
