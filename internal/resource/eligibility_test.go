package resource

import (
	"testing"

	"github.com/kc-aidesigntech/atlas/internal/enrollee"
)

func subjectWithCodes(codes ...string) *enrollee.Enrollee {
	return &enrollee.Enrollee{
		RiskProfile: enrollee.RiskProfile{ClassificationCodes: codes},
	}
}

func resourceWithCodes(codes ...string) *Resource {
	return &Resource{Eligibility: Eligibility{ClassificationCodes: codes}}
}

// TestIsEligible covers the code-intersection rules
func TestIsEligible(t *testing.T) {
	tests := []struct {
		name     string
		subject  *enrollee.Enrollee
		resource *Resource
		want     bool
	}{
		{
			name:     "no criteria accepts everyone",
			subject:  subjectWithCodes(),
			resource: resourceWithCodes(),
			want:     true,
		},
		{
			name:     "no criteria accepts coded subject",
			subject:  subjectWithCodes("Z59.0"),
			resource: resourceWithCodes(),
			want:     true,
		},
		{
			name:     "matching code",
			subject:  subjectWithCodes("Z59.0", "Z59.6"),
			resource: resourceWithCodes("Z59.6"),
			want:     true,
		},
		{
			name:     "one of several criteria matches",
			subject:  subjectWithCodes("Z56.0"),
			resource: resourceWithCodes("Z59.0", "Z56.0", "Z60.2"),
			want:     true,
		},
		{
			name:     "disjoint codes",
			subject:  subjectWithCodes("Z55.0"),
			resource: resourceWithCodes("Z59.0", "Z59.1"),
			want:     false,
		},
		{
			name:     "criteria but subject has no codes",
			subject:  subjectWithCodes(),
			resource: resourceWithCodes("Z59.0"),
			want:     false,
		},
		{
			name:     "nil subject",
			subject:  nil,
			resource: resourceWithCodes(),
			want:     false,
		},
		{
			name:     "nil resource",
			subject:  subjectWithCodes("Z59.0"),
			resource: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEligible(tt.subject, tt.resource); got != tt.want {
				t.Errorf("IsEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestFilterEligible verifies order is preserved and income band is ignored
func TestFilterEligible(t *testing.T) {
	subject := subjectWithCodes("Z59.6")

	open := *resourceWithCodes()
	open.Name = "open"
	match := *resourceWithCodes("Z59.6")
	match.Name = "match"
	match.Eligibility.IncomeBand = "below_30_ami" // stored, never evaluated
	miss := *resourceWithCodes("Z59.0")
	miss.Name = "miss"

	got := FilterEligible(subject, []Resource{miss, open, match})
	if len(got) != 2 {
		t.Fatalf("FilterEligible returned %d resources, want 2", len(got))
	}
	if got[0].Name != "open" || got[1].Name != "match" {
		t.Errorf("FilterEligible order = [%s, %s], want [open, match]", got[0].Name, got[1].Name)
	}

	if out := FilterEligible(subject, nil); len(out) != 0 {
		t.Errorf("FilterEligible(nil list) = %d resources, want 0", len(out))
	}
}
