package types

import "strings"

// Address is a US mailing address. Enrollee addresses drive the geographic
// breakdowns on the dashboard, so City and Zip are the fields that matter;
// the rest is display-only.
type Address struct {
	Line1 string `json:"line1,omitempty"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip   string `json:"zip,omitempty"`
}

// IsZero reports whether no address fields are set.
func (a Address) IsZero() bool {
	return a.Line1 == "" && a.Line2 == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// String formats the address on a single line.
func (a Address) String() string {
	parts := make([]string, 0, 4)
	if a.Line1 != "" {
		parts = append(parts, a.Line1)
	}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.State != "" || a.Zip != "" {
		parts = append(parts, strings.TrimSpace(a.State+" "+a.Zip))
	}
	return strings.Join(parts, ", ")
}

// ContactInfo holds contact details for a person or organization
type ContactInfo struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
