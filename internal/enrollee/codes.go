package enrollee

// codeNames maps social-determinant classification codes (ICD-10 Z codes) to
// display names. The dashboard shows these next to frequency counts.
var codeNames = map[string]string{
	"Z55.0":   "Illiteracy and low-level literacy",
	"Z56.0":   "Unemployment",
	"Z56.6":   "Other physical and mental strain related to work",
	"Z59.0":   "Homelessness",
	"Z59.1":   "Inadequate housing",
	"Z59.4":   "Lack of adequate food and safe drinking water",
	"Z59.6":   "Low income",
	"Z59.7":   "Insufficient social insurance and welfare support",
	"Z59.8":   "Other problems related to housing and economic circumstances",
	"Z60.2":   "Problems related to living alone",
	"Z60.4":   "Social exclusion and rejection",
	"Z63.0":   "Problems in relationship with spouse or partner",
	"Z63.4":   "Disappearance and death of family member",
	"Z65.8":   "Other specified problems related to psychosocial circumstances",
	"Z75.3":   "Unavailability and inaccessibility of health care facilities",
	"Z75.4":   "Unavailability and inaccessibility of other helping agencies",
	"Z91.120": "Patient's intentional underdosing of medication regimen due to financial hardship",
}

// FallbackCodeName labels codes missing from the lookup table.
const FallbackCodeName = "Unrecognized classification code"

// CodeName returns the display name for a classification code.
func CodeName(code string) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return FallbackCodeName
}
