package vin

import (
	"fmt"
	"regexp"
	"strings"
)

// PorscheWMI is the World Manufacturer Identifier carried by every
// Porsche-built VIN in scope.
const PorscheWMI = "WP0"

// vinPattern is the standard 17-character VIN alphabet: alphanumeric
// excluding I, O and Q.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// IsValid reports whether vin is a syntactically valid 17-character VIN.
// Check-digit arithmetic is deliberately not performed; the character-set
// and length check matches what the upstream pipeline relies on.
func IsValid(vin string) bool {
	if len(vin) != 17 {
		return false
	}
	return vinPattern.MatchString(strings.ToUpper(vin))
}

// IsPorsche reports whether vin is valid and carries the Porsche WMI.
func IsPorsche(vin string) bool {
	return IsValid(vin) && strings.HasPrefix(strings.ToUpper(vin), PorscheWMI)
}

// Components is the positional breakdown of a VIN.
type Components struct {
	WMI        string `json:"wmi"`
	VDS        string `json:"vds"`
	CheckDigit string `json:"check_digit"`
	ModelYear  string `json:"model_year"`
	PlantCode  string `json:"plant_code"`
	VIS        string `json:"vis"`
	Serial     string `json:"serial"`
}

// Split breaks a valid VIN into its WMI/VDS/VIS components.
func Split(v string) (Components, error) {
	if !IsValid(v) {
		return Components{}, fmt.Errorf("invalid VIN: %s", v)
	}
	v = strings.ToUpper(v)
	return Components{
		WMI:        v[:3],
		VDS:        v[3:9],
		CheckDigit: v[8:9],
		ModelYear:  v[9:10],
		PlantCode:  v[10:11],
		VIS:        v[10:],
		Serial:     v[11:],
	}, nil
}

// Synthesize derives a non-VIN tracking identifier from a listing slug,
// for listings where no real VIN could be extracted. The result is never
// a valid VIN shape (16 characters) and must be flagged as synthetic by
// callers; it exists only so repeat scrapes of the same listing dedupe.
func Synthesize(slug string) string {
	s := strings.ToUpper(slug)
	if len(s) > 13 {
		s = s[:13]
	}
	s = strings.ReplaceAll(s, "-", "")
	for len(s) < 13 {
		s = "0" + s
	}
	return "BAT" + s
}

// IsSynthetic reports whether id looks like a Synthesize-generated
// tracking identifier rather than a real VIN.
func IsSynthetic(id string) bool {
	return strings.HasPrefix(id, "BAT") && len(id) == 16
}
