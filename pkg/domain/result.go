package domain

import "strings"

// Source tags identify which lookup produced a value.
const (
	SourceRDAP     = "rdap"
	SourceWhois    = "who.is"
	SourceHypestat = "hypestat"
	SourceStatshow = "statshow"
	SourceNone     = "none"
)

// Diagnostic notes shared by several lookups.
const (
	NoteNoData       = "no_data"
	NoteSkipNoReg    = "skip_no_reg"
	NoteSuffixOK     = ";ok"
	NoteSuffixNoData = ";no_data"
)

// Normalize lower-cases and trims a raw domain. No validation is performed.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// RegistrationStatus is the tri-state outcome of a registration lookup.
type RegistrationStatus int

const (
	// StatusUnknown means no lookup gave a conclusive answer.
	StatusUnknown RegistrationStatus = iota
	// StatusRegistered means the domain exists in a registry.
	StatusRegistered
	// StatusAvailable means the domain appears to be free.
	StatusAvailable
)

// String returns "registered", "available" or "unknown".
func (s RegistrationStatus) String() string {
	switch s {
	case StatusRegistered:
		return "registered"
	case StatusAvailable:
		return "available"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name so JSON carries "registered",
// "available" or "unknown".
func (s RegistrationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name produced by MarshalText. Unrecognised names
// decode as StatusUnknown.
func (s *RegistrationStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "registered":
		*s = StatusRegistered
	case "available":
		*s = StatusAvailable
	default:
		*s = StatusUnknown
	}

	return nil
}

// Registration is the answer of the registration resolver.
type Registration struct {
	Status RegistrationStatus `json:"status"`
	// Source is the lookup that answered (SourceRDAP or SourceWhois).
	Source string `json:"source"`
	// Note carries diagnostics such as "http=404" or "rdap_error=TIMEOUT".
	Note string `json:"note"`
}

// Estimate is a best-effort magnitude (monthly visits or backlinks).
// A zero Value means the magnitude could not be determined.
type Estimate struct {
	Value  int64  `json:"value"`
	Source string `json:"source"`
	Note   string `json:"note"`
}

// NoData is the terminal estimate when every source failed.
func NoData() Estimate {
	return Estimate{Source: SourceNone, Note: NoteNoData}
}

// Skipped is the estimate used for domains that are not registered.
func Skipped() Estimate {
	return Estimate{Source: SourceNone, Note: NoteSkipNoReg}
}

// Result aggregates everything known about one input domain.
type Result struct {
	Domain       string       `json:"domain"`
	Registration Registration `json:"registration"`
	Traffic      Estimate     `json:"traffic"`
	Backlinks    Estimate     `json:"backlinks"`
	Brand        bool         `json:"brand"`
}

// Notes joins the three diagnostic notes in the fixed order whois, traffic, backlinks.
func (r Result) Notes() string {
	return "whois=" + r.Registration.Note +
		" | traffic=" + r.Traffic.Note +
		" | backlinks=" + r.Backlinks.Note
}

// Registered reports whether the registration status is StatusRegistered.
func (r Result) Registered() bool {
	return r.Registration.Status == StatusRegistered
}

// ResultSet holds one Result per input domain, in input order.
type ResultSet []Result

// Hits returns the registered results whose traffic is at least minMonthly.
func (rs ResultSet) Hits(minMonthly int64) ResultSet {
	out := ResultSet{}
	for _, r := range rs {
		if r.Registered() && r.Traffic.Value >= minMonthly {
			out = append(out, r)
		}
	}

	return out
}
