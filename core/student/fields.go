package student

import (
	"strconv"
	"strings"
	"unicode"
)

// CanonicalField is one of the fixed logical attributes needed to provision
// a student account and profile.
type CanonicalField string

const (
	FieldEmail              CanonicalField = "email"
	FieldPassword           CanonicalField = "password"
	FieldFullName           CanonicalField = "full_name"
	FieldRegistrationNumber CanonicalField = "registration_number"
	FieldBranch             CanonicalField = "branch"
	FieldYear               CanonicalField = "year"
	FieldSemester           CanonicalField = "semester"
	FieldSection            CanonicalField = "section"
	FieldPhoneNumber        CanonicalField = "phone_number"
)

// FieldAliases maps a CanonicalField to the spreadsheet header spellings it accepts,
// in preference order. Rosters come from many sources with no agreed header
// convention ("Reg No.", "registration_number", "RegistrationNumber"...).
type FieldAliases struct {
	Field   CanonicalField
	Aliases []string
}

var fieldAliases = []FieldAliases{
	{FieldEmail, []string{"email", "mail", "e-mail", "emailid"}},
	{FieldPassword, []string{"password", "pass", "pwd"}},
	{FieldFullName, []string{"fullname", "full_name", "name", "studentname", "student"}},
	{FieldRegistrationNumber, []string{"registration", "regno", "reg", "registrationnumber", "regnumber"}},
	{FieldBranch, []string{"branch", "department", "dept", "stream"}},
	{FieldYear, []string{"year", "yr", "class"}},
	{FieldSemester, []string{"semester", "sem", "semestar"}},
	{FieldSection, []string{"section", "sec", "div"}},
	{FieldPhoneNumber, []string{"phone", "mobile", "contact", "phonenumber", "mobilenumber", "phoneno"}},
}

func aliasesFor(field CanonicalField) []string {
	for _, fa := range fieldAliases {
		if fa.Field == field {
			return fa.Aliases
		}
	}
	return nil
}

// Row is one spreadsheet row: original header text (in column order) mapped
// to raw cell text. Headers are kept verbatim as the file contained them.
type Row struct {
	Headers []string
	Cells   map[string]string
}

// normalizeHeader lowers, trims and strips all whitespace and underscores,
// so "Registration_Number ", "reg no" and "RegNo" compare equal.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return -1
		}
		return r
	}, s)
}

// ResolveField finds the raw cell value for a canonical field.
// Exact (fully normalized) header matches are preferred over substring matches
// to reduce false positives; the first matching column in row order wins.
// Absence is not an error: optional fields legitimately have no column.
func ResolveField(row Row, field CanonicalField) (string, bool) {
	aliases := aliasesFor(field)

	// pass 1: exact match
	for _, key := range row.Headers {
		nkey := normalizeHeader(key)
		for _, alias := range aliases {
			if nkey == normalizeHeader(alias) {
				return row.Cells[key], true
			}
		}
	}

	// pass 2: substring match, lightly normalized (underscores retained)
	for _, key := range row.Headers {
		nkey := strings.ToLower(strings.TrimSpace(key))
		for _, alias := range aliases {
			nalias := strings.ToLower(strings.TrimSpace(alias))
			if strings.Contains(nkey, nalias) || strings.Contains(nalias, nkey) {
				return row.Cells[key], true
			}
		}
	}

	return "", false
}

// Record is the resolved, typed result of processing one Row.
// Absent string fields are ""; absent numeric fields are 0 — except Branch,
// which defaults to DefaultBranch.
type Record struct {
	Email              string
	Password           string
	FullName           string
	RegistrationNumber string
	Branch             string
	Year               int
	Semester           int
	Section            string
	PhoneNumber        string
}

// ResolveRecord resolves and normalizes every canonical field of a row.
func ResolveRecord(row Row) Record {
	str := func(field CanonicalField) string {
		raw, _ := ResolveField(row, field)
		return strings.TrimSpace(raw)
	}
	code := func(field CanonicalField) string {
		return strings.ToUpper(str(field))
	}
	ordinal := func(field CanonicalField) int {
		n, _ := parseOrdinal(str(field))
		return n
	}

	rec := Record{
		Email:              strings.ToLower(str(FieldEmail)),
		Password:           str(FieldPassword),
		FullName:           str(FieldFullName),
		RegistrationNumber: str(FieldRegistrationNumber),
		Branch:             code(FieldBranch),
		Year:               ordinal(FieldYear),
		Semester:           ordinal(FieldSemester),
		Section:            code(FieldSection),
		PhoneNumber:        str(FieldPhoneNumber),
	}
	if rec.Branch == "" {
		rec.Branch = DefaultBranch
	}
	return rec
}

// parseOrdinal extracts the integer from free-text ordinals: "2nd" -> 2,
// "Sem-3" -> 3. A value with no digits at all is absent, not zero.
func parseOrdinal(raw string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MissingProfileFields lists the profile fields (beyond credentials) a record
// still needs before it can be provisioned. Branch and phone number are never
// required: branch has a default and phone is optional.
func (rec Record) MissingProfileFields() []string {
	var missing []string
	if rec.FullName == "" {
		missing = append(missing, string(FieldFullName))
	}
	if rec.RegistrationNumber == "" {
		missing = append(missing, string(FieldRegistrationNumber))
	}
	if rec.Year == 0 {
		missing = append(missing, string(FieldYear))
	}
	if rec.Semester == 0 {
		missing = append(missing, string(FieldSemester))
	}
	if rec.Section == "" {
		missing = append(missing, string(FieldSection))
	}
	return missing
}

// HasCredentials reports whether the record can even attempt account creation.
func (rec Record) HasCredentials() bool {
	return rec.Email != "" && rec.Password != ""
}
