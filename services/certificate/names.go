package certificate

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// NameParts is the student name as printed on the certificate.
type NameParts struct {
	First         string
	MiddleInitial string
	Last          string
}

// ParseName splits the stored first-name field on whitespace. A second token
// is treated as a middle name and reduced to its initial.
func ParseName(firstField, lastField string) NameParts {
	parts := NameParts{Last: strings.TrimSpace(lastField)}
	tokens := strings.Fields(firstField)
	if len(tokens) == 0 {
		return parts
	}
	parts.First = tokens[0]
	if len(tokens) >= 2 {
		r, _ := utf8.DecodeRuneInString(tokens[1])
		parts.MiddleInitial = string(unicode.ToUpper(r)) + "."
	}
	return parts
}

// IDNumber returns the last four characters of ssn.
func IDNumber(ssn string) string {
	r := []rune(ssn)
	if len(r) <= 4 {
		return ssn
	}
	return string(r[len(r)-4:])
}

// Number builds the certificate number SR-<unix millis>-<enrollment id>.
func Number(at time.Time, enrollmentID uint) string {
	return fmt.Sprintf("SR-%d-%d", at.UnixMilli(), enrollmentID)
}

// FileName is the PDF file name for a certificate number.
func FileName(number string) string {
	return "certificate-" + number + ".pdf"
}

// FormatDate renders t as MM/DD/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("01/02/2006")
}
