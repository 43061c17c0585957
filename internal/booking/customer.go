package booking

import "strings"

// Lookups by name rely on every stored identifier starting with
// "Name: {name} | Phone: ", so the layout must not change without migrating
// existing rows.
const (
	customerNamePrefix = "Name: "
	customerPhoneSep   = " | Phone: "
)

// CustomerID combines a display name and phone number into the opaque
// identifier stored on bookings: "Name: {name} | Phone: {phone}".
func CustomerID(name, phone string) string {
	return customerNamePrefix + name + customerPhoneSep + phone
}

// CustomerPrefix returns the prefix shared by every identifier built from
// name, whatever the phone number.  Names that are themselves a prefix of
// another name ("Ann" vs "Anna") match both, as the lookup is by prefix.
func CustomerPrefix(name string) string {
	return customerNamePrefix + name
}

// ParseCustomerID splits an identifier produced by CustomerID.  ok is false
// for strings that don't follow the template.
func ParseCustomerID(id string) (name, phone string, ok bool) {
	rest, found := strings.CutPrefix(id, customerNamePrefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, customerPhoneSep)
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+len(customerPhoneSep):], true
}
