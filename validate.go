package ddns

import "regexp"

var (
	// Only the shape is checked; octets above 255 are accepted.
	ipv4Pattern   = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}$`)
	domainPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
)

// ValidIPv4 reports whether s looks like a dotted-quad IPv4 address.
func ValidIPv4(s string) bool {
	return ipv4Pattern.MatchString(s)
}

// ValidDomain reports whether s is a dotted host name ending in an alphabetic label of at least two characters.
func ValidDomain(s string) bool {
	return domainPattern.MatchString(s)
}
