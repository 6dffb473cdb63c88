package intake

import (
	"net/mail"
	"sort"
	"strings"
)

// NormalizeSender reduces "Jane Doe <Jane@Example.com>" and bare addresses to a
// lower-cased address.
func NormalizeSender(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(raw); err == nil {
		return strings.ToLower(addr.Address)
	}
	if open := strings.LastIndex(raw, "<"); open >= 0 {
		if end := strings.Index(raw[open:], ">"); end > 0 {
			raw = raw[open+1 : open+end]
		}
	}
	return strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'`))
}

// AllowList is a set of normalized sender addresses
type AllowList map[string]struct{}

// NewAllowList normalizes every entry
func NewAllowList(senders []string) AllowList {
	list := make(AllowList, len(senders))
	for _, s := range senders {
		if n := NormalizeSender(s); n != "" {
			list[n] = struct{}{}
		}
	}
	return list
}

// Allows reports an exact match of the normalized sender
func (l AllowList) Allows(sender string) bool {
	n := NormalizeSender(sender)
	if n == "" {
		return false
	}
	_, ok := l[n]
	return ok
}

// MatchCustomerCode returns the configured code contained in subject. Longer
// codes are tried first so "ACME2" wins over "ACME".
func MatchCustomerCode(subject string, codes []string) (string, bool) {
	upper := strings.ToUpper(subject)
	sorted := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, c := range sorted {
		if strings.Contains(upper, c) {
			return c, true
		}
	}
	return "", false
}
