package contact

import (
	"unicode"
	"unicode/utf8"
)

// Comparator is a three-way ordering over contacts: negative when a sorts
// before b, zero when they are order-equal, positive otherwise.
type Comparator func(a, b *Contact) int

// Compare is the canonical surname-first ordering of the address book.
//
// A contact without a surname is placed by its given name against the other
// contact's surname. Two contacts without surnames, or with identical
// surnames, are ordered by given name. Everything else is ordered by surname.
// All comparisons ignore case. Order-equal pairs keep their relative position
// under a stable sort.
func Compare(a, b *Contact) int {
	aAbsent, bAbsent := a.familyName == "", b.familyName == ""
	switch {
	case aAbsent && !bAbsent:
		return compareFold(a.givenName, b.familyName)
	case bAbsent && !aAbsent:
		return compareFold(a.familyName, b.givenName)
	case aAbsent && bAbsent, a.familyName == b.familyName:
		if a.givenName == b.givenName {
			return 0
		}
		return compareFold(a.givenName, b.givenName)
	}
	return compareFold(a.familyName, b.familyName)
}

// compareFold compares s and t rune by rune ignoring case, then by length.
func compareFold(s, t string) int {
	for s != "" && t != "" {
		r1, n1 := utf8.DecodeRuneInString(s)
		r2, n2 := utf8.DecodeRuneInString(t)
		s, t = s[n1:], t[n2:]
		if r1 == r2 {
			continue
		}
		u1, u2 := unicode.ToUpper(r1), unicode.ToUpper(r2)
		if u1 == u2 {
			continue
		}
		l1, l2 := unicode.ToLower(u1), unicode.ToLower(u2)
		if l1 != l2 {
			return int(l1) - int(l2)
		}
	}
	return utf8.RuneCountInString(s) - utf8.RuneCountInString(t)
}
