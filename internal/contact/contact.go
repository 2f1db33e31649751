// Package contact defines the address book record and its canonical ordering.
package contact

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSlots is the maximum number of phone numbers or emails a Contact holds.
const MaxSlots = 3

// Placeholder marks a phone or email slot that intentionally holds no value.
const Placeholder = "-"

// Separator joins the fields of a formatted Contact line.
const Separator = ";"

// Sentinel errors for caller-checkable conditions.
var (
	ErrInvalidArgument = errors.New("contact: invalid argument")
	ErrNullReference   = errors.New("contact: nil slice")
)

// Contact is one address book entry.
//
// An empty family name is treated as absent by Compare. The phone and email
// slices are owned by the Contact once passed to New or a setter; callers
// must not keep a mutable alias.
type Contact struct {
	givenName    string
	familyName   string
	phoneNumbers []string
	emails       []string
}

// New validates and builds a Contact. At least one of familyName and
// givenName must be non-empty, and phoneNumbers and emails must be non-nil
// with at most MaxSlots entries each.
func New(familyName, givenName string, phoneNumbers, emails []string) (*Contact, error) {
	if familyName == "" && givenName == "" {
		return nil, fmt.Errorf("%w: a contact needs a name or a surname", ErrInvalidArgument)
	}
	if err := checkSlots("phone numbers", phoneNumbers); err != nil {
		return nil, err
	}
	if err := checkSlots("emails", emails); err != nil {
		return nil, err
	}
	return &Contact{
		givenName:    givenName,
		familyName:   familyName,
		phoneNumbers: phoneNumbers,
		emails:       emails,
	}, nil
}

func checkSlots(field string, values []string) error {
	if values == nil {
		return fmt.Errorf("%w: %s cannot be nil", ErrNullReference, field)
	}
	if len(values) > MaxSlots {
		return fmt.Errorf("%w: at most %d %s, got %d", ErrInvalidArgument, MaxSlots, field, len(values))
	}
	return nil
}

// GivenName returns the contact's first name.
func (c *Contact) GivenName() string { return c.givenName }

// FamilyName returns the contact's surname.
func (c *Contact) FamilyName() string { return c.familyName }

// PhoneNumbers returns the phone slots as stored.
func (c *Contact) PhoneNumbers() []string { return c.phoneNumbers }

// Emails returns the email slots as stored.
func (c *Contact) Emails() []string { return c.emails }

// SetGivenName replaces the first name. The name invariant checked by New is
// not re-checked here.
func (c *Contact) SetGivenName(name string) { c.givenName = name }

// SetFamilyName replaces the surname. The name invariant checked by New is
// not re-checked here.
func (c *Contact) SetFamilyName(name string) { c.familyName = name }

// SetPhoneNumbers replaces the phone slots.
func (c *Contact) SetPhoneNumbers(numbers []string) error {
	if err := checkSlots("phone numbers", numbers); err != nil {
		return err
	}
	c.phoneNumbers = numbers
	return nil
}

// SetEmails replaces the email slots.
func (c *Contact) SetEmails(emails []string) error {
	if err := checkSlots("emails", emails); err != nil {
		return err
	}
	c.emails = emails
	return nil
}

// Format renders the contact as one persisted line:
//
//	family;given;phone1;phone2;phone3;email1;email2;email3\n
//
// Short slot lists are padded and blank slots are written as Placeholder, so
// the line always has exactly eight fields.
func (c *Contact) Format() string {
	var b strings.Builder
	b.WriteString(c.familyName)
	b.WriteString(Separator)
	b.WriteString(c.givenName)
	for _, v := range padSlots(c.phoneNumbers) {
		b.WriteString(Separator)
		b.WriteString(v)
	}
	for _, v := range padSlots(c.emails) {
		b.WriteString(Separator)
		b.WriteString(v)
	}
	b.WriteByte('\n')
	return b.String()
}

// String returns the display name, surname first.
func (c *Contact) String() string {
	return strings.TrimSpace(c.familyName + " " + c.givenName)
}

func padSlots(values []string) [MaxSlots]string {
	out := [MaxSlots]string{Placeholder, Placeholder, Placeholder}
	for i, v := range values {
		if i >= MaxSlots {
			break
		}
		if v != "" {
			out[i] = v
		}
	}
	return out
}
