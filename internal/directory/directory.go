// Package directory implements the ordered contact collection and its
// delimited-file persistence.
package directory

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/smileynet/rubrica/internal/contact"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrInvalidState  = errors.New("directory: invalid state")
	ErrFileNotFound  = errors.New("directory: file not found")
	ErrIO            = errors.New("directory: i/o failure")
	ErrMalformedLine = errors.New("directory: malformed line")
)

// Op identifies the kind of mutation reported to observers.
type Op int

// Mutation kinds.
const (
	OpAdd Op = iota + 1
	OpDelete
	OpSort
	OpLoad
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	case OpSort:
		return "sort"
	case OpLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Change describes one mutation of a Directory. Contact is the record added
// or deleted, nil for sort and load. Len is the size after the mutation.
type Change struct {
	Op      Op
	Contact *contact.Contact
	Len     int
}

type observer struct {
	id int
	fn func(Change)
}

// Directory is the ordered collection of contacts. After every Add, Delete or
// Sort the sequence is ordered; Add and Delete always restore contact.Compare
// order.
//
// A Directory is driven by a single goroutine; it does no locking.
type Directory struct {
	contacts      []*contact.Contact
	path          string
	skipMalformed bool
	logger        *slog.Logger
	observers     []observer
	nextObserver  int
}

// Option configures a Directory.
type Option func(*Directory)

// WithPath sets the file used by Save and Load.
func WithPath(path string) Option {
	return func(d *Directory) { d.path = path }
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSkipMalformed makes Load skip lines it cannot parse instead of failing.
func WithSkipMalformed(skip bool) Option {
	return func(d *Directory) { d.skipMalformed = skip }
}

// New creates an empty Directory backed by DefaultPath unless overridden.
func New(opts ...Option) *Directory {
	d := &Directory{
		contacts: []*contact.Contact{},
		path:     DefaultPath,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the file used by Save and Load.
func (d *Directory) Path() string { return d.path }

// Len returns the number of contacts.
func (d *Directory) Len() int { return len(d.contacts) }

// CreateRecord builds a validated contact. It does not add it.
func (d *Directory) CreateRecord(familyName, givenName string, phoneNumbers, emails []string) (*contact.Contact, error) {
	return contact.New(familyName, givenName, phoneNumbers, emails)
}

// Add inserts c and restores canonical order. A nil contact is ignored.
func (d *Directory) Add(c *contact.Contact) {
	if c == nil {
		return
	}
	d.contacts = append(d.contacts, c)
	slices.SortStableFunc(d.contacts, contact.Compare)
	d.notify(Change{Op: OpAdd, Contact: c, Len: len(d.contacts)})
}

// Delete removes c if present and restores canonical order. Deleting a
// contact that is not in the directory is a no-op.
func (d *Directory) Delete(c *contact.Contact) error {
	if d.contacts == nil {
		return ErrInvalidState
	}
	i := slices.Index(d.contacts, c)
	if i < 0 {
		return nil
	}
	d.contacts = slices.Delete(d.contacts, i, i+1)
	slices.SortStableFunc(d.contacts, contact.Compare)
	d.notify(Change{Op: OpDelete, Contact: c, Len: len(d.contacts)})
	return nil
}

// Search returns, in canonical order, every contact whose given name or
// family name starts with prefix. Matching is case-sensitive. The directory
// itself is not modified.
func (d *Directory) Search(prefix string) ([]*contact.Contact, error) {
	if d.contacts == nil {
		return nil, ErrInvalidState
	}
	found := make([]*contact.Contact, 0)
	for _, c := range d.contacts {
		if strings.HasPrefix(c.GivenName(), prefix) || strings.HasPrefix(c.FamilyName(), prefix) {
			found = append(found, c)
		}
	}
	slices.SortStableFunc(found, contact.Compare)
	return found, nil
}

// Sort reorders the contacts in place with cmp, keeping equal elements in
// their current relative order. A nil cmp means contact.Compare.
func (d *Directory) Sort(cmp contact.Comparator) {
	if cmp == nil {
		cmp = contact.Compare
	}
	slices.SortStableFunc(d.contacts, cmp)
	d.notify(Change{Op: OpSort, Len: len(d.contacts)})
}

// ListAll returns the current sequence. The slice is a snapshot but the
// contacts are shared with the directory; use Observe to follow later
// changes to the sequence.
func (d *Directory) ListAll() []*contact.Contact {
	return slices.Clone(d.contacts)
}

// Observe registers fn to be called after every mutation. The returned
// function unregisters it.
func (d *Directory) Observe(fn func(Change)) (cancel func()) {
	d.nextObserver++
	id := d.nextObserver
	d.observers = append(d.observers, observer{id: id, fn: fn})
	return func() {
		d.observers = slices.DeleteFunc(d.observers, func(o observer) bool { return o.id == id })
	}
}

func (d *Directory) notify(ch Change) {
	for _, o := range slices.Clone(d.observers) {
		o.fn(ch)
	}
}
