package directory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/smileynet/rubrica/internal/contact"
)

// DefaultPath is the file Save and Load use when no path is configured.
const DefaultPath = "rubrica.csv"

// Header is the first line of every saved file. Load discards it unread.
const Header = "Surname;Name;Phone1;Phone2;Phone3;Email1;Email2;Email3"

// FieldCount is the number of fields on every data line.
const FieldCount = 2 + 2*contact.MaxSlots

// Save writes the directory to its file, replacing any previous content.
func (d *Directory) Save() error {
	f, err := os.Create(d.path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrIO, d.path, err)
	}
	if err := d.Export(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %w", ErrIO, d.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrIO, d.path, err)
	}
	d.log().Debug("saved directory", "path", d.path, "contacts", len(d.contacts))
	return nil
}

// Export writes the header and one formatted line per contact, in the
// current order.
func (d *Directory) Export(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, c := range d.contacts {
		if _, err := bw.WriteString(c.Format()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads the directory file and adds every contact in it. Existing
// contacts are kept. An empty file leaves the directory unchanged.
func (d *Directory) Load() error {
	f, err := os.Open(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrFileNotFound, d.path, err)
		}
		return fmt.Errorf("%w: opening %s: %w", ErrIO, d.path, err)
	}
	defer f.Close()

	if err := d.Import(f); err != nil {
		if errors.Is(err, ErrMalformedLine) || errors.Is(err, contact.ErrInvalidArgument) {
			return fmt.Errorf("loading %s: %w", d.path, err)
		}
		return fmt.Errorf("%w: reading %s: %w", ErrIO, d.path, err)
	}
	d.log().Debug("loaded directory", "path", d.path, "contacts", len(d.contacts))
	return nil
}

// Import reads the header line and then one contact per line from r, adding
// each in turn. Contacts read before a failing line stay added. Lines may be
// of any length.
func (d *Directory) Import(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	if !sc.Scan() {
		return sc.Err()
	}

	added := 0
	for n := 2; sc.Scan(); n++ {
		c, err := d.parseLine(strings.TrimSuffix(sc.Text(), "\r"))
		if err != nil {
			err = fmt.Errorf("line %d: %w", n, err)
			if !d.skipMalformed {
				return err
			}
			d.log().Warn("skipping unreadable line", "path", d.path, "line", n, "err", err)
			continue
		}
		d.Add(c)
		added++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	d.notify(Change{Op: OpLoad, Len: len(d.contacts)})
	d.log().Debug("imported contacts", "added", added)
	return nil
}

func (d *Directory) parseLine(line string) (*contact.Contact, error) {
	fields := strings.Split(line, contact.Separator)
	if len(fields) != FieldCount {
		return nil, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedLine, len(fields), FieldCount)
	}
	return d.CreateRecord(fields[0], fields[1],
		[]string{fields[2], fields[3], fields[4]},
		[]string{fields[5], fields[6], fields[7]},
	)
}

func (d *Directory) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}
