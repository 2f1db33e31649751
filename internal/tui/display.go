package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/rubrica/internal/contact"
	"github.com/smileynet/rubrica/internal/directory"
)

// Display renders a list of contacts.
type Display interface {
	Show(contacts []*contact.Contact) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force plain text even if TTY.
}

// NewDisplay returns a table display when the writer is a TTY, or a plain
// text display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	if opts.ForcePlain || !IsTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer}
	}

	return &TableDisplay{w: opts.Writer}
}

// IsTTY reports whether v is a file connected to a terminal.
func IsTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainDisplay writes each contact in its persisted line form, so the output
// can be piped back into a contact file.
type PlainDisplay struct {
	w io.Writer
}

// Show writes one formatted line per contact.
func (d *PlainDisplay) Show(contacts []*contact.Contact) error {
	for _, c := range contacts {
		if _, err := io.WriteString(d.w, c.Format()); err != nil {
			return err
		}
	}
	return nil
}

// TableDisplay renders contacts as a bordered table.
type TableDisplay struct {
	w io.Writer
}

// Show renders the table, or a notice when there is nothing to show.
func (d *TableDisplay) Show(contacts []*contact.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(d.w, DimStyle().Render("no contacts"))
		return err
	}
	_, err := fmt.Fprintln(d.w, RenderTable(contacts))
	return err
}

// RenderTable lays out contacts with one column per name and one per slot kind.
func RenderTable(contacts []*contact.Contact) string {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			c.FamilyName(),
			c.GivenName(),
			strings.Join(contact.Values(c.PhoneNumbers()), "\n"),
			strings.Join(contact.Values(c.Emails()), "\n"),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(BorderStyle()).
		Headers("Surname", "Name", "Phones", "Emails").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle()
			}
			return CellStyle()
		}).
		Render()
}

// BrowseOptions configures the interactive browser program.
type BrowseOptions struct {
	Input  io.Reader // default: os.Stdin
	Output io.Writer // default: os.Stdout
}

// Browse runs the interactive browser over dir until the user quits or ctx
// is cancelled.
func Browse(ctx context.Context, dir *directory.Directory, opts BrowseOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	m := NewModel(dir)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(opts.Input),
		tea.WithOutput(opts.Output),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.unsubscribe()
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
