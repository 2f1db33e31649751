package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/smileynet/rubrica"
	"github.com/smileynet/rubrica/internal/config"
	"github.com/smileynet/rubrica/internal/contact"
	"github.com/smileynet/rubrica/internal/directory"
	"github.com/smileynet/rubrica/internal/logger"
	"github.com/smileynet/rubrica/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	File string `help:"Contact file to use instead of the configured one." short:"f" type:"path"`

	closeLog func() error
}

// CLI is the top-level command structure for rubrica.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	List    ListCmd          `cmd:"" help:"List every contact."`
	Search  SearchCmd        `cmd:"" help:"List contacts whose given or family name starts with a prefix."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	Edit    EditCmd          `cmd:"" help:"Replace the names or slots of a contact."`
	Delete  DeleteCmd        `cmd:"" help:"Delete contacts by exact name."`
	Browse  BrowseCmd        `cmd:"" help:"Open the interactive contact browser."`
	Init    InitCmd          `cmd:"" help:"Write the default config to .rubrica/config.yaml."`
}

// errNoMatch reports that a command found no contact to act on.
var errNoMatch = errors.New("no matching contact")

// userConfigDir is the per-user config directory, also searched for template overrides.
func userConfigDir() string {
	return os.ExpandEnv("$HOME/.config/rubrica")
}

// projectConfigPath is where init writes and where the project layer is read from.
const projectConfigPath = ".rubrica/config.yaml"

// loadConfig loads layered config from user and project paths with env overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		filepath.Join(userConfigDir(), "config.yaml"),
		projectConfigPath,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDirectory resolves the configuration and builds the logger and the
// (not yet loaded) Directory from it.
func openDirectory(g *Globals) (*config.Config, *directory.Directory, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if g.File != "" {
		cfg.Directory.File = g.File
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, closeLog := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	slog.SetDefault(log)
	g.closeLog = closeLog

	dir := directory.New(
		directory.WithPath(cfg.Directory.File),
		directory.WithLogger(log),
		directory.WithSkipMalformed(cfg.Directory.SkipMalformed),
	)
	return cfg, dir, nil
}

// load reads the contact file into dir. A file that does not exist yet is an
// empty directory.
func load(dir *directory.Directory) error {
	err := dir.Load()
	if errors.Is(err, directory.ErrFileNotFound) {
		slog.Info("contact file does not exist yet", "path", dir.Path())
		return nil
	}
	return err
}

// checkNames rejects names that would not survive a save and reload.
func checkNames(names ...string) error {
	for _, n := range names {
		if !contact.ValidField(n) {
			return fmt.Errorf("%w: name %q must not contain %q or line breaks", contact.ErrInvalidArgument, n, contact.Separator)
		}
	}
	return nil
}

// phoneSlots validates raw phone input and normalizes it into slots.
func phoneSlots(raw []string) ([]string, error) {
	for _, p := range raw {
		if v := strings.TrimSpace(p); v != "" && !contact.ValidPhone(v) {
			return nil, fmt.Errorf("%w: phone %q must contain only digits", contact.ErrInvalidArgument, p)
		}
	}
	return contact.Slots(raw...)
}

// emailSlots validates raw email input and normalizes it into slots.
func emailSlots(raw []string) ([]string, error) {
	for _, e := range raw {
		if !contact.ValidField(e) {
			return nil, fmt.Errorf("%w: email %q must not contain %q or line breaks", contact.ErrInvalidArgument, e, contact.Separator)
		}
	}
	return contact.Slots(raw...)
}

// --- List command ---

// ListCmd prints every contact in order.
type ListCmd struct {
	Plain bool `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals) error {
	cfg, dir, err := openDirectory(g)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		ForcePlain: l.Plain || cfg.Display.Plain,
	})
	return l.run(dir, display)
}

func (l *ListCmd) run(dir *directory.Directory, display tui.Display) error {
	if err := load(dir); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return display.Show(dir.ListAll())
}

// --- Search command ---

// SearchCmd prints the contacts matching a name prefix.
type SearchCmd struct {
	Prefix string `arg:"" help:"Case-sensitive prefix of the given or family name."`
	Plain  bool   `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the search command.
func (s *SearchCmd) Run(g *Globals) error {
	cfg, dir, err := openDirectory(g)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	display := tui.NewDisplay(tui.DisplayOptions{
		Writer:     os.Stdout,
		ForcePlain: s.Plain || cfg.Display.Plain,
	})
	return s.run(dir, display)
}

func (s *SearchCmd) run(dir *directory.Directory, display tui.Display) error {
	if err := load(dir); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	matches, err := dir.Search(s.Prefix)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return display.Show(matches)
}

// --- Add command ---

// AddCmd adds one contact and saves the file.
type AddCmd struct {
	Family string   `help:"Family name (surname)." short:"s"`
	Given  string   `help:"Given name." short:"n"`
	Phone  []string `help:"Phone number, digits only (repeat up to 3 times)." short:"p" sep:"none"`
	Email  []string `help:"Email address (repeat up to 3 times)." short:"e" sep:"none"`
}

// Run executes the add command.
func (a *AddCmd) Run(g *Globals) error {
	_, dir, err := openDirectory(g)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return a.run(os.Stdout, dir)
}

func (a *AddCmd) run(w io.Writer, dir *directory.Directory) error {
	if err := checkNames(a.Family, a.Given); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	phones, err := phoneSlots(a.Phone)
	if err != nil {
		return fmt.Errorf("add: phones: %w", err)
	}
	emails, err := emailSlots(a.Email)
	if err != nil {
		return fmt.Errorf("add: emails: %w", err)
	}

	c, err := dir.CreateRecord(a.Family, a.Given, phones, emails)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if err := load(dir); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	dir.Add(c)
	if err := dir.Save(); err != nil {
		return fmt.Errorf("add: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Added %s (%d contacts)\n", c, dir.Len())
	return nil
}

// --- Edit command ---

// EditCmd replaces the first contact matching the given names and saves the
// file. Slot lists that are not given keep their current values.
type EditCmd struct {
	Family      string   `help:"Current family name (surname)." short:"s"`
	Given       string   `help:"Current given name." short:"n"`
	NewFamily   string   `help:"New family name." xor:"family"`
	NewGiven    string   `help:"New given name."`
	ClearFamily bool     `help:"Remove the family name." xor:"family"`
	Phone       []string `help:"Replacement phone number (repeat up to 3 times)." short:"p" sep:"none"`
	Email       []string `help:"Replacement email address (repeat up to 3 times)." short:"e" sep:"none"`
}

// Run executes the edit command.
func (e *EditCmd) Run(g *Globals) error {
	_, dir, err := openDirectory(g)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	return e.run(os.Stdout, dir)
}

func (e *EditCmd) run(w io.Writer, dir *directory.Directory) error {
	if err := checkNames(e.NewFamily, e.NewGiven); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if err := load(dir); err != nil {
		return fmt.Errorf("edit: %w", err)
	}

	var old *contact.Contact
	for _, c := range dir.ListAll() {
		if c.FamilyName() == e.Family && c.GivenName() == e.Given {
			old = c
			break
		}
	}
	if old == nil {
		return fmt.Errorf("edit: %w: family %q given %q", errNoMatch, e.Family, e.Given)
	}

	family, given := old.FamilyName(), old.GivenName()
	if e.NewFamily != "" {
		family = e.NewFamily
	}
	if e.ClearFamily {
		family = ""
	}
	if e.NewGiven != "" {
		given = e.NewGiven
	}

	phones := slices.Clone(old.PhoneNumbers())
	if len(e.Phone) > 0 {
		var err error
		if phones, err = phoneSlots(e.Phone); err != nil {
			return fmt.Errorf("edit: phones: %w", err)
		}
	}
	emails := slices.Clone(old.Emails())
	if len(e.Email) > 0 {
		var err error
		if emails, err = emailSlots(e.Email); err != nil {
			return fmt.Errorf("edit: emails: %w", err)
		}
	}

	// Build the replacement first so a rejected edit leaves the old contact in place.
	updated, err := dir.CreateRecord(family, given, phones, emails)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if err := dir.Delete(old); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	dir.Add(updated)
	if err := dir.Save(); err != nil {
		return fmt.Errorf("edit: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Updated %s\n", updated)
	return nil
}

// --- Delete command ---

// DeleteCmd removes contacts whose names match exactly and saves the file.
type DeleteCmd struct {
	Family string `help:"Family name (surname)." short:"s"`
	Given  string `help:"Given name." short:"n"`
	All    bool   `help:"Delete every matching contact, not just the first."`
}

// Run executes the delete command.
func (d *DeleteCmd) Run(g *Globals) error {
	_, dir, err := openDirectory(g)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return d.run(os.Stdout, dir)
}

func (d *DeleteCmd) run(w io.Writer, dir *directory.Directory) error {
	if err := load(dir); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	var doomed []*contact.Contact
	for _, c := range dir.ListAll() {
		if c.FamilyName() == d.Family && c.GivenName() == d.Given {
			doomed = append(doomed, c)
			if !d.All {
				break
			}
		}
	}
	if len(doomed) == 0 {
		return fmt.Errorf("delete: %w: family %q given %q", errNoMatch, d.Family, d.Given)
	}

	for _, c := range doomed {
		if err := dir.Delete(c); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
	}
	if err := dir.Save(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Deleted %d contact(s), %d left\n", len(doomed), dir.Len())
	return nil
}

// --- Browse command ---

// BrowseCmd opens the interactive browser.
type BrowseCmd struct{}

// browseFunc runs the browser over a loaded directory.
type browseFunc func(ctx context.Context, dir *directory.Directory) error

// Run builds real dependencies and launches the browser.
func (b *BrowseCmd) Run(g *Globals) error {
	isTTY := tui.IsTTY(os.Stdout) && tui.IsTTY(os.Stdin)
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}

	_, dir, err := openDirectory(g)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return b.run(ctx, isTTY, dir, func(ctx context.Context, dir *directory.Directory) error {
		return tui.Browse(ctx, dir, tui.BrowseOptions{})
	})
}

// run loads the directory and hands it to the browser, enabling testable wiring.
func (b *BrowseCmd) run(ctx context.Context, isTTY bool, dir *directory.Directory, browse browseFunc) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	if err := load(dir); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	if err := browse(ctx, dir); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

// --- Init command ---

// InitCmd writes the default config file for the current project.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

// Run executes the init command.
func (i *InitCmd) Run() error {
	templates := rubrica.OverlayFS(filepath.Join(userConfigDir(), "templates"), rubrica.Templates)
	return i.run(os.Stdout, templates, projectConfigPath)
}

func (i *InitCmd) run(w io.Writer, templates fs.FS, dest string) error {
	if !i.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("init: %s already exists (use --force to overwrite)", dest)
		}
	}

	data, err := fs.ReadFile(templates, rubrica.ConfigTemplate)
	if err != nil {
		return fmt.Errorf("init: reading template: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Wrote %s\n", dest)
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitData    = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	// Problems with the contact data itself, as opposed to the environment.
	if errors.Is(err, contact.ErrInvalidArgument) ||
		errors.Is(err, contact.ErrNullReference) ||
		errors.Is(err, directory.ErrMalformedLine) ||
		errors.Is(err, errNoMatch) {
		return exitData
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rubrica"),
		kong.Description("A local address book kept in a semicolon-delimited file."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if cli.closeLog != nil {
		_ = cli.closeLog()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
