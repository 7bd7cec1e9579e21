// Command guestctl is the operator CLI for the guest list: it prints access
// codes, seeds guests and timeline entries from YAML and exports the list as CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/app"
	"github.com/charlesng35/soiree/internal/database"
	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/services"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("guestctl", flag.ContinueOnError)
	fs.SetOutput(out)
	configDir := fs.String("config", "", "Directory containing config.yaml")
	fs.Usage = func() { printUsage(out) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		printUsage(out)
		return errors.New("missing command")
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "help" {
		printUsage(out)
		return nil
	}

	db, err := openDatabase(*configDir)
	if err != nil {
		return err
	}
	defer database.Close(db)

	switch cmd {
	case "codes":
		return cmdCodes(ctx, db, out)
	case "seed":
		if len(rest) != 1 {
			return errors.New("usage: guestctl seed <file.yaml>")
		}
		return cmdSeed(ctx, db, rest[0], out)
	case "export":
		return cmdExport(ctx, db, out)
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage(out io.Writer) {
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(out, "Usage: guestctl [-config dir] <command> [args]")
	fmt.Fprintln(out)
	yellow.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  codes                List every guest with its access code and role")
	fmt.Fprintln(out, "  seed <file.yaml>     Create guests and timeline entries from a fixture")
	fmt.Fprintln(out, "  export               Write the guest list as CSV to stdout")
}

func openDatabase(configDir string) (*gorm.DB, error) {
	var (
		cfg *app.Config
		err error
	)
	if configDir != "" {
		cfg, err = app.LoadConfig(configDir)
	} else {
		cfg, err = app.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.ConnectionConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func cmdCodes(ctx context.Context, db *gorm.DB, out io.Writer) error {
	var guests []models.Guest
	if err := db.WithContext(ctx).Order("name ASC").Find(&guests).Error; err != nil {
		return fmt.Errorf("list guests: %w", err)
	}
	writeCodes(out, guests)
	return nil
}

func writeCodes(out io.Writer, guests []models.Guest) {
	if len(guests) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No guests found")
		return
	}

	bold := color.New(color.Bold)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	bold.Fprintln(w, "NAME\tCODE\tROLE\tINVITES")
	for _, g := range guests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", g.Name, g.Code, roleLabel(g.Role), g.MaxInvites)
	}
	_ = w.Flush()
}

func roleLabel(role string) string {
	switch role {
	case models.RoleAdmin:
		return color.RedString(role)
	case models.RoleVIP, models.RoleFamily:
		return color.MagentaString(role)
	default:
		return role
	}
}

func cmdSeed(ctx context.Context, db *gorm.DB, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fx, err := database.LoadFixture(f)
	if err != nil {
		return err
	}
	report, err := database.ApplyFixture(ctx, db, fx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprintf(out, "Guests: %d created, %d already present\n", report.GuestsCreated, report.GuestsExisting)
	green.Fprintf(out, "Timeline: %d created, %d skipped\n", report.TimelineCreated, report.TimelineSkipped)
	return nil
}

func cmdExport(ctx context.Context, db *gorm.DB, out io.Writer) error {
	guests, err := services.NewGuestService(db, nil)
	if err != nil {
		return err
	}
	csv, err := guests.ExportCSV(ctx, &models.Guest{Role: models.RoleAdmin})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, csv)
	return err
}
