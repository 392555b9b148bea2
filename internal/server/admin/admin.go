// Package admin implements the operator commands behind cmd/admin: schema
// migration, superuser creation and reference data seeding. Every command
// reads the same configuration layers as the server.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/flagx"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/audit"
	"github.com/dmitrijs2005/singularity/internal/server/config"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate            apply pending schema migrations
  create-superuser   create a staff superuser (-email -username -name -last-name)
  seed               insert the default countries and document types
  generate-key       print a fresh base64 field encryption key

Server flags (-d, -k, -c, ...) and environment variables apply to every command.
`

var errUnknownCommand = errors.New("unknown command")

// Recorder writes an audit entry synchronously.
type Recorder interface {
	RecordSync(ctx context.Context, e models.AuditEntry) error
}

// Tool runs admin commands against one database.
type Tool struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	recorder    Recorder
	log         logging.Logger

	hashPassword func(string) (string, error)
	now          func() time.Time
}

func NewTool(db *sql.DB, rm repomanager.RepositoryManager, rec Recorder, log logging.Logger) *Tool {
	return &Tool{
		db:           db,
		repomanager:  rm,
		recorder:     rec,
		log:          log,
		hashPassword: cryptox.HashPassword,
		now:          time.Now,
	}
}

// Migrate applies every pending migration.
func (t *Tool) Migrate(ctx context.Context) error {
	if err := t.repomanager.RunMigrations(ctx, t.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	t.log.Info(ctx, "migrations applied")
	return nil
}

// openDB is a test seam for dbx.Open.
var openDB = dbx.Open

// Main parses args (without the program name) and runs one command.
func Main(ctx context.Context, args []string, stdout io.Writer) error {
	cmd, rest := flagx.SplitCommand(args)

	switch cmd {
	case "", "help":
		fmt.Fprint(stdout, usage)
		return nil
	case "generate-key":
		key, err := cryptox.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, key)
		return nil
	case "migrate", "create-superuser", "seed":
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}

	cfg, err := config.LoadConfig(rest)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var in SuperuserInput
	if cmd == "create-superuser" {
		if in, err = parseSuperuserFlags(rest); err != nil {
			return err
		}
		if in.Password, err = promptPassword(stdout); err != nil {
			return err
		}
	}

	key, err := cfg.MasterKey()
	if err != nil {
		return err
	}
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		return fmt.Errorf("cipher init error: %w", err)
	}

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	logger := logging.New(cfg.LogLevel, "text", stdout)
	rm := repomanager.NewPostgresRepositoryManager(cipher)
	writer := audit.NewWriter(rm.AuditLog(db), 1, logger, metrics.New(prometheus.NewRegistry()))
	tool := NewTool(db, rm, writer, logger)

	switch cmd {
	case "migrate":
		return tool.Migrate(ctx)
	case "seed":
		res, err := tool.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "seeded %d countries, %d document types\n", res.Countries, res.DocumentTypes)
		return nil
	default:
		u, err := tool.CreateSuperuser(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "superuser %s created (id %s)\n", u.Username, u.ID)
		return nil
	}
}

func parseSuperuserFlags(args []string) (SuperuserInput, error) {
	var in SuperuserInput

	fs := flag.NewFlagSet("create-superuser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Username, "username", "", "username")
	fs.StringVar(&in.Name, "name", "", "first name")
	fs.StringVar(&in.LastName, "last-name", "", "last name")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "-username", "-name", "-last-name"})); err != nil {
		return in, err
	}
	if in.Email == "" || in.Username == "" {
		return in, errors.New("-email and -username are required")
	}
	return in, nil
}
