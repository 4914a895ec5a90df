package ops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sungwon/ion-notify/internal/config"
)

var (
	// ErrAborted is returned when the operator declines a required confirmation.
	ErrAborted = errors.New("aborted")
	// ErrNotRoot is returned by chores that must run as root.
	ErrNotRoot = errors.New("you must be root")
)

// Cache choices for ClearCache.
const (
	CacheAsk        = -1
	CacheProduction = 0
	CacheSandbox    = 1
)

// ProductionSandbox is the session prefix of the production instance.
const ProductionSandbox = "ion"

// Ops runs the deployment chores.
type Ops struct {
	cfg    config.OpsConfig
	run    Runner
	prompt *Prompter
	open   OpenStore
	out    io.Writer
	log    zerolog.Logger

	isRoot func() bool
	getenv func(string) string
}

// New creates an Ops.
func New(cfg config.OpsConfig, run Runner, prompt *Prompter, open OpenStore, out io.Writer, log zerolog.Logger) *Ops {
	if len(cfg.Fixtures) == 0 {
		cfg.Fixtures = config.DefaultFixtures
	}
	return &Ops{
		cfg:    cfg,
		run:    run,
		prompt: prompt,
		open:   open,
		out:    out,
		log:    log,
		isRoot: func() bool { return os.Geteuid() == 0 },
		getenv: os.Getenv,
	}
}

func (o *Ops) exec(ctx context.Context, c Command) error {
	o.log.Debug().Str("command", c.String()).Msg("running")
	return o.run.Run(ctx, c)
}

func (o *Ops) requireRoot() error {
	if !o.isRoot() {
		return ErrNotRoot
	}
	return nil
}

// CleanPyc deletes every .pyc file under dir and returns how many it removed.
func (o *Ops) CleanPyc(dir string) (int, error) {
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".pyc" {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("clean pyc in %s: %w", dir, err)
	}
	o.log.Debug().Str("dir", dir).Int("removed", removed).Msg("cleaned pyc files")
	return removed, nil
}

func validPort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("not a valid port number: %q", port)
	}
	return nil
}

// RunServer cleans compiled files and starts the Django dev server on port.
// dbt toggles the debug toolbar and must be yes or no.
func (o *Ops) RunServer(ctx context.Context, port, dbt string) error {
	if port == "" {
		return errors.New("you must specify a port")
	}
	if err := validPort(port); err != nil {
		return err
	}
	if dbt == "" {
		dbt = "yes"
	}
	dbt = strings.ToLower(dbt)
	if dbt != "yes" && dbt != "no" {
		return errors.New("specify 'yes' or 'no' for 'dbt' option (enable debug toolbar)")
	}

	if _, err := o.CleanPyc("."); err != nil {
		return err
	}

	return o.exec(ctx, Command{
		Name: "./manage.py",
		Args: []string{"runserver", "0.0.0.0:" + port},
		Env:  []string{"SHOW_DEBUG_TOOLBAR=" + strings.ToUpper(dbt)},
	})
}

// KillServer interrupts the dev server listening on port.
func (o *Ops) KillServer(ctx context.Context, port string) error {
	if err := validPort(port); err != nil {
		return err
	}
	return o.exec(ctx, Command{
		Name: "pkill",
		Args: []string{"-INT", "-f", "runserver 0.0.0.0:" + port},
	})
}

// RestartProductionGunicorn restarts the production application server. It
// asks first unless skipConfirm is set.
func (o *Ops) RestartProductionGunicorn(ctx context.Context, skipConfirm bool) error {
	if err := o.requireRoot(); err != nil {
		return err
	}
	if !skipConfirm {
		ok, err := o.prompt.Confirm("Are you sure you want to restart the production Gunicorn instance?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if _, err := o.CleanPyc(o.cfg.ProductionRoot); err != nil {
		return err
	}
	return o.exec(ctx, Command{
		Name: "supervisorctl",
		Args: []string{"restart", o.cfg.SupervisorProgram},
	})
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// ClearSessions deletes every session of a sandbox, or of production when
// sandbox is "ion". An empty sandbox is asked for, defaulting to the active
// virtualenv's name.
func (o *Ops) ClearSessions(ctx context.Context, sandbox string) error {
	if sandbox == "" {
		def := ""
		if ve := o.getenv("VIRTUAL_ENV"); ve != "" {
			def = filepath.Base(ve)
		}
		answer, err := o.prompt.Prompt(
			`Enter the name of the sandbox whose sessions you would like to delete, or "ion" to clear production sessions:`, def)
		if err != nil {
			return err
		}
		sandbox = answer
	}
	if sandbox == "" {
		return errors.New("a sandbox name is required")
	}

	store := o.open(o.cfg.SessionDB)
	defer store.Close()

	keys, err := store.Keys(ctx, sandbox+":session:*")
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	count := len(keys)
	if count == 0 {
		fmt.Fprintln(o.out, "No sessions to destroy.")
		return nil
	}

	qualifier := ""
	if sandbox == ProductionSandbox {
		qualifier = "production "
	}
	ok, err := o.prompt.Confirm(fmt.Sprintf("Are you sure you want to destroy %d %ssession%s?", count, qualifier, plural(count)))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if _, err := store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("destroy sessions: %w", err)
	}
	fmt.Fprintf(o.out, "Destroyed %d session%s.\n", count, plural(count))
	return nil
}

// ClearCache flushes the production or sandbox cache. CacheAsk shows a menu.
func (o *Ops) ClearCache(ctx context.Context, choice int) error {
	if choice == CacheAsk {
		n, err := o.prompt.Choose([]string{"Production cache", "Sandbox cache"}, "Which cache would you like to clear?")
		if err != nil {
			return err
		}
		choice = n
	}

	db := o.cfg.SandboxCacheDB
	if choice == CacheProduction {
		db = o.cfg.ProductionCacheDB
	}

	store := o.open(db)
	defer store.Close()

	if err := store.FlushDB(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	o.log.Info().Int("db", db).Msg("cache cleared")
	return nil
}

// LoadFixtures recreates the production or sandbox database and loads the
// configured fixtures into it.
func (o *Ops) LoadFixtures(ctx context.Context) error {
	n, err := o.prompt.Choose(
		[]string{"Production database (PostgreSQL)", "Sandbox database (SQLite3)"},
		"Which database would you like to clear and repopulate?")
	if err != nil {
		return err
	}

	production := "FALSE"
	if n == 0 {
		ok, err := o.prompt.Confirm("Are you sure you want to clear the production database?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		production = "TRUE"
		if err := o.exec(ctx, Command{Name: "dropdb", Args: []string{"-h", "localhost", o.cfg.ProductionDB}}); err != nil {
			return err
		}
		if err := o.exec(ctx, Command{Name: "createdb", Args: []string{"-h", "localhost", o.cfg.ProductionDB}}); err != nil {
			return err
		}
	} else {
		if err := os.Remove(o.cfg.SandboxDBFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove sandbox database: %w", err)
		}
	}

	env := []string{"PRODUCTION=" + production}
	if err := o.exec(ctx, Command{Name: "./manage.py", Args: []string{"syncdb"}, Env: env}); err != nil {
		return err
	}
	for _, f := range o.cfg.Fixtures {
		if err := o.exec(ctx, Command{Name: "./manage.py", Args: []string{"loaddata", f}, Env: env}); err != nil {
			return err
		}
	}
	return nil
}

var deployQuestions = []string{
	"Are you sure you want to deploy?",
	"This will kill all active sessions. Are you still sure?",
	"Has the database been migrated?",
	"Are you absolutely sure you want to deploy? This is your last chance to stop the deployment",
	"JK this is actually your last chance. Are you sure?",
}

// Deploy pulls the production checkout, clears production sessions and
// cache, then restarts the application server. Steps are not rolled back.
func (o *Ops) Deploy(ctx context.Context) error {
	if err := o.requireRoot(); err != nil {
		return err
	}
	for _, q := range deployQuestions {
		ok, err := o.prompt.Confirm(q)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if err := o.exec(ctx, Command{Name: "git", Args: []string{"pull"}, Dir: o.cfg.ProductionRoot}); err != nil {
		return err
	}
	if err := o.ClearSessions(ctx, ProductionSandbox); err != nil {
		return err
	}
	if err := o.ClearCache(ctx, CacheProduction); err != nil {
		return err
	}
	if err := o.RestartProductionGunicorn(ctx, true); err != nil {
		return err
	}

	fmt.Fprintln(o.out, "Deploy complete!")
	return nil
}

// Contributors prints the git contributors ranked by commit count.
func (o *Ops) Contributors(ctx context.Context) error {
	return o.exec(ctx, Command{Name: "git", Args: []string{"--no-pager", "shortlog", "-ns"}})
}
