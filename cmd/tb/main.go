// Command tb is the taskbook CLI client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/zcong1993/taskbook/book"
	"github.com/zcong1993/taskbook/config"
	"github.com/zcong1993/taskbook/internal/version"
	"github.com/zcong1993/taskbook/render"
	"github.com/zcong1993/taskbook/storage"
	"github.com/zcong1993/taskbook/update"
)

func main() {
	var (
		configPath  = flag.String("config", "", "config file (default $TASKBOOK_CONFIG, else ~/.taskbook.yaml)")
		directory   = flag.String("dir", "", "taskbook directory (overrides the configured one)")
		verbose     = flag.Bool("verbose", false, "debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("tb %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.BuildDate)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		render.Fail(os.Stderr, "%v", err)
		os.Exit(1)
	}
	if *directory != "" {
		cfg.Directory = config.ExpandPath(*directory)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		out: render.New(os.Stdout, render.Options{
			DisplayCompleteTasks:    cfg.DisplayCompleteTasks,
			DisplayProgressOverview: cfg.DisplayProgressOverview,
		}),
	}

	// Bare tb shows the board, like list.
	args := flag.Args()
	cmd, rest := "list", []string(nil)
	if len(args) > 0 {
		cmd, rest = args[0], args[1:]
	}

	ctx := context.Background()

	switch cmd {
	case "task", "t":
		err = a.cmdTask(ctx, rest)
	case "note", "n":
		err = a.cmdNote(ctx, rest)
	case "check", "c":
		err = a.cmdCheck(ctx, rest)
	case "begin", "b":
		err = a.cmdBegin(ctx, rest)
	case "star", "s":
		err = a.cmdStar(ctx, rest)
	case "list", "l":
		err = a.cmdList(ctx, rest)
	case "find", "f":
		err = a.cmdFind(ctx, rest)
	case "move", "m":
		err = a.cmdMove(ctx, rest)
	case "edit", "e":
		err = a.cmdEdit(ctx, rest)
	case "priority", "p":
		err = a.cmdPriority(ctx, rest)
	case "delete", "d":
		err = a.cmdDelete(ctx, rest)
	case "restore", "r":
		err = a.cmdRestore(ctx, rest)
	case "archive", "a":
		err = a.cmdArchive(ctx)
	case "timeline", "i":
		err = a.cmdTimeline(ctx)
	case "stats", "y":
		err = a.cmdStats(ctx)
	case "copy", "cp":
		err = a.cmdCopy(ctx, rest)
	case "clear":
		err = a.cmdClear(ctx)
	case "update":
		err = a.cmdUpdate(ctx)
	case "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		render.Fail(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `tb — taskbook CLI

Usage:
  tb [flags] [command] [args]

Flags:
  --config  <path>  config file (default $TASKBOOK_CONFIG, else ~/.taskbook.yaml)
  --dir     <path>  taskbook directory (overrides the configured one)
  --verbose         debug logging
  --version         print version

Commands:
  task|t <desc> [@board...] [p:1|2|3]  create a task
  note|n <desc> [@board...]            create a note
  check|c @<id>...                     toggle completion
  begin|b @<id>...                     toggle in-progress
  star|s @<id>...                      toggle star
  list|l [board|attribute]...          board view (the default command)
  find|f <term>...                     search descriptions
  move|m @<id> <board>...              replace an item's boards
  edit|e @<id> <description>           replace an item's description
  priority|p @<id> <1|2|3>             set a task's priority
  delete|d @<id>...                    archive items
  restore|r @<id>...                   restore archived items
  archive|a                            show the archive
  timeline|i                           timeline view
  stats|y                              progress summary
  copy|cp @<id>...                     copy descriptions to the clipboard
  clear                                archive all complete tasks
  update                               update tb to the latest release
  help                                 show this help
`)
}

// app wires one command invocation: config, logging and presentation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    *render.Renderer
}

// newStore builds the configured backend.
func (a *app) newStore() (storage.Store, error) {
	switch a.cfg.Backend {
	case config.BackendFile, "":
		return storage.NewFileStore(a.cfg.Directory, a.logger)
	case config.BackendSQLite:
		dir := filepath.Dir(a.cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrInvalidDirectory, dir, err)
		}
		return storage.NewSQLiteStore(a.cfg.SQLitePath)
	case config.BackendRemote:
		return storage.NewRemoteStore(storage.RemoteConfig{
			BaseURL:           a.cfg.Remote.BaseURL,
			Token:             a.cfg.Remote.Token,
			Namespace:         a.cfg.Remote.Namespace,
			AllowEmptyOnError: a.cfg.Remote.AllowEmptyOnError,
		}, a.logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", a.cfg.Backend)
	}
}

// withBook opens the store for one command and closes it afterwards.
func (a *app) withBook(fn func(*book.Book) error) error {
	store, err := a.newStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			a.logger.Warn("store close failed", "error", cerr)
		}
	}()
	return fn(book.New(store, a.logger))
}

func (a *app) cmdTask(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		t, err := b.CreateTask(ctx, args)
		if err != nil {
			return err
		}
		render.Success(os.Stdout, "Created task %d", t.ID)
		return nil
	})
}

func (a *app) cmdNote(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		n, err := b.CreateNote(ctx, args)
		if err != nil {
			return err
		}
		render.Success(os.Stdout, "Created note %d", n.ID)
		return nil
	})
}

func (a *app) cmdCheck(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		res, err := b.Check(ctx, args)
		if err != nil {
			return err
		}
		reportToggle(res, "Checked", "Unchecked", "task")
		return nil
	})
}

func (a *app) cmdBegin(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		res, err := b.Begin(ctx, args)
		if err != nil {
			return err
		}
		reportToggle(res, "Started", "Paused", "task")
		return nil
	})
}

func (a *app) cmdStar(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		res, err := b.Star(ctx, args)
		if err != nil {
			return err
		}
		reportToggle(res, "Starred", "Unstarred", "item")
		return nil
	})
}

// reportToggle prints one line per outcome a toggle produced.
func reportToggle(res book.ToggleResult, onTrue, onFalse, word string) {
	if n := len(res.BecameTrue); n > 0 {
		render.Success(os.Stdout, "%s %s %s", onTrue, noun(word, n), render.IDList(res.BecameTrue))
	}
	if n := len(res.BecameFalse); n > 0 {
		render.Success(os.Stdout, "%s %s %s", onFalse, noun(word, n), render.IDList(res.BecameFalse))
	}
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		g, err := b.List(ctx, args)
		if err != nil {
			return err
		}
		a.out.Groups(g)
		st, err := b.Stats(ctx)
		if err != nil {
			return err
		}
		a.out.Overview(st)
		return nil
	})
}

func (a *app) cmdFind(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		g, err := b.Find(ctx, args)
		if err != nil {
			return err
		}
		a.out.Groups(g)
		return nil
	})
}

func (a *app) cmdMove(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		it, err := b.Move(ctx, args)
		if err != nil {
			return err
		}
		m := it.Common()
		render.Success(os.Stdout, "Moved item %d to %s", m.ID, strings.Join(m.Boards, ", "))
		return nil
	})
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		it, err := b.EditDescription(ctx, args)
		if err != nil {
			return err
		}
		render.Success(os.Stdout, "Updated description of item %d", it.Common().ID)
		return nil
	})
}

func (a *app) cmdPriority(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		it, err := b.UpdatePriority(ctx, args)
		if err != nil {
			return err
		}
		render.Success(os.Stdout, "Updated priority of task %d", it.Common().ID)
		return nil
	})
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		ids, err := b.Delete(ctx, args)
		if err != nil {
			return err
		}
		render.Success(os.Stdout, "Archived %s %s", noun("item", len(ids)), render.IDList(ids))
		return nil
	})
}

func (a *app) cmdRestore(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		ids, err := b.Restore(ctx, args)
		if err != nil {
			return err
		}
		render.Success(os.Stdout, "Restored %s %s", noun("item", len(ids)), render.IDList(ids))
		return nil
	})
}

func (a *app) cmdArchive(ctx context.Context) error {
	return a.withBook(func(b *book.Book) error {
		g, err := b.ArchiveTimeline(ctx)
		if err != nil {
			return err
		}
		// The archive shows everything it holds, whatever the display
		// switches say.
		render.New(os.Stdout, render.Options{DisplayCompleteTasks: true}).Groups(g)
		return nil
	})
}

func (a *app) cmdTimeline(ctx context.Context) error {
	return a.withBook(func(b *book.Book) error {
		g, err := b.Timeline(ctx)
		if err != nil {
			return err
		}
		a.out.Groups(g)
		st, err := b.Stats(ctx)
		if err != nil {
			return err
		}
		a.out.Overview(st)
		return nil
	})
}

func (a *app) cmdStats(ctx context.Context) error {
	return a.withBook(func(b *book.Book) error {
		st, err := b.Stats(ctx)
		if err != nil {
			return err
		}
		a.out.Stats(st)
		return nil
	})
}

func (a *app) cmdCopy(ctx context.Context, args []string) error {
	return a.withBook(func(b *book.Book) error {
		text, err := b.Descriptions(ctx, args)
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		n := strings.Count(text, "\n") + 1
		render.Success(os.Stdout, "Copied %d %s to the clipboard", n, noun("description", n))
		return nil
	})
}

func (a *app) cmdClear(ctx context.Context) error {
	return a.withBook(func(b *book.Book) error {
		ids, err := b.Clear(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			render.Success(os.Stdout, "No complete tasks to archive")
			return nil
		}
		render.Success(os.Stdout, "Archived %s %s", noun("task", len(ids)), render.IDList(ids))
		return nil
	})
}

func (a *app) cmdUpdate(ctx context.Context) error {
	u := update.New(version.Version)
	rel, err := u.Check(ctx)
	if err != nil {
		return err
	}
	if rel == nil {
		render.Success(os.Stdout, "tb %s is up to date", version.Version)
		return nil
	}
	if err := u.Apply(ctx, rel); err != nil {
		return err
	}
	render.Success(os.Stdout, "Updated tb to %s", rel.Version)
	return nil
}

func noun(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
