package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisonrobin/todo/pkg/auth"
	"github.com/harrisonrobin/todo/pkg/colors"
	"github.com/harrisonrobin/todo/pkg/config"
	"github.com/harrisonrobin/todo/pkg/console"
	"github.com/harrisonrobin/todo/pkg/export"
	"github.com/harrisonrobin/todo/pkg/google"
	"github.com/harrisonrobin/todo/pkg/index"
	"github.com/harrisonrobin/todo/pkg/model"
	"github.com/harrisonrobin/todo/pkg/orgmode"
	"github.com/harrisonrobin/todo/pkg/store"
	"github.com/harrisonrobin/todo/pkg/taskwarrior"
)

const usage = `Usage: todo [flags] <command> [command flags]

Commands:
  menu                                   interactive menu (default)
  add -name N -desc D [-priority P]      add a task
  remove -name N                         remove the first task named N
  list [-priority P]                     list tasks
  export -format json|csv|pdf|sqlite -out PATH [-font TTF]
  import -from org|taskwarrior [-in PATH] [-tag T]
  auth                                   authenticate with Google Calendar
  sync                                   push tasks to Google Calendar

Flags:
`

func main() {
	// 1. Parse Flags
	file := flag.String("file", "", "Task file to use (overrides config)")
	setFile := flag.String("set-file", "", "Set the default task file")
	calendarName := flag.String("calendar", "", "Google Calendar name to sync with (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	// 2. Handle Set File / Set Calendar
	if *setFile != "" || *setCalendar != "" {
		update, err := configUpdate(*setFile, *setCalendar)
		if err != nil {
			log.Fatalf("Error resolving task file: %v", err)
		}
		if err := config.Save(update); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		if update.File != "" {
			fmt.Printf("Default task file set to: %s\n", update.File)
		}
		if *setCalendar != "" {
			fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		}
		return
	}

	// 3. Resolve settings (Priority: Flag > Env > Config > Default)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *file != "" {
		cfg.File = *file
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}
	configDir, err := config.Dir()
	if err != nil {
		log.Fatalf("could not find path to configuration directory: %v", err)
	}

	command := "menu"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	// 4. Handle Authentication
	if command == "auth" {
		if err := auth.Reset(configDir); err != nil {
			log.Fatalf("%v. Please delete it manually", err)
		}
		if _, err := auth.GetClient(context.Background(), configDir, auth.Scopes); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return
	}

	// 5. Open the task store
	st, err := store.New(cfg.File)
	if err != nil {
		log.Fatalf("Error loading tasks: %v", err)
	}

	switch command {
	case "menu":
		if err := console.NewMenu(st, os.Stdin, os.Stdout).Run(); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		name := fs.String("name", "", "task name")
		desc := fs.String("desc", "", "task description")
		priority := fs.String("priority", model.PriorityMedium, "high|medium|low")
		fs.Parse(args)
		if *name == "" || *desc == "" {
			log.Fatalf("add: -name and -desc are required")
		}
		if err := st.Add(model.NewTask(*name, *desc, *priority)); err != nil {
			log.Fatalf("Error adding task: %v", err)
		}
		fmt.Println("Task added.")

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		name := fs.String("name", "", "task name (exact match)")
		fs.Parse(args)
		removed, err := st.Remove(*name)
		if err != nil {
			log.Fatalf("Error removing task: %v", err)
		}
		if !removed {
			fmt.Println("Task not found.")
			os.Exit(1)
		}
		fmt.Println("Task removed.")

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		priority := fs.String("priority", "", "only show this priority")
		fs.Parse(args)
		console.PrintTasks(os.Stdout, console.FilterByPriority(st.List(), *priority))

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		format := fs.String("format", export.FormatJSON, "json|csv|pdf|sqlite")
		out := fs.String("out", "", "output path (default tasks.<format>)")
		font := fs.String("font", "", "pdf: TrueType font file for non-Latin text")
		fs.Parse(args)
		if *out == "" {
			*out = "tasks." + strings.ToLower(*format)
		}
		if err := runExport(st.List(), *format, *out, *font); err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("Exported -> %s\n", *out)

	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		from := fs.String("from", "org", "org|taskwarrior")
		in := fs.String("in", "", "input file (taskwarrior: default runs `task export`, - reads stdin)")
		tag := fs.String("tag", "", "org: only import headlines with this tag")
		fs.Parse(args)
		tasks, err := readImport(*from, *in, *tag, time.Now())
		if err != nil {
			log.Fatalf("import: %v", err)
		}
		for _, t := range tasks {
			if err := st.Add(t); err != nil {
				log.Fatalf("Error adding task: %v", err)
			}
		}
		fmt.Printf("Imported %d tasks.\n", len(tasks))

	case "sync":
		runSync(st, cfg, configDir)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// configUpdate builds the config change for -set-file/-set-calendar. The task
// file is stored as an absolute path so later runs resolve it the same way.
func configUpdate(setFile, setCalendar string) (*config.Config, error) {
	update := &config.Config{Calendar: setCalendar}
	if setFile != "" {
		abs, err := filepath.Abs(setFile)
		if err != nil {
			return nil, err
		}
		update.File = abs
	}
	return update, nil
}

func runExport(tasks []model.Task, format, out, font string) error {
	if strings.EqualFold(format, export.FormatSQLite) {
		return export.ExportSQLite(context.Background(), tasks, out)
	}
	b, err := export.ExportWithFont(tasks, format, font)
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func readImport(from, in, tag string, now time.Time) ([]model.Task, error) {
	switch from {
	case "org":
		if in == "" {
			return nil, fmt.Errorf("-in is required for org import")
		}
		items, err := orgmode.ParseFile(in, now)
		if err != nil {
			return nil, err
		}
		var tasks []model.Task
		for _, item := range orgmode.FilterItems(items, tag) {
			tasks = append(tasks, item.Task)
		}
		return tasks, nil

	case "taskwarrior":
		client := taskwarrior.NewClient()
		var twTasks []taskwarrior.Task
		var err error
		switch in {
		case "":
			twTasks, err = client.GetTasks(nil)
		case "-":
			twTasks, err = client.ParseTasks(os.Stdin)
		default:
			f, openErr := os.Open(in)
			if openErr != nil {
				return nil, openErr
			}
			defer f.Close()
			twTasks, err = client.ParseTasks(f)
		}
		if err != nil {
			return nil, err
		}
		var tasks []model.Task
		for _, tw := range twTasks {
			t := tw.ToModel(time.Local)
			if t.Timestamp == "" {
				t.Timestamp = now.Format(model.TimestampLayout)
			}
			tasks = append(tasks, t)
		}
		return tasks, nil

	default:
		return nil, fmt.Errorf("unknown import source %q", from)
	}
}

func runSync(st *store.Store, cfg *config.Config, configDir string) {
	evtIndex, err := index.NewEventIndex(configDir, st.Path())
	if err != nil {
		log.Printf("Warning: failed to initialize event index: %v", err)
	}

	gClient, err := google.NewClient(context.Background(), configDir, cfg.Calendar, evtIndex, colors.NewPalette(cfg.Colors))
	if err != nil {
		log.Fatalf("Error creating Google Calendar client: %v", err)
	}

	report, syncErr := gClient.Sync(st.List())
	// Save mappings even after a partial sync so created events are not duplicated.
	if evtIndex != nil {
		if err := evtIndex.Save(); err != nil {
			log.Printf("Warning: failed to save event index: %v", err)
		}
	}
	if syncErr != nil {
		log.Fatalf("Sync failed after %s: %v", report, syncErr)
	}
	fmt.Printf("Synced to %s: %s\n", cfg.Calendar, report)
}
