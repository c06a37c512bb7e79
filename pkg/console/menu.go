package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/harrisonrobin/todo/pkg/model"
)

// TaskStore is the subset of store.Store the menu drives.
type TaskStore interface {
	Add(task model.Task) error
	Remove(name string) (bool, error)
	List() []model.Task
}

// Menu is the interactive add/remove/list loop.
type Menu struct {
	store TaskStore
	in    *bufio.Scanner
	out   io.Writer
	// newTask stamps new tasks; tests replace it.
	newTask func(name, description, priority string) model.Task
}

func NewMenu(store TaskStore, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		store:   store,
		in:      bufio.NewScanner(in),
		out:     out,
		newTask: model.NewTask,
	}
}

// Run loops until the user exits or input ends. Store errors end the loop.
func (m *Menu) Run() error {
	for {
		fmt.Fprintln(m.out, "\n=== Tasks ===")
		fmt.Fprintln(m.out, "1. Add task")
		fmt.Fprintln(m.out, "2. Remove task")
		fmt.Fprintln(m.out, "3. List tasks")
		fmt.Fprintln(m.out, "4. Exit")

		choice, ok := m.prompt("Choice: ")
		if !ok {
			return m.in.Err()
		}

		switch choice {
		case "1":
			if err := m.add(); err != nil {
				return err
			}
		case "2":
			if err := m.remove(); err != nil {
				return err
			}
		case "3":
			m.list()
		case "4", "q":
			fmt.Fprintln(m.out, "Bye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Please pick 1-4.")
		}
	}
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) add() error {
	name, _ := m.prompt("Name: ")
	desc, _ := m.prompt("Description: ")
	priority, _ := m.prompt("Priority (high/medium/low): ")
	if name == "" || desc == "" {
		fmt.Fprintln(m.out, "Name and description are required.")
		return nil
	}
	if priority == "" {
		priority = model.PriorityMedium
	}
	if err := m.store.Add(m.newTask(name, desc, priority)); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Task added.")
	return nil
}

func (m *Menu) remove() error {
	name, _ := m.prompt("Name of task to remove: ")
	removed, err := m.store.Remove(name)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(m.out, "Task removed.")
	} else {
		fmt.Fprintln(m.out, "Task not found.")
	}
	return nil
}

func (m *Menu) list() {
	PrintTasks(m.out, m.store.List())
}

// PrintTasks renders tasks as a numbered list.
func PrintTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet.")
		return
	}
	fmt.Fprintln(w, "Tasks:")
	for i, t := range tasks {
		fmt.Fprintf(w, "%d. %s\n", i+1, t)
	}
}

// FilterByPriority returns the tasks whose priority matches, in order.
// An empty priority matches everything.
func FilterByPriority(tasks []model.Task, priority string) []model.Task {
	if priority == "" {
		return tasks
	}
	var out []model.Task
	for _, t := range tasks {
		if strings.EqualFold(t.Priority, priority) {
			out = append(out, t)
		}
	}
	return out
}
