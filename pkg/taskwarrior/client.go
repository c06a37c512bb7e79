package taskwarrior

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
)

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// GetTasks runs `task <filter> export` and returns the pending tasks.
func (c *Client) GetTasks(filter []string) ([]Task, error) {
	args := append(filter, "export", "rc.hooks=0")
	cmd := exec.Command("task", args...)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return c.ParseTasks(bytes.NewReader(output))
}

// ParseTasks parses either a JSON array (task export) or a stream of JSON
// objects (hook input), keeping only pending and waiting tasks.
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var all []Task
	decoder := json.NewDecoder(br)
	if first == '[' {
		if err := decoder.Decode(&all); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
	} else {
		for {
			var task Task
			if err := decoder.Decode(&task); err != nil {
				if err == io.EOF {
					break
				}
				return nil, fmt.Errorf("failed to decode task json: %w", err)
			}
			all = append(all, task)
		}
	}

	var tasks []Task
	for _, t := range all {
		if t.Status == PENDING || t.Status == WAITING || t.Status == "" {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			br.ReadByte()
		default:
			return b[0], nil
		}
	}
}
