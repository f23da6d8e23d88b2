// Package editor opens a freshly written draft in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-shellwords"
)

// fallbackEditors are tried in order when $EDITOR is unset.
var fallbackEditors = []string{"code", "subl", "vim", "nano"}

// ErrNoEditor is returned when neither $EDITOR nor a known fallback is
// available.
var ErrNoEditor = errors.New("no editor found")

// Open runs the user's editor on path and waits for it to exit.
// $EDITOR may carry arguments, ex: "code --wait" or "bbedit -w".
func Open(path string) error {
	args, err := command()
	if err != nil {
		return err
	}

	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", args[0], err)
	}

	return nil
}

func command() ([]string, error) {
	if editor := os.Getenv("EDITOR"); editor != "" {
		args, err := shellwords.Parse(editor)
		if err != nil {
			return nil, fmt.Errorf("cannot parse EDITOR %q: %w", editor, err)
		}

		if len(args) == 0 {
			return nil, fmt.Errorf("%w: EDITOR is blank", ErrNoEditor)
		}

		return args, nil
	}

	for _, candidate := range fallbackEditors {
		if _, err := exec.LookPath(candidate); err == nil {
			return []string{candidate}, nil
		}
	}

	return nil, ErrNoEditor
}
