package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/zeebo/errs"
)

var errAborted = errors.New("aborted")

func promptConfirm(label string) error {
	_, err := (&promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}).Run()
	if err != nil {
		return errAborted
	}
	return nil
}

// promptSelect lets the user pick one of items. Interrupting the prompt
// returns errAborted.
func promptSelect(label string, items []string) (int, error) {
	i, _, err := (&promptui.Select{
		Label:        label,
		Items:        items,
		Size:         12,
		HideSelected: true,
	}).Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return -1, errAborted
	case err != nil:
		return -1, errs.Wrap(err)
	}
	return i, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.Wrap(err)
		}
	}
	return errs.Wrap(os.WriteFile(path, data, 0644))
}
