package main

import (
	"errors"

	"actionTracker/internal/workflow"

	"github.com/charmbracelet/huh"
)

var errAborted = huh.ErrUserAborted

// ask shows the confirmation as a yes/no prompt.
func ask(c workflow.Confirmation) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(c.Title).
		Description(c.Message).
		Affirmative(c.ConfirmLabel).
		Negative(c.CancelLabel).
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, errAborted
		}
		return false, err
	}
	return ok, nil
}
