// Package prompt wraps promptui behind the interactive questions the
// gatewatch CLIs ask. Every prompt reports Ctrl+C as ErrAborted so
// commands can treat cancellation as a quiet exit instead of a failure.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted reports that the user cancelled a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// ErrPasswordMismatch reports that the two password entries differ.
var ErrPasswordMismatch = errors.New("passwords do not match")

// IsAborted reports whether err came from the user cancelling a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort)
}

// normalize folds promptui's interrupt and abort errors into ErrAborted.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

func run(p promptui.Prompt) (string, error) {
	value, err := p.Run()
	return value, normalize(err)
}

// Input asks for a line of text, offering defaultValue for editing.
func Input(label, defaultValue string) (string, error) {
	return run(promptui.Prompt{Label: label, Default: defaultValue})
}

// InputRequired asks for a line of text and re-prompts until it is
// non-blank.
func InputRequired(label string) (string, error) {
	return run(promptui.Prompt{
		Label: label,
		Validate: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("a value is required")
			}
			return nil
		},
	})
}

// InputOptional asks for a line of text that may be left empty.
func InputOptional(label string) (string, error) {
	return run(promptui.Prompt{Label: label + " (optional)"})
}

// InputWithValidation asks for a line of text and re-prompts until
// validate accepts it.
func InputWithValidation(label string, validate func(string) error) (string, error) {
	return run(promptui.Prompt{Label: label, Validate: validate})
}

// Password asks for a masked secret.
func Password(label string) (string, error) {
	return run(promptui.Prompt{Label: label, Mask: '*'})
}

// PasswordWithValidation asks for a masked secret of at least minLength
// characters.
func PasswordWithValidation(label string, minLength int) (string, error) {
	return run(promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(value string) error {
			if len(value) < minLength {
				return fmt.Errorf("must be at least %d characters", minLength)
			}
			return nil
		},
	})
}

// PasswordWithConfirmation asks for a new secret twice and fails with
// ErrPasswordMismatch when the entries differ.
func PasswordWithConfirmation(label, confirmLabel string, minLength int) (string, error) {
	first, err := PasswordWithValidation(label, minLength)
	if err != nil {
		return "", err
	}
	second, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPasswordMismatch
	}
	return first, nil
}

// Confirm asks a yes/no question. Enter takes the default, y answers
// yes, anything else answers no, and Ctrl+C returns ErrAborted.
func Confirm(label string, defaultYes bool) (bool, error) {
	suffix := "y/N"
	if defaultYes {
		suffix = "Y/n"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, suffix),
		IsConfirm: true,
	}
	value, err := p.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		// promptui answers ErrAbort for everything that is not "y",
		// including a bare Enter, which should take the default.
		return value == "" && defaultYes, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	default:
		return false, err
	}
}

// ConfirmWithForce skips the question when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}
