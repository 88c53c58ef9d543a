package prompt

import (
	"github.com/manifoldco/promptui"
)

// SelectOption is one entry in a Select list. Value is what the caller
// gets back; Description, when set, renders below the list for the
// highlighted entry.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// listSize bounds how many entries show before the list scrolls.
func listSize(n int) int {
	if n < 10 {
		return n
	}
	return 10
}

// Select asks the user to pick one option and returns its Value.
func Select(label string, options []SelectOption) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}
	for _, opt := range options {
		if opt.Description != "" {
			templates.Details = `
{{ "Description:" | faint }} {{ .Description }}`
			break
		}
	}

	sel := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: templates,
		Size:      listSize(len(options)),
	}
	i, _, err := sel.Run()
	if err != nil {
		return "", normalize(err)
	}
	return options[i].Value, nil
}

// SelectString asks the user to pick one of items and returns it
// verbatim.
func SelectString(label string, items []string) (string, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
		Size:  listSize(len(items)),
	}
	_, value, err := sel.Run()
	return value, normalize(err)
}
