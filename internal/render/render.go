// Package render prints display items to a terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/ddddddO/gtree"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/mdreview/pkg/provider"
)

var (
	folderStyle      = lipgloss.NewStyle().Bold(true)
	descriptionStyle = lipgloss.NewStyle().Faint(true)
)

// Tree writes items as an indented tree under a root labelled title.
func Tree(w io.Writer, title string, items []provider.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No markdown files found")
		return err
	}

	root := gtree.NewRoot(title)
	for _, item := range items {
		node := root.Add(label(item))
		for _, child := range item.Children {
			node.Add(label(child))
		}
	}
	return gtree.OutputProgrammably(w, root)
}

func label(item provider.Item) string {
	if item.ContextValue == provider.ContextFolder {
		return folderStyle.Render(item.Label + "/")
	}
	if item.Description == "" {
		return item.Label
	}
	return item.Label + " " + descriptionStyle.Render("("+item.Description+")")
}

// JSON writes items as indented JSON.
func JSON(w io.Writer, items []provider.Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

// YAML writes items as a YAML sequence.
func YAML(w io.Writer, items []provider.Item) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(items); err != nil {
		return err
	}
	return encoder.Close()
}
