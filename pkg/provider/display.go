package provider

import (
	"fmt"

	"github.com/grovetools/mdreview/pkg/tree"
)

// DefaultOpenCommand opens the review preview of a markdown file.
const DefaultOpenCommand = "markdownReview.openPreview"

// Collapsible mirrors the host's tree item collapsible state.
type Collapsible string

const (
	CollapsibleNone     Collapsible = "none"
	CollapsibleExpanded Collapsible = "expanded"
)

const (
	IconMarkdown = "markdown"
	IconFolder   = "folder"

	ContextMarkdownFile = "markdownFile"
	ContextFolder       = "folder"
)

// Command is the action a host runs when an item is activated.
type Command struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Arguments []string `json:"arguments" yaml:"arguments"`
}

// Item is the display form of a tree node handed to a host view.
type Item struct {
	Label        string      `json:"label" yaml:"label"`
	ResourcePath string      `json:"resource_path" yaml:"resource_path"`
	Tooltip      string      `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Description  string      `json:"description,omitempty" yaml:"description,omitempty"`
	Icon         string      `json:"icon" yaml:"icon"`
	ContextValue string      `json:"context_value" yaml:"context_value"`
	Collapsible  Collapsible `json:"collapsible" yaml:"collapsible"`
	Command      *Command    `json:"command,omitempty" yaml:"command,omitempty"`
	Children     []Item      `json:"children,omitempty" yaml:"children,omitempty"`
}

// Display maps a node to its display item. Folder items include their
// children.
func (p *Provider) Display(n tree.Node) Item {
	return DisplayNode(n, p.cfg.OpenCommand)
}

// DisplayNode maps a node to its display item using openCommand for files.
func DisplayNode(n tree.Node, openCommand string) Item {
	switch v := n.(type) {
	case *tree.FileEntry:
		return Item{
			Label:        v.Name,
			ResourcePath: v.Path,
			Tooltip:      v.Path,
			Description:  CommentDescription(v.CommentCount),
			Icon:         IconMarkdown,
			ContextValue: ContextMarkdownFile,
			Collapsible:  CollapsibleNone,
			Command: &Command{
				ID:        openCommand,
				Title:     "Open Preview",
				Arguments: []string{v.Path},
			},
		}
	case *tree.FolderEntry:
		children := make([]Item, 0, len(v.Children))
		for _, c := range v.Children {
			children = append(children, DisplayNode(c, openCommand))
		}
		return Item{
			Label:        v.Key,
			ResourcePath: v.Path,
			Icon:         IconFolder,
			ContextValue: ContextFolder,
			Collapsible:  CollapsibleExpanded,
			Children:     children,
		}
	default:
		return Item{}
	}
}

// DisplayAll maps every node in order.
func DisplayAll(nodes []tree.Node, openCommand string) []Item {
	items := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, DisplayNode(n, openCommand))
	}
	return items
}

// CommentDescription renders a comment count, or "" when there are none.
func CommentDescription(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "1 comment"
	default:
		return fmt.Sprintf("%d comments", count)
	}
}
