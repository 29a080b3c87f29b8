package tree

// NodeKind categorizes the different kinds of nodes in the markdown tree.
type NodeKind string

const (
	KindFile   NodeKind = "file"
	KindFolder NodeKind = "folder" // A one-level grouping of files sharing a GroupKey
)

// Node is a single entry in the markdown tree: either a *FileEntry or a *FolderEntry.
type Node interface {
	Kind() NodeKind
	// NodePath is the absolute path the node stands for.
	NodePath() string
}

// FileEntry is a discovered markdown file annotated with its sidecar comment count.
// Entries are built per discovery pass and never mutated afterwards.
type FileEntry struct {
	Path         string `json:"path" yaml:"path"`
	Name         string `json:"name" yaml:"name"`
	CommentCount int    `json:"comment_count" yaml:"comment_count"`
}

func (f *FileEntry) Kind() NodeKind   { return KindFile }
func (f *FileEntry) NodePath() string { return f.Path }

// FolderEntry owns the sorted files of one non-root GroupKey.
type FolderEntry struct {
	Key      string       `json:"key" yaml:"key"`
	Path     string       `json:"path" yaml:"path"`
	Children []*FileEntry `json:"children" yaml:"children"`
}

func (f *FolderEntry) Kind() NodeKind   { return KindFolder }
func (f *FolderEntry) NodePath() string { return f.Path }

// Files flattens nodes into the file entries they contain, in display order.
func Files(nodes []Node) []*FileEntry {
	var out []*FileEntry
	for _, n := range nodes {
		switch v := n.(type) {
		case *FileEntry:
			out = append(out, v)
		case *FolderEntry:
			out = append(out, v.Children...)
		}
	}
	return out
}
