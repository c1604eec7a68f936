package content

import "strings"

// Type is the portal type of a resource in the content tree.
type Type string

const (
	TypeContainer Type = "Container"
	TypeFolder    Type = "Folder"
)

// Item references a child of a Node.
type Item struct {
	ID  string
	URL string
}

// Node is a single resource as returned by a read. It is never cached
// beyond the traversal step that read it.
type Node struct {
	ID     string
	Type   Type
	Title  string
	Length int
	Items  []Item
}

// CreatePayload is the body of a create request.
type CreatePayload struct {
	ID    string `json:"id,omitempty"`
	Type  Type   `json:"@type"`
	Title string `json:"title"`
}

// UpdatePayload is the body of a partial update request.
type UpdatePayload struct {
	Title string `json:"title"`
}

// NewFolder returns the payload used for every folder a scenario creates.
func NewFolder() CreatePayload {
	return CreatePayload{Type: TypeFolder, Title: "Folder"}
}

// NewContainer returns the payload that initializes the test container.
func NewContainer(id string) CreatePayload {
	return CreatePayload{ID: id, Type: TypeContainer, Title: "Container"}
}

// TitleUpdate returns the payload used by the update scenarios.
func TitleUpdate() UpdatePayload {
	return UpdatePayload{Title: "Folder updated"}
}

// ChildURL joins a parent URL and a child id.
func ChildURL(parent, id string) string {
	return strings.TrimRight(parent, "/") + "/" + strings.TrimLeft(id, "/")
}
