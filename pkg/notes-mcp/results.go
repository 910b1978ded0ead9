package notes

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/dto"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
	"github.com/timothepoznanski/poznote-mcp/pkg/utils"
)

// fields is the payload of a success envelope.
type fields map[string]any

// successResult returns {"success": true, ...payload}.
func successResult(payload fields) (*mcp.CallToolResult, error) {
	body := fields{"success": true}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(data)),
		},
	}, nil
}

// errorResult returns {"error": message} flagged as a tool error.
func errorResult(err error) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(map[string]string{"error": errorMessage(err)}, "", "  ")

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.NewTextContent(string(data)),
		},
	}
}

func errorMessage(err error) string {
	var (
		cfgErr     *poznote.ConfigurationError
		backendErr *poznote.BackendError
	)

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "Invalid argument: " + trimSentinel(err, ErrInvalidArgument)
	case errors.Is(err, ErrNotFound):
		return trimSentinel(err, ErrNotFound)
	case errors.As(err, &cfgErr):
		return "Configuration error: " + cfgErr.Remediation()
	case errors.As(err, &backendErr):
		return "Backend request failed: " + backendErr.Error()
	default:
		return err.Error()
	}
}

// trimSentinel drops the "<sentinel>: " prefix added by invalidArgument and
// notFound.
func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func toIntPtr(v *poznote.FlexInt) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func toSummary(n poznote.Note) dto.NoteSummary {
	return dto.NoteSummary{
		ID:        int(n.ID),
		Title:     titleOf(n),
		Type:      n.Type,
		Tags:      utils.SplitTags(string(n.Tags)),
		Folder:    n.Folder,
		FolderID:  toIntPtr(n.FolderID),
		Workspace: n.Workspace,
		Favorite:  bool(n.Favorite),
		UpdatedAt: n.Updated,
	}
}

func toNote(n poznote.Note) dto.Note {
	return dto.Note{
		ID:        int(n.ID),
		Title:     titleOf(n),
		Content:   n.Body(),
		Type:      n.Type,
		Tags:      utils.SplitTags(string(n.Tags)),
		Folder:    n.Folder,
		FolderID:  toIntPtr(n.FolderID),
		Workspace: n.Workspace,
		Favorite:  bool(n.Favorite),
		UpdatedAt: n.Updated,
		CreatedAt: n.Created,
	}
}

func toSearchResult(n poznote.Note) dto.SearchResult {
	excerpt := n.Excerpt
	if excerpt == "" {
		excerpt = n.Body()
	}
	excerpt = utils.Excerpt(excerpt)

	return dto.SearchResult{
		ID:      int(n.ID),
		Title:   titleOf(n),
		Excerpt: excerpt,
		Tags:    utils.SplitTags(string(n.Tags)),
		Folder:  n.Folder,
	}
}

func toFolder(f poznote.Folder) dto.Folder {
	out := dto.Folder{
		ID:       int(f.ID),
		Name:     f.Name,
		ParentID: toIntPtr(f.ParentID),
		Path:     f.Path,
	}

	for _, child := range f.Children {
		out.Children = append(out.Children, toFolder(child))
	}

	return out
}

func toShare(s poznote.ShareStatus) dto.Share {
	return dto.Share{
		Public:      bool(s.Public),
		URL:         s.URL,
		HasPassword: bool(s.HasPassword),
		Indexable:   bool(s.Indexable),
	}
}

func titleOf(n poznote.Note) string {
	if n.Heading == "" {
		return "Untitled"
	}
	return n.Heading
}
