package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

const (
	NotesResourceURI   = "poznote://notes"
	NoteResourcePrefix = "poznote://note/"

	jsonMIMEType = "application/json"
)

func (ns *NotesServer) addResources() {
	notesResource := mcp.NewResource(
		NotesResourceURI,
		"Poznote notes",
		mcp.WithResourceDescription("Notes of the default workspace (id, title, tags, folder)"),
		mcp.WithMIMEType(jsonMIMEType),
	)
	ns.McpServer.AddResource(notesResource, ns.ReadNotesResource)

	noteTemplate := mcp.NewResourceTemplate(
		NoteResourcePrefix+"{id}",
		"Poznote note",
		mcp.WithTemplateDescription("A single note with its content"),
		mcp.WithTemplateMIMEType(jsonMIMEType),
	)
	ns.McpServer.AddResourceTemplate(noteTemplate, ns.ReadNoteResource)
}

// ReadNotesResource lists the notes of the default workspace.
func (ns *NotesServer) ReadNotesResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI

	if err := ns.cfg.Validate(); err != nil {
		return resourceError(uri, err), nil
	}

	notes, err := ns.api.ListNotes(ctx, poznote.ListNotesOptions{})
	if err != nil {
		return resourceError(uri, err), nil
	}

	entries := make([]map[string]any, 0, len(notes))
	for _, n := range notes {
		s := toSummary(n)
		entries = append(entries, map[string]any{
			"id":        s.ID,
			"title":     s.Title,
			"tags":      s.Tags,
			"folder":    s.Folder,
			"updatedAt": s.UpdatedAt,
			"uri":       fmt.Sprintf("%s%d", NoteResourcePrefix, s.ID),
		})
	}

	return resourceJSON(uri, map[string]any{
		"count": len(entries),
		"notes": entries,
	}), nil
}

// ReadNoteResource returns one note addressed as poznote://note/{id}.
func (ns *NotesServer) ReadNoteResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI

	raw, ok := strings.CutPrefix(uri, NoteResourcePrefix)
	if !ok {
		return resourceError(uri, fmt.Errorf("unknown resource %s", uri)), nil
	}

	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return resourceError(uri, invalidArgument("note id must be an integer, got %q", raw)), nil
	}

	if err := ns.cfg.Validate(); err != nil {
		return resourceError(uri, err), nil
	}

	note, err := ns.api.GetNote(ctx, id, "", "")
	if err != nil {
		return resourceError(uri, err), nil
	}
	if note == nil {
		return resourceError(uri, notFound("Note %d not found", id)), nil
	}

	return resourceJSON(uri, toNote(*note)), nil
}

func resourceJSON(uri string, v any) []mcp.ResourceContents {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return resourceError(uri, fmt.Errorf("failed to marshal resource: %w", err))
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		},
	}
}

// resourceError reports a failed read as {"error": message} content so the
// client sees the reason instead of a protocol error.
func resourceError(uri string, err error) []mcp.ResourceContents {
	data, _ := json.MarshalIndent(map[string]string{"error": errorMessage(err)}, "", "  ")

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		},
	}
}
