package poznote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// FlexInt decodes integers the backend sometimes sends as strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("expected an integer, got %s", string(data))
		}
		*f = FlexInt(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			*f = 0
			return nil
		}
		// base 10 only: "010" is ten, "0x1F" is refused
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("expected an integer, got %s", string(data))
		}
		*f = FlexInt(n)
	default:
		return fmt.Errorf("expected an integer, got %s", string(data))
	}

	return nil
}

// Truthy decodes booleans the backend sends as true/false, 0/1 or "0"/"1".
type Truthy bool

func (t *Truthy) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == nil {
		*t = false
		return nil
	}

	v, err := cast.ToBoolE(raw)
	if err != nil {
		// anything non-empty that is not a recognised boolean counts as set
		*t = Truthy(cast.ToString(raw) != "")
		return nil
	}

	*t = Truthy(v)
	return nil
}

// TagString holds the comma separated tag list of a note. Some endpoints
// return the tags as a JSON array; those are joined with commas.
type TagString string

func (s *TagString) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, cast.ToString(p))
		}
		*s = TagString(strings.Join(parts, ","))
	default:
		*s = TagString(cast.ToString(v))
	}

	return nil
}

type envelope struct {
	Success Truthy `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Note is a note as returned by the backend.
type Note struct {
	ID           FlexInt   `json:"id"`
	Heading      string    `json:"heading"`
	Content      string    `json:"content"`
	Entry        string    `json:"entry"`
	EntryContent string    `json:"entrycontent"`
	Excerpt      string    `json:"excerpt"`
	Type         string    `json:"type"`
	Tags         TagString `json:"tags"`
	Folder       *string   `json:"folder"`
	FolderID     *FlexInt  `json:"folder_id"`
	Workspace    string    `json:"workspace"`
	Favorite     Truthy    `json:"favorite"`
	Created      string    `json:"created"`
	Updated      string    `json:"updated"`
}

// Body returns the note text, preferring the plain content field over the
// legacy entry fields.
func (n *Note) Body() string {
	switch {
	case n.Content != "":
		return n.Content
	case n.EntryContent != "":
		return n.EntryContent
	default:
		return n.Entry
	}
}

// Folder is a folder as returned by the backend. Hierarchical listings nest
// sub folders in Children.
type Folder struct {
	ID        FlexInt  `json:"id"`
	Name      string   `json:"name"`
	ParentID  *FlexInt `json:"parent_id"`
	Workspace string   `json:"workspace,omitempty"`
	Path      string   `json:"path,omitempty"`
	Children  []Folder `json:"children,omitempty"`
}

type Workspace struct {
	Name    string `json:"name"`
	Created string `json:"created,omitempty"`
}

type Attachment struct {
	ID               string  `json:"id"`
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"original_filename"`
	FileSize         FlexInt `json:"file_size"`
	FileType         string  `json:"file_type"`
	UploadedAt       string  `json:"uploaded_at"`
}

// ShareStatus is the public sharing state of a note or folder.
type ShareStatus struct {
	Public       Truthy `json:"public"`
	URL          string `json:"url,omitempty"`
	URLQuery     string `json:"url_query,omitempty"`
	URLWorkspace string `json:"url_workspace,omitempty"`
	Indexable    Truthy `json:"indexable"`
	HasPassword  Truthy `json:"hasPassword"`
	Workspace    string `json:"workspace,omitempty"`
}

type Backup struct {
	Filename    string  `json:"filename"`
	DownloadURL string  `json:"download_url"`
	Size        FlexInt `json:"size"`
	SizeMB      float64 `json:"size_mb"`
	CreatedAt   string  `json:"created_at"`
}

// Payload is an opaque JSON object passed through unchanged, used for
// endpoints whose body has no stable schema (version, settings, sync).
type Payload map[string]any

// ListNotesOptions filters a note listing.
type ListNotesOptions struct {
	Workspace string
	FolderID  int
	Tag       string
	Favorite  bool
	UserID    string
}

// CreateNoteInput describes a note to create.
type CreateNoteInput struct {
	Title      string
	Content    string
	Tags       string
	FolderName string
	Type       string
	Workspace  string
	UserID     string
}

// UpdateNoteInput holds the fields to change on a note. Nil fields are left
// untouched.
type UpdateNoteInput struct {
	Title     *string
	Content   *string
	Tags      *string
	Workspace string
	UserID    string
}

// Empty reports whether the update would change nothing.
func (u UpdateNoteInput) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil
}

// CreateFolderInput describes a folder to create.
type CreateFolderInput struct {
	Name           string
	ParentFolderID *int
	Workspace      string
	UserID         string
}
