package dto

// NoteSummary is a note as listed to the assistant, without its content.
type NoteSummary struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Type      string   `json:"type,omitempty"`
	Tags      []string `json:"tags"`
	Folder    *string  `json:"folder"`
	FolderID  *int     `json:"folder_id,omitempty"`
	Workspace string   `json:"workspace,omitempty"`
	Favorite  bool     `json:"favorite,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// Note is a single note including its content.
type Note struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Type      string   `json:"type,omitempty"`
	Tags      []string `json:"tags"`
	Folder    *string  `json:"folder"`
	FolderID  *int     `json:"folder_id,omitempty"`
	Workspace string   `json:"workspace,omitempty"`
	Favorite  bool     `json:"favorite,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// SearchResult represents a search result
type SearchResult struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Tags    []string `json:"tags"`
	Folder  *string  `json:"folder"`
}

type Folder struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	ParentID *int     `json:"parent_id"`
	Path     string   `json:"path,omitempty"`
	Children []Folder `json:"children,omitempty"`
}

type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Type     string `json:"type,omitempty"`
	Uploaded string `json:"uploadedAt,omitempty"`
}

// Share is the public sharing state of a note or folder.
type Share struct {
	Public      bool   `json:"public"`
	URL         string `json:"url,omitempty"`
	HasPassword bool   `json:"hasPassword"`
	Indexable   bool   `json:"indexable"`
}
