// Package testutils provides common utilities and helpers for testing
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/notes-mcp"
	"github.com/timothepoznanski/poznote-mcp/pkg/poznote"
)

const (
	TestUsername = "admin"
	TestPassword = "secret"
)

// Request is one call received by the fake backend.
type Request struct {
	Method string
	Path   string
	Query  string
	UserID string
}

// FakeBackend is an in-memory Poznote REST API covering the note endpoints.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	notes    map[int]*poznote.Note
	trash    map[int]*poznote.Note
	nextID   int
	requests []Request
}

// NewFakeBackend starts a fake backend holding seed. It is closed when the
// test ends.
func NewFakeBackend(t *testing.T, seed ...poznote.Note) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		notes: map[int]*poznote.Note{},
		trash: map[int]*poznote.Note{},
	}
	for _, n := range seed {
		b.add(n)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /notes", b.listNotes)
	mux.HandleFunc("GET /notes/search", b.searchNotes)
	mux.HandleFunc("GET /notes/{id}", b.getNote)
	mux.HandleFunc("POST /notes", b.createNote)
	mux.HandleFunc("PATCH /notes/{id}", b.updateNote)
	mux.HandleFunc("DELETE /notes/{id}", b.deleteNote)
	mux.HandleFunc("POST /notes/{id}/restore", b.restoreNote)
	mux.HandleFunc("GET /tags", b.listTags)

	b.Server = httptest.NewServer(b.authenticate(mux))
	t.Cleanup(b.Server.Close)

	return b
}

// Config returns a client configuration pointing at the fake backend.
func (b *FakeBackend) Config() poznote.Config {
	return poznote.Config{
		BaseURL:          b.Server.URL,
		Username:         TestUsername,
		Password:         TestPassword,
		DefaultWorkspace: poznote.DefaultWorkspace,
		DefaultUserID:    poznote.DefaultUserID,
	}
}

// Requests returns the calls received so far.
func (b *FakeBackend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// Note returns a copy of a live note, or nil.
func (b *FakeBackend) Note(id int) *poznote.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.notes[id]
	if !ok {
		return nil
	}
	cp := *n
	return &cp
}

func (b *FakeBackend) add(n poznote.Note) int {
	b.nextID++
	if n.ID == 0 {
		n.ID = poznote.FlexInt(b.nextID)
	} else if int(n.ID) > b.nextID {
		b.nextID = int(n.ID)
	}
	if n.Workspace == "" {
		n.Workspace = poznote.DefaultWorkspace
	}
	if n.Type == "" {
		n.Type = "note"
	}
	b.notes[int(n.ID)] = &n
	return int(n.ID)
}

func (b *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			UserID: r.Header.Get(poznote.UserIDHeader),
		})
		b.mu.Unlock()

		user, pass, ok := r.BasicAuth()
		if !ok || user != TestUsername || pass != TestPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Note not found"})
}

func (b *FakeBackend) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid note id"})
		return 0, false
	}
	return id, true
}

func (b *FakeBackend) sorted(workspace string) []poznote.Note {
	ids := make([]int, 0, len(b.notes))
	for id, n := range b.notes {
		if workspace == "" || n.Workspace == workspace {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]poznote.Note, 0, len(ids))
	for _, id := range ids {
		out = append(out, *b.notes[id])
	}
	return out
}

func (b *FakeBackend) listNotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tag := r.URL.Query().Get("tag")
	out := []poznote.Note{}
	for _, n := range b.sorted(r.URL.Query().Get("workspace")) {
		if tag != "" && !slices.Contains(strings.Split(string(n.Tags), ","), tag) {
			continue
		}
		out = append(out, n)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notes": out})
}

// searchNotes matches the query against heading and content and, like the
// real backend, honours limit.
func (b *FakeBackend) searchNotes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := strings.ToLower(r.URL.Query().Get("q"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	results := []poznote.Note{}
	for _, n := range b.sorted(r.URL.Query().Get("workspace")) {
		if strings.Contains(strings.ToLower(n.Heading), q) || strings.Contains(strings.ToLower(n.Content), q) {
			results = append(results, n)
		}
		if len(results) == limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}

func (b *FakeBackend) getNote(w http.ResponseWriter, r *http.Request) {
	id, ok := b.pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, exists := b.notes[id]
	if !exists {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": n})
}

func (b *FakeBackend) createNote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Heading   string `json:"heading"`
		Content   string `json:"content"`
		Tags      string `json:"tags"`
		Workspace string `json:"workspace"`
		Folder    string `json:"folder_name"`
		Type      string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := poznote.Note{Heading: in.Heading, Content: in.Content, Tags: poznote.TagString(in.Tags), Workspace: in.Workspace, Type: in.Type}
	if in.Folder != "" {
		n.Folder = &in.Folder
	}
	id := b.add(n)

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id, "note": b.notes[id]})
}

func (b *FakeBackend) updateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := b.pathID(w, r)
	if !ok {
		return
	}

	var in map[string]string
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, exists := b.notes[id]
	if !exists {
		notFound(w)
		return
	}
	if v, ok := in["heading"]; ok {
		n.Heading = v
	}
	if v, ok := in["content"]; ok {
		n.Content = v
	}
	if v, ok := in["tags"]; ok {
		n.Tags = poznote.TagString(v)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": n})
}

func (b *FakeBackend) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := b.pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, exists := b.notes[id]
	if !exists {
		notFound(w)
		return
	}
	delete(b.notes, id)
	b.trash[id] = n

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Note moved to trash"})
}

func (b *FakeBackend) restoreNote(w http.ResponseWriter, r *http.Request) {
	id, ok := b.pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, exists := b.trash[id]
	if !exists {
		notFound(w)
		return
	}
	delete(b.trash, id)
	b.notes[id] = n

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *FakeBackend) listTags(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := map[string]bool{}
	tags := []string{}
	for _, n := range b.sorted(r.URL.Query().Get("workspace")) {
		for _, tag := range strings.Split(string(n.Tags), ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	slices.Sort(tags)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tags": tags})
}

// APINotes returns count notes mentioning "API" followed by two that do not.
func APINotes(count int) []poznote.Note {
	notes := make([]poznote.Note, 0, count+2)
	for i := 1; i <= count; i++ {
		notes = append(notes, poznote.Note{
			Heading: fmt.Sprintf("API note %d", i),
			Content: fmt.Sprintf("<p>Notes about the REST API, part %d. %s</p>", i, strings.Repeat("Details. ", 40)),
			Tags:    "api,docs",
		})
	}
	notes = append(notes,
		poznote.Note{Heading: "Groceries", Content: "milk, eggs", Tags: "home"},
		poznote.Note{Heading: "Standup", Content: "yesterday, today, blockers", Tags: "work"},
	)
	return notes
}

// SetupNotesServer creates a notes server talking to backend.
func SetupNotesServer(t *testing.T, backend *FakeBackend) *notes.NotesServer {
	t.Helper()

	cfg := backend.Config()
	return notes.NewNotesServer(poznote.NewClient(cfg), cfg)
}

// StartClient connects an initialized in-process MCP client to ns.
func StartClient(t *testing.T, ns *notes.NotesServer) *client.Client {
	t.Helper()

	ctx := context.Background()

	c, err := client.NewInProcessClient(ns.McpServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Failed to start client: %v", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "integration-test", Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initRequest); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	return c
}

// CallTool calls name with args and returns the result.
func CallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := c.CallTool(context.Background(), req)
	if err != nil {
		t.Fatalf("%s failed at the protocol level: %v", name, err)
	}
	return result
}

// DecodeResult parses the JSON envelope of a tool result.
func DecodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("Result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(text.Text), &body); err != nil {
		t.Fatalf("Result should contain valid JSON: %v\n%s", err, text.Text)
	}
	return body
}

// AssertResourceStructure verifies that a resource has the expected structure
func AssertResourceStructure(t *testing.T, resource mcp.ResourceContents, expectedFields []string) {
	t.Helper()

	textResource, ok := resource.(mcp.TextResourceContents)
	if !ok {
		t.Fatal("Resource should be TextResourceContents")
	}

	AssertJSONStructure(t, textResource.Text, expectedFields)
}

// AssertJSONStructure verifies that JSON content has expected structure
func AssertJSONStructure(t *testing.T, jsonContent string, expectedFields []string) {
	t.Helper()

	var data any
	if err := json.Unmarshal([]byte(jsonContent), &data); err != nil {
		t.Fatalf("Content should be valid JSON: %v", err)
	}

	// Handle both objects and arrays
	switch v := data.(type) {
	case map[string]any:
		for _, field := range expectedFields {
			if _, exists := v[field]; !exists {
				t.Errorf("JSON should contain field '%s'", field)
			}
		}
	case []any:
		if len(v) == 0 {
			t.Error("JSON array should not be empty")
			return
		}

		if firstItem, ok := v[0].(map[string]any); ok {
			for _, field := range expectedFields {
				if _, exists := firstItem[field]; !exists {
					t.Errorf("JSON array items should contain field '%s'", field)
				}
			}
		}
	default:
		t.Errorf("Unexpected JSON structure type: %T", data)
	}
}

// AssertMCPResult verifies that an MCP result is successful
func AssertMCPResult(t *testing.T, result *mcp.CallToolResult, operation string) {
	t.Helper()

	if result == nil {
		t.Fatalf("%s should return a result", operation)
	}

	if result.IsError {
		t.Fatalf("%s should not return error: %v", operation, result.Content[0])
	}

	if len(result.Content) == 0 {
		t.Fatalf("%s should return content", operation)
	}
}

// AssertMCPError verifies that an MCP result is an error and returns its
// message.
func AssertMCPError(t *testing.T, result *mcp.CallToolResult, operation string) string {
	t.Helper()

	if result == nil {
		t.Fatalf("%s should return a result", operation)
	}

	if !result.IsError {
		t.Fatalf("%s should return error but got success", operation)
	}

	msg, _ := DecodeResult(t, result)["error"].(string)
	return msg
}
