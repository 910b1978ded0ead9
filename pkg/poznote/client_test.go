package poznote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	userID string
	user   string
	pass   string
	body   map[string]any
}

// newTestBackend starts a backend answering every request with handler and
// records what it received.
func newTestBackend(t *testing.T, handler http.HandlerFunc) (*Client, *[]recorded) {
	t.Helper()

	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			userID: r.Header.Get(UserIDHeader),
		}
		rec.user, rec.pass, _ = r.BasicAuth()

		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)

		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:          srv.URL + "/api/v1/",
		Username:         "admin",
		Password:         "secret",
		DefaultWorkspace: "Poznote",
		DefaultUserID:    "1",
	})

	return c, &calls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestGetNote_AuthWorkspaceAndUser(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"note":{"id":"42","heading":"Hello","content":"<p>Hi</p>","tags":"a, b","folder":null,"folder_id":null}}`)
	})

	note, err := c.GetNote(context.Background(), 42, "", "")
	require.NoError(t, err)
	require.NotNil(t, note)

	assert.Equal(t, FlexInt(42), note.ID)
	assert.Equal(t, "Hello", note.Heading)
	assert.Equal(t, "<p>Hi</p>", note.Body())
	assert.Nil(t, note.Folder)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/v1/notes/42", got.path)
	assert.Equal(t, "workspace=Poznote", got.query)
	assert.Equal(t, "1", got.userID)
	assert.Equal(t, "admin", got.user)
	assert.Equal(t, "secret", got.pass)
}

func TestGetNote_ExplicitOverridesWin(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"note":{"id":1}}`)
	})

	ctx := ContextWithUserID(context.Background(), "7")

	_, err := c.GetNote(ctx, 1, "Work", "")
	require.NoError(t, err)
	_, err = c.GetNote(ctx, 1, "Work", "9")
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, "workspace=Work", (*calls)[0].query)
	assert.Equal(t, "7", (*calls)[0].userID)
	assert.Equal(t, "9", (*calls)[1].userID)
}

func TestWorkspaceOmittedWhenNoDefault(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.RawQuery)
		assert.Empty(t, r.Header.Get(UserIDHeader))
		writeJSON(w, http.StatusOK, `{"success":true,"notes":[]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Username: "u", Password: "p"})

	notes, err := c.ListNotes(context.Background(), ListNotesOptions{})
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.Len(t, calls, 1)
	assert.Equal(t, "", calls[0])
}

func TestNotFoundIsAbsence(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"success":false,"error":"Note not found"}`)
	})
	ctx := context.Background()

	note, err := c.GetNote(ctx, 999, "", "")
	assert.NoError(t, err)
	assert.Nil(t, note)

	title := "x"
	updated, err := c.UpdateNote(ctx, 999, UpdateNoteInput{Title: &title})
	assert.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := c.DeleteNote(ctx, 999, "", "")
	assert.NoError(t, err)
	assert.False(t, deleted)

	share, err := c.GetNoteShare(ctx, 999, "")
	assert.NoError(t, err)
	assert.Nil(t, share)
}

func TestNotFoundOnListIsBackendError(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"success":false,"error":"Workspace not found"}`)
	})

	_, err := c.ListFolders(context.Background(), "Missing", "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestNon2xxIsBackendError(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"success":false,"error":"Database error occurred"}`)
	})

	_, err := c.CreateNote(context.Background(), CreateNoteInput{Title: "t", Content: "c"})
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusInternalServerError, be.StatusCode)
	assert.Contains(t, be.Body, "Database error occurred")
	assert.Equal(t, http.MethodPost, be.Method)
	assert.Equal(t, "/notes", be.Path)

	// no automatic retry
	assert.Len(t, *calls, 1)
}

func TestMalformedBodyIsBackendError(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>oops</html>`)
	})

	_, err := c.ListWorkspaces(context.Background(), "")
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusOK, be.StatusCode)
	assert.Contains(t, be.Error(), "malformed response")
}

func TestSoftFailureNormalisesToEmpty(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"nope"}`)
	})
	ctx := context.Background()

	notes, err := c.SearchNotes(ctx, "q", 10, "", "")
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)

	note, err := c.CreateNote(ctx, CreateNoteInput{Title: "t"})
	require.NoError(t, err)
	assert.Nil(t, note)

	ok, err := c.EmptyTrash(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSoftFailureOnSingleNoteIsAbsence(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":"0","note":{"id":5,"heading":"stale"},"is_favorite":true}`)
	})
	ctx := context.Background()

	note, err := c.GetNote(ctx, 5, "", "")
	require.NoError(t, err)
	assert.Nil(t, note)

	title := "t"
	note, err = c.UpdateNote(ctx, 5, UpdateNoteInput{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, note)

	fav, err := c.ToggleFavorite(ctx, 5, "")
	require.NoError(t, err)
	assert.Nil(t, fav)

	note, err = c.DuplicateNote(ctx, 5, "")
	require.NoError(t, err)
	assert.Nil(t, note)

	assert.Len(t, *calls, 4)
}

func TestFlexIntDecoding(t *testing.T) {
	tests := []struct {
		in      string
		want    FlexInt
		wantErr bool
	}{
		{`7`, 7, false},
		{`7.0`, 7, false},
		{`"7"`, 7, false},
		{`" 12 "`, 12, false},
		{`"010"`, 10, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"0x1F"`, 0, true},
		{`"1_000"`, 0, true},
		{`true`, 0, true},
		{`1.5`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f FlexInt
			err := json.Unmarshal([]byte(tt.in), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestListTags_NoDefaultWorkspace(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"tags":["a","b"]}`)
	})
	ctx := context.Background()

	tags, err := c.ListTags(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	_, err = c.ListTags(ctx, "Work", "")
	require.NoError(t, err)

	require.Len(t, *calls, 2)
	assert.Equal(t, "/api/v1/tags", (*calls)[0].path)
	assert.Empty(t, (*calls)[0].query, "tags span every workspace unless one is named")
	assert.Equal(t, "workspace=Work", (*calls)[1].query)
}

func TestTimeoutIsBackendError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{BaseURL: srv.URL, Username: "u", Password: "p", Timeout: 50 * time.Millisecond})

	_, err := c.ListTags(context.Background(), "", "")
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 0, be.StatusCode)
}

func TestSearchNotes_Query(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"query":"API","count":1,"results":[{"id":3,"heading":"API docs","excerpt":"REST API...","tags":"api"}]}`)
	})

	results, err := c.SearchNotes(context.Background(), "API", 5, "Work", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "REST API...", results[0].Excerpt)

	assert.Equal(t, "/api/v1/notes/search", (*calls)[0].path)
	assert.Equal(t, "limit=5&q=API&workspace=Work", (*calls)[0].query)
}

func TestCreateNote_Payload(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"id":17}`)
	})

	note, err := c.CreateNote(context.Background(), CreateNoteInput{
		Title:      "Plan",
		Content:    "# Plan",
		Tags:       "work,ideas",
		FolderName: "Projects",
		Type:       "markdown",
	})
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, FlexInt(17), note.ID)
	assert.Equal(t, "Plan", note.Heading)

	body := (*calls)[0].body
	assert.Equal(t, "Plan", body["heading"])
	assert.Equal(t, "# Plan", body["content"])
	assert.Equal(t, "work,ideas", body["tags"])
	assert.Equal(t, "Projects", body["folder_name"])
	assert.Equal(t, "markdown", body["type"])
	assert.Equal(t, "Poznote", body["workspace"])
}

func TestUpdateNote_PartialAndNoop(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	ctx := context.Background()

	note, err := c.UpdateNote(ctx, 5, UpdateNoteInput{})
	require.NoError(t, err)
	assert.Nil(t, note)
	assert.Empty(t, *calls)

	content := "new body"
	note, err = c.UpdateNote(ctx, 5, UpdateNoteInput{Content: &content})
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, FlexInt(5), note.ID)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPatch, (*calls)[0].method)
	assert.Equal(t, map[string]any{"content": "new body"}, (*calls)[0].body)
}

func TestCreateFolder_Parent(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"folder":{"id":8,"name":"Sub","parent_id":"3"}}`)
	})

	parent := 3
	folder, err := c.CreateFolder(context.Background(), CreateFolderInput{Name: "Sub", ParentFolderID: &parent})
	require.NoError(t, err)
	require.NotNil(t, folder)
	require.NotNil(t, folder.ParentID)
	assert.Equal(t, FlexInt(3), *folder.ParentID)

	body := (*calls)[0].body
	assert.Equal(t, "Sub", body["folder_name"])
	assert.Equal(t, float64(3), body["parent_folder_id"])
}

func TestShareStatus_FlatAndNested(t *testing.T) {
	replies := []string{
		`{"success":true,"public":true,"url":"/s/abc","hasPassword":false}`,
		`{"success":true,"share":{"public":true,"url":"/s/def"}}`,
		`{"success":true,"public":false}`,
	}
	i := 0
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, replies[i])
		i++
	})
	ctx := context.Background()

	s, err := c.GetNoteShare(ctx, 1, "")
	require.NoError(t, err)
	assert.True(t, bool(s.Public))
	assert.Equal(t, "/s/abc", s.URL)

	s, err = c.CreateNoteShare(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "/s/def", s.URL)

	s, err = c.GetFolderShare(ctx, 2, "")
	require.NoError(t, err)
	assert.False(t, bool(s.Public))
}

func TestToggleFavorite(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"is_favorite":1}`)
	})

	fav, err := c.ToggleFavorite(context.Background(), 4, "")
	require.NoError(t, err)
	require.NotNil(t, fav)
	assert.True(t, *fav)
}

func TestPayloadEndpoints(t *testing.T) {
	c, calls := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"version":"2.1.0"}`)
	})
	ctx := context.Background()

	v, err := c.SystemVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", v["version"])

	_, err = c.GetSetting(ctx, "note_font_size", "")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/settings/note_font_size", (*calls)[1].path)

	_, err = c.GitHubPush(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, (*calls)[2].method)
}

func TestTagStringDecodesArrays(t *testing.T) {
	var n Note
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"tags":["a","b"],"favorite":"1"}`), &n))
	assert.Equal(t, TagString("a,b"), n.Tags)
	assert.True(t, bool(n.Favorite))
}

func TestConfigValidate(t *testing.T) {
	err := Config{BaseURL: "http://x"}.Validate()
	require.Error(t, err)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"POZNOTE_USERNAME", "POZNOTE_PASSWORD"}, ce.Missing)
	assert.Contains(t, ce.Remediation(), "POZNOTE_PASSWORD=")

	assert.NoError(t, Config{BaseURL: "http://x", Username: "u", Password: "p"}.Validate())
}
