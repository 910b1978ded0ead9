package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
)

var (
	// ErrInvalidArgument marks caller input that failed validation. Calls
	// failing with it never reach the backend.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a resource the backend does not know.
	ErrNotFound = errors.New("not found")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Int is an integer tool argument. Numeric strings such as "42" are
// accepted; anything else is reported when the value is read.
type Int struct {
	raw any
	set bool
}

// IntOf returns an Int holding v.
func IntOf(v int) Int {
	return Int{raw: v, set: true}
}

func (i *Int) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.raw = raw
	switch v := raw.(type) {
	case nil:
		i.set = false
	case string:
		i.set = strings.TrimSpace(v) != ""
	default:
		// arrays, objects and booleans count as supplied so Value reports the type
		i.set = true
	}
	return nil
}

func (i Int) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.raw)
}

// IsSet reports whether the argument was supplied with a non empty value.
func (i Int) IsSet() bool {
	return i.set
}

// Value returns the argument as an int, naming the argument on failure.
func (i Int) Value(name string) (int, error) {
	if !i.set {
		return 0, invalidArgument("%s is required", name)
	}

	v, ok := parseInt(i.raw)
	if !ok {
		return 0, invalidArgument("%s must be an integer, got %v", name, i.raw)
	}

	return v, nil
}

// parseInt accepts whole JSON numbers and canonical base 10 strings. Octal
// or hex prefixes, digit separators, leading zeros and booleans are refused
// so an id is never silently rewritten into another one.
func parseInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int(v), true
	case string:
		s := strings.TrimSpace(v)
		n, err := strconv.Atoi(s)
		if err != nil || strconv.Itoa(n) != s {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Text is a string tool argument that also accepts numbers, which is how
// some clients send user ids.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Errorf("expected a string, got %s", string(data))
	}

	*t = Text(strings.TrimSpace(s))
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Flag is a boolean tool argument that also accepts "true"/"false" and 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == nil {
		*f = false
		return nil
	}

	v, err := cast.ToBoolE(raw)
	if err != nil {
		return fmt.Errorf("expected a boolean, got %s", string(data))
	}

	*f = Flag(v)
	return nil
}

// requireString returns the trimmed value or an invalid argument error
// naming the argument when it is empty.
func requireString(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidArgument("%s is required", name)
	}
	return value, nil
}

// validator is implemented by tool requests that check their own arguments
// before the backend is contacted.
type validator interface {
	Validate() error
}

// TypedToolHandlerFunc is a tool handler receiving its arguments bound to T.
type TypedToolHandlerFunc[T any] func(ctx context.Context, req mcp.CallToolRequest, params T) (*mcp.CallToolResult, error)

// typedHandler binds the call arguments to T, validates them, checks the
// backend configuration and runs fn. Every failure, including a panic in fn,
// is turned into an error result so one bad call never breaks the session.
func typedHandler[T any](ns *NotesServer, fn TypedToolHandlerFunc[T]) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("tool handler panicked", "tool", req.Params.Name, "panic", r)
				result, err = errorResult(fmt.Errorf("internal error while running %s: %v", req.Params.Name, r)), nil
			}
		}()

		var params T
		if err := req.BindArguments(&params); err != nil {
			return errorResult(invalidArgument("%v", err)), nil
		}

		if v, ok := any(&params).(validator); ok {
			if err := v.Validate(); err != nil {
				return errorResult(err), nil
			}
		}

		if err := ns.cfg.Validate(); err != nil {
			return errorResult(err), nil
		}

		result, err = fn(ctx, req, params)
		if err != nil {
			return errorResult(err), nil
		}

		return result, nil
	}
}

// Tags is a tag list argument given either as a comma separated string or as
// an array of strings. It is held in the comma separated form the backend
// stores.
type Tags string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*t = ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			s, err := cast.ToStringE(p)
			if err != nil {
				return fmt.Errorf("expected tag strings, got %s", string(data))
			}
			parts = append(parts, strings.TrimSpace(s))
		}
		*t = Tags(strings.Join(parts, ","))
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Errorf("expected a comma separated string, got %s", string(data))
		}
		*t = Tags(s)
	}

	return nil
}
