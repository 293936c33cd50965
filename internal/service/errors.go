package service

import (
	"errors"
	"fmt"
	"strings"
)

// Routing errors. Not-found errors wrap these with the requested name.
var (
	ErrUnknownTool     = errors.New("Unknown tool")
	ErrUnknownResource = errors.New("Unknown resource")
	ErrUnknownPrompt   = errors.New("Unknown prompt")
)

// UnknownTool returns the not-found error for a tool name.
func UnknownTool(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// UnknownResource returns the not-found error for a resource URI.
func UnknownResource(uri string) error {
	return fmt.Errorf("%w: %s", ErrUnknownResource, uri)
}

// UnknownPrompt returns the not-found error for a prompt name.
func UnknownPrompt(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
}

// IsUnknown reports whether err is any of the routing not-found errors.
func IsUnknown(err error) bool {
	return errors.Is(err, ErrUnknownTool) ||
		errors.Is(err, ErrUnknownResource) ||
		errors.Is(err, ErrUnknownPrompt)
}

// MissingParamsError is returned when required arguments are absent.
type MissingParamsError struct {
	Params []string
}

func (e *MissingParamsError) Error() string {
	return "Missing required parameters: " + strings.Join(e.Params, ", ")
}

// ValidateRequired checks that each key is present and non-empty in args.
func ValidateRequired(args Args, keys ...string) error {
	var missing []string
	for _, k := range keys {
		v, ok := args[k]
		if !ok || v == nil {
			missing = append(missing, k)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingParamsError{Params: missing}
	}
	return nil
}
