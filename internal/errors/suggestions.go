package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error.
type ErrorSuggestion struct {
	Title       string
	Description string
	Example     string
}

// SuggestionContext lists the names that were available when an error
// occurred.
type SuggestionContext struct {
	Methods    []string
	Templates  []string
	Directives []string
	Prefix     string
	ConfigPath string
}

// Suggest generates suggestions for err based on its code.
func Suggest(err error, ctx *SuggestionContext) []ErrorSuggestion {
	var te *Error
	if !errors.As(err, &te) {
		return nil
	}
	if ctx == nil {
		ctx = &SuggestionContext{}
	}

	switch te.Code {
	case CodeUnknownMethod, CodeUnknownFilter:
		name, _ := te.Context["method"].(string)
		if te.Code == CodeUnknownFilter {
			name, _ = te.Context["filter"].(string)
		}
		suggestions := []ErrorSuggestion{{
			Title:       "Register the method",
			Description: "Directives only call methods passed to the binder",
			Example:     fmt.Sprintf("directive.Methods{%q: func(e *node.Event) { ... }}", name),
		}}
		return append(suggestions, similar(name, ctx.Methods)...)

	case CodeUnknownTemplate:
		id, _ := te.Context["id"].(string)
		suggestions := []ErrorSuggestion{{
			Title:       "Add the template element",
			Description: "Templates are looked up by id anywhere in the document",
			Example:     fmt.Sprintf(`<script id=%q type="text/template">...</script>`, id),
		}}
		return append(suggestions, similar(id, ctx.Templates)...)

	case CodeInvalidDirectiveValue:
		usage, _ := te.Context["usage"].(string)
		return []ErrorSuggestion{{
			Title:       "Check the directive value",
			Description: "The attribute value does not have the expected shape",
			Example:     usage,
		}}

	case CodeDuplicateDirective, CodeMalformedDirective:
		suggestions := []ErrorSuggestion{{
			Title:       "Pick another directive name",
			Description: "Names are lowercase and registered once per registry",
		}}
		if len(ctx.Directives) > 0 {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Registered directives",
				Description: strings.Join(ctx.Directives, ", "),
			})
		}
		return suggestions

	case CodeInvalidConfig:
		return []ErrorSuggestion{{
			Title:       "Check the configuration file",
			Description: "Verify the values in " + orDefault(ctx.ConfigPath, ".tether.yml"),
			Example:     "view:\n  file: index.html\n  root: app",
		}}
	}

	return nil
}

func similar(name string, candidates []string) []ErrorSuggestion {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if strings.Contains(lc, lower) || strings.Contains(lower, lc) {
			return []ErrorSuggestion{{
				Title:       "Did you mean '" + c + "'?",
				Description: "A similar name is available",
			}}
		}
	}
	if len(candidates) > 0 {
		return []ErrorSuggestion{{
			Title:       "Available names",
			Description: strings.Join(candidates, ", "),
		}}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// FormatSuggestions formats suggestions into a user-friendly string.
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		fmt.Fprintf(&output, "  %d. %s\n", i+1, suggestion.Title)
		if suggestion.Description != "" {
			fmt.Fprintf(&output, "     %s\n", suggestion.Description)
		}
		if suggestion.Example != "" {
			fmt.Fprintf(&output, "     Example: %s\n", suggestion.Example)
		}
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions.
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface.
func (e *EnhancedError) Error() string {
	return FormatSuggestions(e.Title, e.Suggestions)
}

// Unwrap returns the original error.
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// Enhance attaches suggestions to err. Errors without suggestions are
// returned unchanged.
func Enhance(err error, ctx *SuggestionContext) error {
	suggestions := Suggest(err, ctx)
	if len(suggestions) == 0 {
		return err
	}
	return &EnhancedError{
		OriginalError: err,
		Title:         err.Error(),
		Suggestions:   suggestions,
	}
}
