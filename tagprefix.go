package veffgo

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// TagPrefixRoot is the leading component of every TagPrefix.
const TagPrefixRoot = "KV"

// docPrefixRunes is the number of documentation characters used when a model
// has no name.
const docPrefixRunes = 15

// ModelDescriptor identifies the model whose predictions a writer persists.
type ModelDescriptor struct {
	// Source is the namespace the model was loaded from (e.g. "kipoi", "dir").
	Source string
	// Name is the model's short name. It may be empty.
	Name string
	// Doc is the model's documentation string, used when Name is empty.
	Doc string
}

// TagPrefix namespaces every annotation field emitted by one writer so that
// several models can annotate the same artifact without collisions.
type TagPrefix string

// Field returns the annotation field identifier for a prediction method.
func (p TagPrefix) Field(method string) string {
	return string(p) + ":" + strings.ToUpper(method)
}

// LineIDField returns the field carrying the dataloader's line identifier.
func (p TagPrefix) LineIDField() string {
	return string(p) + ":rID"
}

func (p TagPrefix) String() string { return string(p) }

// DeriveTagPrefix builds the tag prefix for m. The model name, stripped of
// trailing slashes, is preferred; without a name the first 15 characters of
// the documentation are used. A descriptor with neither is rejected.
func DeriveTagPrefix(m ModelDescriptor) (TagPrefix, error) {
	return DeriveTagPrefixWithLogger(context.Background(), m, nil)
}

// DeriveTagPrefixWithLogger is DeriveTagPrefix with a warning emitted on
// logger when the model name yields an uninformative prefix.
func DeriveTagPrefixWithLogger(ctx context.Context, m ModelDescriptor, logger *Logger) (TagPrefix, error) {
	name := strings.TrimRight(m.Name, "/")
	if name == "" {
		doc := strings.TrimSpace(m.Doc)
		if doc == "" {
			return "", fmt.Errorf("%w: source %q has neither name nor documentation", ErrInvalidModel, m.Source)
		}
		name = firstRunes(m.Doc, docPrefixRunes)
	} else if isRelativeDir(m.Name) && logger != nil {
		logger.WarnContext(ctx, "model name is a relative directory; the annotation tag will not be informative, consider running from a higher directory level",
			"model_name", m.Name,
		)
	}

	label := SanitizeTag(m.Source + ":" + name)
	if label == "" {
		return TagPrefixRoot, nil
	}
	return TagPrefix(TagPrefixRoot + ":" + label), nil
}

func isRelativeDir(name string) bool {
	switch name {
	case ".", "./", "../":
		return true
	}
	return false
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// SanitizeTag replaces every run of characters outside [A-Za-z0-9_.:/] with a
// single underscore and trims leading and trailing underscores.
func SanitizeTag(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isTagRune(r) {
			sb.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			sb.WriteByte('_')
			inRun = true
		}
	}
	return strings.Trim(sb.String(), "_")
}

func isTagRune(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == ':', r == '/':
		return true
	}
	return false
}
