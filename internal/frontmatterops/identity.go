package frontmatterops

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// EnsureUID makes sure fields carries a uid, generating one only when the
// key is missing entirely.
func EnsureUID(fields map[string]any) (uid string, changed bool, err error) {
	if fields == nil {
		return "", false, errors.New("fields map is nil")
	}

	if v, ok := fields[UIDField]; ok {
		return strings.TrimSpace(fmt.Sprint(v)), false, nil
	}

	uid = uuid.NewString()
	fields[UIDField] = uid
	return uid, true, nil
}

// UIDAlias is the permalink served for a document regardless of where it
// moves in the catalog.
func UIDAlias(uid string) string {
	return "/_uid/" + uid + "/"
}

// EnsureUIDAlias makes sure the aliases list carries the uid permalink.
// Scalar aliases normalize to a list.
func EnsureUIDAlias(fields map[string]any, uid string) (changed bool, err error) {
	if fields == nil {
		return false, errors.New("fields map is nil")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return false, errors.New("uid is empty")
	}

	expected := UIDAlias(uid)

	switch v := fields[AliasesField].(type) {
	case nil:
		fields[AliasesField] = []string{expected}
		return true, nil
	case []string:
		if slices.Contains(v, expected) {
			return false, nil
		}
		fields[AliasesField] = append(v, expected)
		return true, nil
	case []any:
		out := make([]string, 0, len(v)+1)
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		if slices.Contains(out, expected) {
			fields[AliasesField] = out
			return false, nil
		}
		fields[AliasesField] = append(out, expected)
		return true, nil
	case string:
		if strings.TrimSpace(v) == expected {
			fields[AliasesField] = []string{expected}
			return false, nil
		}
		fields[AliasesField] = []string{v, expected}
		return true, nil
	default:
		return false, fmt.Errorf("aliases has unsupported type %T", v)
	}
}

// Aliases returns the alias list in a normalized string form.
func Aliases(fields map[string]any) []string {
	switch v := fields[AliasesField].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
