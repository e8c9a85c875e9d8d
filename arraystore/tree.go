package arraystore

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/veffgo"
	"github.com/x448/float16"
)

// Tree is a nested mapping written in one call. Values are either nested
// groups (Tree or map[string]any) or leaves: *Tensor, *veffgo.PredictionTable
// or a one-dimensional slice of a supported element type.
type Tree map[string]any

var keyEscaper = strings.NewReplacer("%", "%25", "/", "%2F")
var keyUnescaper = strings.NewReplacer("%2F", "/", "%25", "%")

// JoinPath builds a leaf path from keys. Keys may contain "/".
func JoinPath(keys ...string) string {
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = keyEscaper.Replace(k)
	}
	return strings.Join(escaped, "/")
}

// SplitPath is the inverse of JoinPath.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = keyUnescaper.Replace(p)
	}
	return parts
}

type leafEntry struct {
	path   string
	tensor *Tensor
}

// flatten walks tree depth-first in key order and returns its leaves and
// group paths.
func flatten(tree Tree) ([]leafEntry, []string, error) {
	var (
		leaves []leafEntry
		groups []string
	)
	var walk func(prefix string, node map[string]any) error
	walk = func(prefix string, node map[string]any) error {
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			path := keyEscaper.Replace(k)
			if prefix != "" {
				path = prefix + "/" + path
			}
			switch v := node[k].(type) {
			case Tree:
				groups = append(groups, path)
				if err := walk(path, v); err != nil {
					return err
				}
			case map[string]any:
				groups = append(groups, path)
				if err := walk(path, v); err != nil {
					return err
				}
			default:
				t, err := toTensor(path, v)
				if err != nil {
					return err
				}
				leaves = append(leaves, leafEntry{path: path, tensor: t})
			}
		}
		return nil
	}
	if err := walk("", tree); err != nil {
		return nil, nil, err
	}
	return leaves, groups, nil
}

func toTensor(path string, v any) (*Tensor, error) {
	switch x := v.(type) {
	case *Tensor:
		if x == nil {
			break
		}
		if len(x.shape) == 0 {
			return nil, fmt.Errorf("arraystore: leaf %q is a scalar", path)
		}
		return x, nil
	case *veffgo.PredictionTable:
		if x == nil {
			break
		}
		return FromTable(x), nil
	case []float64:
		return FromSlice(x)
	case []float32:
		return FromSlice(x)
	case []float16.Float16:
		return FromSlice(x)
	case []int64:
		return FromSlice(x)
	case []int32:
		return FromSlice(x)
	case []uint8:
		return FromSlice(x)
	case []string:
		return FromSlice(x)
	}
	return nil, &ErrUnsupportedValue{Path: path, Type: fmt.Sprintf("%T", v)}
}
