package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Selector is the class and optional method handed to the build tool
type Selector struct {
	Class  string
	Method string
}

// String renders the selector the way the build tool's --tests option expects
func (s Selector) String() string {
	if s.Method == "" {
		return s.Class
	}
	return s.Class + Separator + s.Method
}

// SelectorFor recovers the selector of a leaf node by splitting its id on Separator.
// File ids embed a path that may itself contain the separator, so the split is taken from
// the right and the node kind says how many trailing segments are names.
func SelectorFor(n *TestNode) (Selector, error) {
	switch n.Kind {
	case KindMethod:
		parts := strings.Split(n.ID, Separator)
		if len(parts) < 3 {
			return Selector{}, fmt.Errorf("malformed method id %q", n.ID)
		}
		return Selector{Class: parts[len(parts)-2], Method: parts[len(parts)-1]}, nil
	case KindClass:
		i := strings.LastIndex(n.ID, Separator)
		if i < 0 || i == len(n.ID)-1 {
			return Selector{}, fmt.Errorf("malformed class id %q", n.ID)
		}
		return Selector{Class: n.ID[i+1:]}, nil
	case KindFile:
		path := strings.TrimPrefix(n.ID, IDPrefix)
		base := filepath.Base(path)
		return Selector{Class: strings.TrimSuffix(base, filepath.Ext(base))}, nil
	}
	return Selector{}, fmt.Errorf("unknown node kind %v", n.Kind)
}
