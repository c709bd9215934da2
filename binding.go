package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// BindingKind selects how a track's audio reaches the mixer.
type BindingKind string

const (
	// BindFile decodes a locally chosen file completely before playing.
	BindFile BindingKind = "file"
	// BindStream plays a network resource while it is still downloading.
	BindStream BindingKind = "stream"
	// BindBuffer fetches a network resource completely, then decodes it.
	BindBuffer BindingKind = "buffer"
)

func ParseBindingKind(s string) (BindingKind, error) {
	switch k := BindingKind(strings.ToLower(strings.TrimSpace(s))); k {
	case BindFile, BindStream, BindBuffer:
		return k, nil
	default:
		return "", fmt.Errorf("unknown binding kind: %q", s)
	}
}

type Binding struct {
	Kind BindingKind
	Href string
}

func isRemoteHref(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// NewBinding builds a binding for href. An empty kind is inferred: URLs
// stream, everything else is a local file.
func NewBinding(kind, href string) (Binding, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return Binding{}, fmt.Errorf("empty href")
	}
	var k BindingKind
	if kind == "" {
		k = BindFile
		if isRemoteHref(href) {
			k = BindStream
		}
	} else {
		var err error
		if k, err = ParseBindingKind(kind); err != nil {
			return Binding{}, err
		}
	}
	switch k {
	case BindFile:
		if isRemoteHref(href) {
			return Binding{}, fmt.Errorf("file binding needs a local path, got %q", href)
		}
		path, err := homedir.Expand(href)
		if err != nil {
			return Binding{}, fmt.Errorf("expand %q: %w", href, err)
		}
		href = path
	case BindStream, BindBuffer:
		if !isRemoteHref(href) {
			return Binding{}, fmt.Errorf("%s binding needs an http(s) url, got %q", k, href)
		}
	}
	return Binding{Kind: k, Href: href}, nil
}

func (b Binding) String() string {
	return fmt.Sprintf("%s:%s", b.Kind, b.Href)
}
