package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
// Unknown blocks and attributes are errors. Optional attributes are pointers
// so that an absent attribute keeps the value of an earlier file or the
// default.
type fileRoot struct {
	Session *sessionBlock  `hcl:"session,block"`
	Styles  *stylesBlock   `hcl:"styles,block"`
	Sources []*sourceBlock `hcl:"source,block"`
	Server  *serverBlock   `hcl:"server,block"`
}

type sessionBlock struct {
	Kind       *string  `hcl:"kind,optional"`
	Graph      *string  `hcl:"graph,optional"`
	Layout     *string  `hcl:"layout,optional"`
	Width      *float64 `hcl:"width,optional"`
	Height     *float64 `hcl:"height,optional"`
	Iterations *int     `hcl:"iterations,optional"`
	Seed       *int64   `hcl:"seed,optional"`
}

type stylesBlock struct {
	HighlightStroke *string `hcl:"highlight_stroke,optional"`
	DefaultStroke   *string `hcl:"default_stroke,optional"`
	ActiveStroke    *string `hcl:"active_stroke,optional"`
}

// sourceBlock defers decoding of its body until the type label is known.
type sourceBlock struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

type fileSourceBody struct {
	Path string `hcl:"path"`
}

type socketIOSourceBody struct {
	URL                string  `hcl:"url"`
	Namespace          *string `hcl:"namespace,optional"`
	Event              *string `hcl:"event,optional"`
	Timeout            *string `hcl:"timeout,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

type serverBlock struct {
	Port *int `hcl:"port,optional"`
}
