// This file contains the logic for translating the HCL schema structs into
// the format-agnostic configuration model defined in the config package.

package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/tracegraph/internal/config"
)

func (l *Loader) translate(root *fileRoot, evalCtx *hcl.EvalContext, model *config.Model) error {
	if s := root.Session; s != nil {
		if err := translateSession(s, &model.Session); err != nil {
			return err
		}
	}
	if s := root.Styles; s != nil {
		setIf(&model.Styles.HighlightStroke, s.HighlightStroke)
		setIf(&model.Styles.DefaultStroke, s.DefaultStroke)
		setIf(&model.Styles.ActiveStroke, s.ActiveStroke)
	}
	if s := root.Server; s != nil {
		setIf(&model.Server.Port, s.Port)
	}

	switch len(root.Sources) {
	case 0:
	case 1:
		src, err := translateSource(root.Sources[0], evalCtx)
		if err != nil {
			return err
		}
		model.Source = src
	default:
		return fmt.Errorf("only one source block is allowed, found %d", len(root.Sources))
	}
	return nil
}

func translateSession(s *sessionBlock, out *config.Session) error {
	setIf(&out.Kind, s.Kind)
	setIf(&out.Graph, s.Graph)
	setIf(&out.Layout, s.Layout)
	setIf(&out.Width, s.Width)
	setIf(&out.Height, s.Height)
	setIf(&out.Iterations, s.Iterations)
	if s.Seed != nil {
		if *s.Seed < 0 {
			return fmt.Errorf("session.seed cannot be negative")
		}
		out.Seed = uint64(*s.Seed)
	}
	return nil
}

// translateSource decodes a source body according to its type label.
func translateSource(b *sourceBlock, evalCtx *hcl.EvalContext) (*config.Source, error) {
	src := &config.Source{Type: b.Type}

	switch b.Type {
	case config.SourceFile:
		var body fileSourceBody
		if diags := gohcl.DecodeBody(b.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("source \"file\": %w", diags)
		}
		src.Path = body.Path

	case config.SourceSocketIO:
		var body socketIOSourceBody
		if diags := gohcl.DecodeBody(b.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("source \"socketio\": %w", diags)
		}
		src.URL = body.URL
		setIf(&src.Namespace, body.Namespace)
		setIf(&src.Event, body.Event)
		setIf(&src.InsecureSkipVerify, body.InsecureSkipVerify)
		if body.Timeout != nil {
			d, err := time.ParseDuration(*body.Timeout)
			if err != nil {
				return nil, fmt.Errorf("source \"socketio\": invalid timeout %q: %w", *body.Timeout, err)
			}
			src.Timeout = d
		}

	default:
		return nil, fmt.Errorf("unknown source type %q: must be %q or %q", b.Type, config.SourceFile, config.SourceSocketIO)
	}
	return src, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
