package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/event"
)

// ValidateRegistry performs a strict parity check between the protocol's
// closed set of actions and the registered handlers.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, action := range event.Actions() {
		if _, ok := r.handlers[action]; !ok {
			errs = append(errs, fmt.Sprintf("action '%s': no handler registered", action))
		}
	}
	for action := range r.handlers {
		if !event.Known(action) {
			errs = append(errs, fmt.Sprintf("action '%s': handler registered for an action the protocol does not declare", action))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "handlers", len(r.handlers))
	return nil
}
