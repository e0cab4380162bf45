package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all decoders; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldCache holds the JSON fields of each variant.
var fieldCache sync.Map // reflect.Type -> []eventField

// eventField is one exported field of a variant and the exact key it is
// read from.
type eventField struct {
	name  string
	index int
}

// Decode parses one raw payload into its typed event.
func Decode(raw []byte) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object: %v", ErrMalformedPayload, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrMalformedPayload)
	}

	rawAction, ok := fields["action"]
	if !ok {
		return nil, fmt.Errorf("%w: missing 'action'", ErrMalformedPayload)
	}
	var action Action
	if err := json.Unmarshal(rawAction, &action); err != nil {
		return nil, fmt.Errorf("%w: 'action' must be a string", ErrMalformedPayload)
	}

	newEvent, ok := kinds[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	ev := newEvent()

	declared := eventFields(ev)
	var missing []string
	for _, f := range declared {
		if _, ok := fields[f.name]; !ok {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing field(s) %s", ErrMalformedPayload, action, strings.Join(missing, ", "))
	}

	// Fields are read by exact key, not by encoding/json's case-insensitive
	// match.
	target := reflect.ValueOf(ev).Elem()
	for _, f := range declared {
		if err := json.Unmarshal(fields[f.name], target.Field(f.index).Addr().Interface()); err != nil {
			return nil, fmt.Errorf("%w: %s: field '%s': %v", ErrMalformedPayload, action, f.name, err)
		}
	}
	if err := Validate(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Validate checks an already-typed event against its variant's rules. It is
// applied by Decode and should be applied to events built in code before
// they are dispatched.
func Validate(ev Event) error {
	if ev == nil || reflect.ValueOf(ev).IsNil() {
		return fmt.Errorf("%w: nil event", ErrMalformedPayload)
	}
	if err := validate.Struct(ev); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s: %s", ErrMalformedPayload, ev.Action(), describeValidation(verrs))
		}
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, ev.Action(), err)
	}
	if c, ok := ev.(checker); ok {
		if err := c.check(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, ev.Action(), err)
		}
	}
	return nil
}

// Encode produces the wire form of ev, including its action.
func Encode(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", ev.Action(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", ev.Action(), err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	action, _ := json.Marshal(ev.Action())
	fields["action"] = action
	return json.Marshal(fields)
}

// eventFields lists the JSON names of every exported field of ev's struct
// type. All of them are required.
func eventFields(ev Event) []eventField {
	t := reflect.TypeOf(ev).Elem()
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]eventField)
	}

	fields := make([]eventField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		fields = append(fields, eventField{name: name, index: i})
	}
	fieldCache.Store(t, fields)
	return fields
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
