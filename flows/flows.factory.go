package flows

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Definition is a decoded test or action definition, e.g.
// {"type": "eq", "test": "@(contact.age - 2)"}.
type Definition map[string]any

// ParseDefinition decodes a YAML or JSON definition.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, NewDefinitionError(ErrMsgDefinitionParse, err)
	}
	if def == nil {
		return nil, NewDefinitionError(ErrMsgMissingType, nil)
	}
	return def, nil
}

// Type returns the discriminant of the definition.
func (d Definition) Type() (string, error) {
	typeName, ok := d[DefKeyType].(string)
	if !ok || typeName == "" {
		return "", NewDefinitionError(ErrMsgMissingType, nil)
	}
	return typeName, nil
}

// String returns a scalar field as text. Numbers and booleans are formatted.
func (d Definition) String(typeName, key string) (string, error) {
	raw, ok := d[key]
	if !ok || raw == nil {
		return "", NewFieldError(ErrMsgMissingField, typeName, key)
	}
	text, ok := scalarText(raw)
	if !ok {
		return "", NewFieldError(ErrMsgInvalidField, typeName, key)
	}
	return text, nil
}

func scalarText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// TestConstructor builds a test from its definition.
type TestConstructor func(def Definition) (Test, error)

// ActionConstructor builds an action from its definition.
type ActionConstructor func(def Definition) (Action, error)

// Factory maps definition type names to test and action constructors.
// It is safe for concurrent use.
type Factory struct {
	mu      sync.RWMutex
	tests   map[string]TestConstructor
	actions map[string]ActionConstructor
}

// NewFactory creates a factory with every built-in test and action registered.
func NewFactory() *Factory {
	f := NewEmptyFactory()

	numeric := map[string]func(string) *NumericTest{
		TestTypeEqual:       NewEqualTest,
		TestTypeLessThan:    NewLessThanTest,
		TestTypeLessOrEqual: NewLessThanOrEqualTest,
		TestTypeGreaterThan: NewGreaterThanTest,
		TestTypeGreaterOrEq: NewGreaterThanOrEqualTest,
	}
	for typeName, build := range numeric {
		f.mustRegisterTest(typeName, numericConstructor(typeName, build))
	}

	f.mustRegisterTest(TestTypeTrue, func(Definition) (Test, error) { return TrueTest{}, nil })
	f.mustRegisterTest(TestTypeFalse, func(Definition) (Test, error) { return FalseTest{}, nil })
	f.mustRegisterTest(TestTypeHasState, func(Definition) (Test, error) { return HasStateTest{}, nil })
	f.mustRegisterTest(TestTypeHasDistrict, func(def Definition) (Test, error) {
		state, err := def.String(TestTypeHasDistrict, DefKeyTest)
		if err != nil {
			return nil, err
		}
		return NewHasDistrictTest(state), nil
	})

	f.mustRegisterAction(ActionTypeReply, newReplyFromDefinition)
	f.mustRegisterAction(ActionTypeAddGroup, newAddGroupFromDefinition)
	return f
}

// NewEmptyFactory creates a factory with nothing registered.
func NewEmptyFactory() *Factory {
	return &Factory{
		tests:   make(map[string]TestConstructor),
		actions: make(map[string]ActionConstructor),
	}
}

// RegisterTest registers a test constructor. Names are unique.
func (f *Factory) RegisterTest(typeName string, constructor TestConstructor) error {
	if typeName == "" {
		return NewDefinitionError(ErrMsgEmptyTypeName, nil)
	}
	if constructor == nil {
		return NewDefinitionError(ErrMsgNilConstructor, nil).WithMetadata(MetaKeyType, typeName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.tests[typeName]; exists {
		return NewDefinitionError(ErrMsgTypeRegistered, nil).WithMetadata(MetaKeyType, typeName)
	}
	f.tests[typeName] = constructor
	return nil
}

// RegisterAction registers an action constructor. Names are unique.
func (f *Factory) RegisterAction(typeName string, constructor ActionConstructor) error {
	if typeName == "" {
		return NewDefinitionError(ErrMsgEmptyTypeName, nil)
	}
	if constructor == nil {
		return NewDefinitionError(ErrMsgNilConstructor, nil).WithMetadata(MetaKeyType, typeName)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.actions[typeName]; exists {
		return NewDefinitionError(ErrMsgTypeRegistered, nil).WithMetadata(MetaKeyType, typeName)
	}
	f.actions[typeName] = constructor
	return nil
}

func (f *Factory) mustRegisterTest(typeName string, constructor TestConstructor) {
	if err := f.RegisterTest(typeName, constructor); err != nil {
		panic(err)
	}
}

func (f *Factory) mustRegisterAction(typeName string, constructor ActionConstructor) {
	if err := f.RegisterAction(typeName, constructor); err != nil {
		panic(err)
	}
}

// NewTest builds the test a definition describes.
func (f *Factory) NewTest(def Definition) (Test, error) {
	typeName, err := def.Type()
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	constructor, ok := f.tests[typeName]
	f.mu.RUnlock()

	if !ok {
		return nil, NewUnknownTypeError(ErrMsgUnknownTestType, typeName)
	}
	return constructor(def)
}

// NewAction builds the action a definition describes.
func (f *Factory) NewAction(def Definition) (Action, error) {
	typeName, err := def.Type()
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	constructor, ok := f.actions[typeName]
	f.mu.RUnlock()

	if !ok {
		return nil, NewUnknownTypeError(ErrMsgUnknownActionType, typeName)
	}
	return constructor(def)
}

// TestTypes returns the registered test type names, sorted.
func (f *Factory) TestTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.tests))
	for name := range f.tests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActionTypes returns the registered action type names, sorted.
func (f *Factory) ActionTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.actions))
	for name := range f.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func numericConstructor(typeName string, build func(string) *NumericTest) TestConstructor {
	return func(def Definition) (Test, error) {
		operand, err := def.String(typeName, DefKeyTest)
		if err != nil {
			return nil, err
		}
		return build(operand), nil
	}
}

// newReplyFromDefinition accepts "msg" as a string or a language map.
func newReplyFromDefinition(def Definition) (Action, error) {
	raw, ok := def[DefKeyMsg]
	if !ok || raw == nil {
		return nil, NewFieldError(ErrMsgMissingField, ActionTypeReply, DefKeyMsg)
	}

	if text, ok := scalarText(raw); ok {
		return NewReplyAction(NewText(text)), nil
	}

	translations, ok := raw.(map[string]any)
	if !ok {
		return nil, NewFieldError(ErrMsgInvalidField, ActionTypeReply, DefKeyMsg)
	}
	msgs := make(map[string]string, len(translations))
	for language, value := range translations {
		text, ok := scalarText(value)
		if !ok {
			return nil, NewFieldError(ErrMsgInvalidField, ActionTypeReply, DefKeyMsg+"."+language)
		}
		msgs[language] = text
	}
	return NewReplyAction(NewTranslations(msgs)), nil
}

// newAddGroupFromDefinition accepts groups as names or {uuid, name} objects.
func newAddGroupFromDefinition(def Definition) (Action, error) {
	raw, ok := def[DefKeyGroups].([]any)
	if !ok {
		return nil, NewFieldError(ErrMsgMissingField, ActionTypeAddGroup, DefKeyGroups)
	}

	groups := make([]Group, 0, len(raw))
	for i, item := range raw {
		field := fmt.Sprintf("%s[%d]", DefKeyGroups, i)
		switch v := item.(type) {
		case string:
			groups = append(groups, Group{Name: v})
		case map[string]any:
			group := Definition(v)
			name, err := group.String(ActionTypeAddGroup, DefKeyName)
			if err != nil {
				return nil, NewFieldError(ErrMsgInvalidField, ActionTypeAddGroup, field)
			}
			uuid, _ := scalarText(v[DefKeyUUID])
			groups = append(groups, Group{UUID: uuid, Name: name})
		default:
			return nil, NewFieldError(ErrMsgInvalidField, ActionTypeAddGroup, field)
		}
	}
	return NewAddGroupAction(groups...), nil
}
