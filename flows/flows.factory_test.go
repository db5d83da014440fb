package flows

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Types(t *testing.T) {
	factory := NewFactory()

	assert.Equal(t, []string{"district", "eq", "false", "gt", "gte", "lt", "lte", "state", "true"}, factory.TestTypes())
	assert.Equal(t, []string{"add_group", "reply"}, factory.ActionTypes())
	assert.Empty(t, NewEmptyFactory().TestTypes())
}

func TestFactory_NewTest(t *testing.T) {
	factory := NewFactory()
	runner, run, ctx := setupRun(t)

	tests := []struct {
		name    string
		def     string
		input   string
		matched bool
	}{
		{"true", `{"type": "true"}`, "x", true},
		{"false", `{"type": "false"}`, "x", false},
		{"eq expression", `{"type": "eq", "test": "@(contact.age - 2)"}`, "32", true},
		{"eq number operand", `{"type": "eq", "test": 32}`, "32", true},
		{"lt yaml", "type: lt\ntest: 5", "4", true},
		{"lte", `{"type": "lte", "test": "5.5"}`, "6", false},
		{"gt", `{"type": "gt", "test": "@contact.age"}`, "40", true},
		{"gte", `{"type": "gte", "test": 1}`, "0", false},
		{"state", `{"type": "state"}`, "Kigali", true},
		{"district", `{"type": "district", "test": "Kigali"}`, "Gasabo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ParseDefinition([]byte(tt.def))
			require.NoError(t, err)

			test, err := factory.NewTest(def)
			require.NoError(t, err)

			result := test.Evaluate(runner, run, ctx, tt.input)
			assert.Equal(t, tt.matched, result.Matched)
		})
	}
}

func TestFactory_NewTest_Errors(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name string
		def  Definition
	}{
		{"missing type", Definition{"test": "1"}},
		{"non-string type", Definition{"type": 3}},
		{"unknown type", Definition{"type": "regex"}},
		{"missing operand", Definition{"type": "eq"}},
		{"invalid operand", Definition{"type": "eq", "test": []any{1}}},
		{"missing state", Definition{"type": "district"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.NewTest(tt.def)
			assert.Error(t, err)
		})
	}

	_, err := factory.NewTest(Definition{"type": "eq"})
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	field, ok := customErr.GetMetadata(MetaKeyField)
	assert.True(t, ok)
	assert.Equal(t, DefKeyTest, field)
}

func TestFactory_NewAction(t *testing.T) {
	factory := NewFactory()
	runner, run, ctx := setupRun(t)

	def, err := ParseDefinition([]byte(`
type: reply
msg:
  eng: "Hi @contact.first_name"
  fra: "Salut @contact.first_name"
`))
	require.NoError(t, err)

	action, err := factory.NewAction(def)
	require.NoError(t, err)
	assert.Equal(t, ActionTypeReply, action.Type())
	result := action.Execute(runner, run, ctx)
	assert.Equal(t, "Hi Joe", result.Performed.(*ReplyAction).Msg.Localized())

	action, err = factory.NewAction(Definition{"type": "reply", "msg": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, NewText("Hello"), action.(*ReplyAction).Msg)

	def, err = ParseDefinition([]byte(`{"type": "add_group", "groups": [{"uuid": "g-1", "name": "Testers"}, "@contact.gender Group"]}`))
	require.NoError(t, err)
	action, err = factory.NewAction(def)
	require.NoError(t, err)
	assert.Equal(t, []Group{{UUID: "g-1", Name: "Testers"}, {Name: "@contact.gender Group"}}, action.(*AddGroupAction).Groups)

	result = action.Execute(runner, run, ctx)
	assert.Empty(t, result.Errors)
	assert.Contains(t, run.Contact.Groups, "M Group")
}

func TestFactory_NewAction_Errors(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name string
		def  Definition
	}{
		{"unknown type", Definition{"type": "send_email"}},
		{"reply missing msg", Definition{"type": "reply"}},
		{"reply invalid msg", Definition{"type": "reply", "msg": []any{"a"}}},
		{"reply invalid translation", Definition{"type": "reply", "msg": map[string]any{"eng": []any{}}}},
		{"add_group missing groups", Definition{"type": "add_group"}},
		{"add_group invalid group", Definition{"type": "add_group", "groups": []any{42}}},
		{"add_group unnamed group", Definition{"type": "add_group", "groups": []any{map[string]any{"uuid": "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.NewAction(tt.def)
			assert.Error(t, err)
		})
	}
}

func TestFactory_Register(t *testing.T) {
	factory := NewEmptyFactory()

	require.NoError(t, factory.RegisterTest("always", func(Definition) (Test, error) { return TrueTest{}, nil }))
	assert.Error(t, factory.RegisterTest("always", func(Definition) (Test, error) { return TrueTest{}, nil }))
	assert.Error(t, factory.RegisterTest("", func(Definition) (Test, error) { return TrueTest{}, nil }))
	assert.Error(t, factory.RegisterTest("nil", nil))

	require.NoError(t, factory.RegisterAction("noop", func(Definition) (Action, error) { return NewReplyAction(TranslatableText{}), nil }))
	assert.Error(t, factory.RegisterAction("noop", func(Definition) (Action, error) { return nil, nil }))
	assert.Error(t, factory.RegisterAction("nil", nil))

	test, err := factory.NewTest(Definition{"type": "always"})
	require.NoError(t, err)
	assert.Equal(t, TestTypeTrue, test.Type())

	_, err = factory.NewTest(Definition{"type": "eq", "test": "1"})
	assert.Error(t, err)
}

func TestParseDefinition_Errors(t *testing.T) {
	_, err := ParseDefinition([]byte("type: [unclosed"))
	assert.Error(t, err)

	_, err = ParseDefinition(nil)
	assert.Error(t, err)
}
