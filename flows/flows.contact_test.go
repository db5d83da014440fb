package flows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContactURN(t *testing.T) {
	tests := []struct {
		input   string
		scheme  string
		path    string
		wantErr bool
	}{
		{"tel:+260964153686", "tel", "+260964153686", false},
		{"TWITTER:realJoeFlow", "twitter", "realJoeFlow", false},
		{"mailto:joe@example.com", "mailto", "joe@example.com", false},
		{"+260964153686", "", "", true},
		{"tel:", "", "", true},
		{":123", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			urn, err := ParseContactURN(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.scheme, urn.Scheme)
			assert.Equal(t, tt.path, urn.Path)
		})
	}

	assert.Panics(t, func() { MustParseContactURN("nope") })
	assert.Equal(t, "tel:+250788", MustParseContactURN("tel:+250788").String())
}

func TestContact_BuildContext(t *testing.T) {
	org := testOrg(t)
	contact := testContact()

	ctx := contact.BuildContext(org)
	assert.Equal(t, "Joe Flow", ctx[ContextKeyDefault])
	assert.Equal(t, "Joe Flow", ctx[ContextKeyName])
	assert.Equal(t, "Joe", ctx[ContextKeyFirstName])
	assert.Equal(t, "+260964153686", ctx[URNSchemeTel])
	assert.Equal(t, "+260964153686", ctx[ContextKeyTelE164])
	assert.Equal(t, "realJoeFlow", ctx[URNSchemeTwitter])
	assert.Equal(t, "", ctx[URNSchemeEmail])
	assert.Equal(t, "Testers,Developers", ctx[ContextKeyGroups])
	assert.Equal(t, "1234-1234", ctx[ContextKeyUUID])
	assert.Equal(t, "eng", ctx[ContextKeyLanguage])
	assert.Equal(t, "M", ctx["gender"])
	assert.Equal(t, "34", ctx["age"])
}

func TestContact_BuildContext_Anonymous(t *testing.T) {
	org := testOrg(t)
	org.Anonymous = true

	contact := testContact()
	ctx := contact.BuildContext(org)
	assert.Equal(t, MaskedURN, ctx[URNSchemeTel])
	assert.Equal(t, MaskedURN, ctx[ContextKeyTelE164])
	assert.Equal(t, MaskedURN, ctx[URNSchemeTwitter])
	assert.Equal(t, "Joe Flow", ctx[ContextKeyDefault])

	contact.Name = ""
	ctx = contact.BuildContext(org)
	assert.Equal(t, MaskedURN, ctx[ContextKeyDefault])
	assert.Equal(t, MaskedURN, ctx[ContextKeyFirstName])
}

func TestContact_AddGroup(t *testing.T) {
	contact := testContact()

	assert.True(t, contact.AddGroup("Reporters"))
	assert.False(t, contact.AddGroup("Testers"))
	assert.False(t, contact.AddGroup(""))
	assert.Equal(t, []string{"Testers", "Developers", "Reporters"}, contact.Groups)
}

func TestRunState_BuildContext(t *testing.T) {
	runner, _, ctx := setupRun(t)

	tests := []struct {
		template string
		expected string
	}{
		{"Hi @contact", "Hi Joe Flow"},
		{"@contact.first_name is @contact.age", "Joe is 34"},
		{"@contact.tel", "+260964153686"},
		{"@contact.groups", "Testers,Developers"},
		{"@(contact.age - 2)", "32"},
		{"@(UPPER(contact.gender))", "M"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			result := runner.SubstituteVariables(tt.template, ctx)
			assert.Empty(t, result.Errors)
			assert.Equal(t, tt.expected, result.Output)
		})
	}

	assert.Equal(t, "Africa/Kigali", ctx.Location().String())
}

func TestRunState_BuildContext_Variables(t *testing.T) {
	runner, err := NewRunner()
	require.NoError(t, err)

	run := NewRunState(testOrg(t), testContact())
	run.Variables = map[string]any{
		"step":    map[string]any{"value": "Yes"},
		"Contact": map[string]any{"name": "Impostor"},
	}
	ctx, err := run.BuildContext()
	require.NoError(t, err)

	result := runner.SubstituteVariables("@step.value from @contact.name", ctx)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Yes from Joe Flow", result.Output)
}

func TestRunState_BuildContext_Invalid(t *testing.T) {
	_, err := NewRunState(nil, testContact()).BuildContext()
	assert.Error(t, err)

	_, err = NewRunState(testOrg(t), nil).BuildContext()
	assert.Error(t, err)
}

func TestRunState_Languages(t *testing.T) {
	run := NewRunState(testOrg(t), testContact())
	run.Contact.Language = "kin"
	assert.Equal(t, []string{"kin", "eng"}, run.Languages())

	run.Contact.Language = ""
	assert.Equal(t, []string{"eng"}, run.Languages())
}

func TestRunState_BuildContext_UTCDefault(t *testing.T) {
	org := testOrg(t)
	org.Timezone = nil

	ctx, err := NewRunState(org, testContact()).BuildContext()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ctx.Location())
}
