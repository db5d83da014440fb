package flows

import (
	"sort"

	excellent "github.com/itsatony/go-excellent"
)

// TranslatableText is message text in one or more languages.
type TranslatableText struct {
	// Base is used when the text has no translations.
	Base string

	// Translations maps language codes to text.
	Translations map[string]string
}

// NewText creates untranslated text.
func NewText(text string) TranslatableText {
	return TranslatableText{Base: text}
}

// NewTranslations creates text with per-language translations.
func NewTranslations(translations map[string]string) TranslatableText {
	return TranslatableText{Translations: translations}
}

// Localized returns the translation for the first of languages that has one.
// Without a match it falls back to the base text, then to the translation
// with the lowest language code.
func (t TranslatableText) Localized(languages ...string) string {
	for _, language := range languages {
		if text, ok := t.Translations[language]; ok {
			return text
		}
	}
	if t.Base != "" || len(t.Translations) == 0 {
		return t.Base
	}

	keys := make([]string, 0, len(t.Translations))
	for k := range t.Translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return t.Translations[keys[0]]
}

// IsEmpty reports whether the text has no content in any language.
func (t TranslatableText) IsEmpty() bool {
	return t.Base == "" && len(t.Translations) == 0
}

// ActionResult is the outcome of executing an action.
type ActionResult struct {
	// Performed is the action as performed, with templates evaluated. Nil
	// when the action did nothing.
	Performed Action

	// Errors holds template evaluation errors encountered along the way.
	Errors []string
}

// Action is a side effect a flow performs for a contact.
type Action interface {
	// Type returns the definition type name.
	Type() string

	// Execute performs the action within the given run and context.
	Execute(runner *Runner, run *RunState, ctx *excellent.EvaluationContext) ActionResult
}

// ReplyAction sends a message back to the contact.
type ReplyAction struct {
	Msg TranslatableText
}

// NewReplyAction creates a reply action.
func NewReplyAction(msg TranslatableText) *ReplyAction {
	return &ReplyAction{Msg: msg}
}

// Type returns "reply".
func (*ReplyAction) Type() string { return ActionTypeReply }

// Execute localizes the message for the contact and evaluates it.
func (a *ReplyAction) Execute(runner *Runner, run *RunState, ctx *excellent.EvaluationContext) ActionResult {
	if a.Msg.IsEmpty() {
		return ActionResult{}
	}

	msg := a.Msg.Localized(run.Languages()...)
	tmpl := runner.SubstituteVariables(msg, ctx)
	return ActionResult{
		Performed: NewReplyAction(NewText(tmpl.Output)),
		Errors:    tmpl.Errors,
	}
}

// Group is a contact group. Groups without a UUID are referenced by a name
// that may be a template, e.g. "@contact.district Members".
type Group struct {
	UUID string
	Name string
}

// AddGroupAction adds the contact to one or more groups.
type AddGroupAction struct {
	Groups []Group
}

// NewAddGroupAction creates an add-to-group action.
func NewAddGroupAction(groups ...Group) *AddGroupAction {
	return &AddGroupAction{Groups: groups}
}

// Type returns "add_group".
func (*AddGroupAction) Type() string { return ActionTypeAddGroup }

// Execute evaluates group names and adds the contact to each group. A group
// whose name fails to evaluate is skipped and its errors are recorded.
func (a *AddGroupAction) Execute(runner *Runner, run *RunState, ctx *excellent.EvaluationContext) ActionResult {
	var (
		groups []Group
		errs   []string
	)

	for _, group := range a.Groups {
		name := group.Name
		if group.UUID == "" {
			tmpl := runner.SubstituteVariables(name, ctx)
			if tmpl.HasErrors() {
				errs = append(errs, tmpl.Errors...)
				continue
			}
			name = tmpl.Output
		}

		if name == "" {
			continue
		}
		run.Contact.AddGroup(name)
		groups = append(groups, Group{UUID: group.UUID, Name: name})
	}

	return ActionResult{
		Performed: NewAddGroupAction(groups...),
		Errors:    errs,
	}
}
