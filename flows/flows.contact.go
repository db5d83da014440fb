package flows

import (
	"slices"
	"strings"
	"time"

	excellent "github.com/itsatony/go-excellent"
)

// Org holds the settings of the organization a run belongs to.
type Org struct {
	// Country is the ISO country code used for location lookups, e.g. "RW".
	Country string `json:"country" yaml:"country"`

	// PrimaryLanguage is the fallback language for translated messages.
	PrimaryLanguage string `json:"primary_language" yaml:"primary_language"`

	// Timezone is used for date rendering and parsing. Nil means UTC.
	Timezone *time.Location `json:"-" yaml:"-"`

	// DateStyle controls how ambiguous dates are parsed and rendered.
	DateStyle excellent.DateStyle `json:"-" yaml:"-"`

	// Anonymous orgs never expose contact URNs to templates.
	Anonymous bool `json:"anonymous" yaml:"anonymous"`
}

// ContactURN is a contact address such as "tel:+250788123123".
type ContactURN struct {
	Scheme string
	Path   string
}

// ParseContactURN parses a "scheme:path" string.
func ParseContactURN(urn string) (ContactURN, error) {
	scheme, path, ok := strings.Cut(urn, URNSeparator)
	if !ok || scheme == "" || path == "" {
		return ContactURN{}, NewInvalidURNError(urn)
	}
	return ContactURN{Scheme: strings.ToLower(scheme), Path: path}, nil
}

// MustParseContactURN parses a URN or panics.
func MustParseContactURN(urn string) ContactURN {
	u, err := ParseContactURN(urn)
	if err != nil {
		panic(err)
	}
	return u
}

// String returns the URN in "scheme:path" form.
func (u ContactURN) String() string {
	return u.Scheme + URNSeparator + u.Path
}

// Display returns the URN path as shown to templates, masked for anonymous orgs.
func (u ContactURN) Display(org *Org) string {
	if org != nil && org.Anonymous {
		return MaskedURN
	}
	return u.Path
}

// Contact is the contact a flow run is interacting with.
type Contact struct {
	UUID     string
	Name     string
	URNs     []ContactURN
	Groups   []string
	Fields   map[string]string
	Language string
}

// AddGroup adds the contact to a group, ignoring names it already has.
// Reports whether the group was added.
func (c *Contact) AddGroup(name string) bool {
	if name == "" || slices.Contains(c.Groups, name) {
		return false
	}
	c.Groups = append(c.Groups, name)
	return true
}

// URN returns the first URN with the given scheme.
func (c *Contact) URN(scheme string) (ContactURN, bool) {
	for _, u := range c.URNs {
		if u.Scheme == scheme {
			return u, true
		}
	}
	return ContactURN{}, false
}

// Display returns the name of the contact, or its first URN when it has no name.
func (c *Contact) Display(org *Org) string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.URNs) > 0 {
		return c.URNs[0].Display(org)
	}
	return ""
}

// FirstName returns the first word of the contact name.
func (c *Contact) FirstName(org *Org) string {
	if c.Name == "" {
		return c.Display(org)
	}
	first, _, _ := strings.Cut(strings.TrimSpace(c.Name), " ")
	return first
}

// BuildContext returns the "contact" container exposed to expressions.
// Custom fields are added last and may shadow built-in keys.
func (c *Contact) BuildContext(org *Org) map[string]any {
	ctx := map[string]any{
		ContextKeyDefault:   c.Display(org),
		ContextKeyName:      c.Name,
		ContextKeyFirstName: c.FirstName(org),
		ContextKeyGroups:    strings.Join(c.Groups, GroupsSeparator),
		ContextKeyUUID:      c.UUID,
		ContextKeyLanguage:  c.Language,
	}

	for _, scheme := range URNSchemes {
		display := ""
		if u, ok := c.URN(scheme); ok {
			display = u.Display(org)
		}
		ctx[scheme] = display
	}

	telE164 := ""
	if u, ok := c.URN(URNSchemeTel); ok {
		telE164 = u.Display(org)
	}
	ctx[ContextKeyTelE164] = telE164

	for key, value := range c.Fields {
		ctx[strings.ToLower(key)] = value
	}
	return ctx
}
