package flows

import (
	"strings"
	"testing"
	"time"

	excellent "github.com/itsatony/go-excellent"
	"github.com/stretchr/testify/require"
)

// testLocationResolver knows one state (Kigali) and one district (Gasabo).
var testLocationResolver = LocationResolverFunc(func(input, country string, level LocationLevel, parent string) *Location {
	switch {
	case level == LocationLevelState && strings.EqualFold(strings.TrimSpace(input), "Kigali"):
		return &Location{Name: "Kigali"}
	case level == LocationLevelDistrict && strings.EqualFold(strings.TrimSpace(input), "Gasabo") &&
		strings.EqualFold(strings.TrimSpace(parent), "Kigali"):
		return &Location{Name: "Gasabo"}
	default:
		return nil
	}
})

func testOrg(t *testing.T) *Org {
	t.Helper()
	kigali, err := time.LoadLocation("Africa/Kigali")
	require.NoError(t, err)
	return &Org{
		Country:         "RW",
		PrimaryLanguage: "eng",
		Timezone:        kigali,
		DateStyle:       excellent.DateStyleDayFirst,
	}
}

func testContact() *Contact {
	return &Contact{
		UUID: "1234-1234",
		Name: "Joe Flow",
		URNs: []ContactURN{
			MustParseContactURN("tel:+260964153686"),
			MustParseContactURN("twitter:realJoeFlow"),
		},
		Groups:   []string{"Testers", "Developers"},
		Fields:   map[string]string{"gender": "M", "age": "34"},
		Language: "eng",
	}
}

// setupRun returns a runner, a run for Joe Flow and its evaluation context.
func setupRun(t *testing.T) (*Runner, *RunState, *excellent.EvaluationContext) {
	t.Helper()
	runner, err := NewRunner(WithLocationResolver(testLocationResolver))
	require.NoError(t, err)

	run := NewRunState(testOrg(t), testContact())
	ctx, err := run.BuildContext()
	require.NoError(t, err)
	return runner, run, ctx
}
