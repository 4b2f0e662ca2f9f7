package roster

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/career-analyzer/internal/names"
	"github.com/albapepper/career-analyzer/internal/tables"
)

func resolverFor(dump tables.Dump) *names.Resolver {
	return names.Build(dump, nil)
}

func TestNormalize_ScenarioA_GenericName(t *testing.T) {
	dump := tables.Dump{
		"players":       {{"playerid": 1, "firstnameid": 10}},
		"dcplayernames": {{"nameid": 10, "name": "Diego"}},
	}
	res := Normalize(dump.Rows("players"), nil, resolverFor(dump))
	require.Len(t, res.Players, 1)
	require.Equal(t, "Diego", res.Players[0].FirstName)
	require.Equal(t, "Diego", res.Players[0].DisplayName())
}

func TestNormalize_ScenarioB_OverrideWins(t *testing.T) {
	dump := tables.Dump{
		"players":           {{"playerid": 1, "firstnameid": 10}},
		"dcplayernames":     {{"nameid": 10, "name": "Diego"}},
		"editedplayernames": {{"playerid": 1, "firstname": "Dieguinho"}},
	}
	res := Normalize(dump.Rows("players"), nil, resolverFor(dump))
	require.Len(t, res.Players, 1)
	require.Equal(t, "Dieguinho", res.Players[0].FirstName)
}

func TestNormalize_DefaultsAndPlaceholder(t *testing.T) {
	identity := []tables.Row{{"playerid": 71055}}
	res := Normalize(identity, nil, resolverFor(tables.Dump{}))

	require.Len(t, res.Players, 1)
	p := res.Players[0]
	require.Equal(t, "Unknown_71055", p.FirstName)
	require.Equal(t, "", p.Surname)
	require.False(t, p.IsNamed())
	require.Equal(t, "Player #71055", p.DisplayName())
	require.Equal(t, 40, p.OverallRating)
	require.Equal(t, 40, p.Potential)
	require.Equal(t, 16, p.Age)
	require.Nil(t, p.Height)
	require.Nil(t, p.Value)
	require.Equal(t, 1, res.Unnamed)
}

func TestNormalize_FloorClampOnly(t *testing.T) {
	identity := []tables.Row{{"playerid": 1}, {"playerid": 2}}
	attrs := []tables.Row{
		{"playerid": 1, "overall": 30, "potential": 12, "age": 14},
		{"playerid": 2, "overall": 104, "potential": 120, "age": 55},
	}
	res := Normalize(identity, attrs, resolverFor(tables.Dump{}))
	require.Len(t, res.Players, 2)

	low := res.Players[0]
	require.Equal(t, 40, low.OverallRating)
	require.Equal(t, 40, low.Potential)
	require.Equal(t, 16, low.Age)

	high := res.Players[1]
	require.Equal(t, 104, high.OverallRating, "ceiling is not clamped")
	require.Equal(t, 120, high.Potential)
	require.Equal(t, 55, high.Age)
}

func TestNormalize_OverallColumnPreference(t *testing.T) {
	identity := []tables.Row{{"playerid": 1}, {"playerid": 2}}
	attrs := []tables.Row{
		{"playerid": 1, "overall": 80, "overallrating": 70},
		{"playerid": 2, "overallrating": 70},
	}
	res := Normalize(identity, attrs, resolverFor(tables.Dump{}))
	require.Equal(t, 80, res.Players[0].OverallRating)
	require.Equal(t, 70, res.Players[1].OverallRating)
}

func TestNormalize_OrphansDroppedLastAttributeWins(t *testing.T) {
	identity := []tables.Row{{"playerid": 1}, {"playerid": nil}}
	attrs := []tables.Row{
		{"playerid": 1, "overall": 60},
		{"playerid": 1, "overall": 75},
		{"playerid": 2, "overall": 90},
	}
	res := Normalize(identity, attrs, resolverFor(tables.Dump{}))
	require.Len(t, res.Players, 1)
	require.Equal(t, 75, res.Players[0].OverallRating)
	require.Equal(t, 1, res.Orphaned)
	require.Equal(t, 1, res.SkippedNoID)
	require.Equal(t, 1, res.WithAttributes)
}

func TestNormalize_DuplicateIdentityRowsCollapse(t *testing.T) {
	identity := []tables.Row{
		{"playerid": 7},
		{"playerid": 8, "firstnameid": 1},
		{"playerid": 7, "firstnameid": 1},
	}
	attrs := []tables.Row{{"playerid": 7, "overall": 70}}
	dump := tables.Dump{"dcplayernames": {{"nameid": 1, "name": "Rui"}}}

	res := Normalize(identity, attrs, resolverFor(dump))
	require.Len(t, res.Players, 2)
	require.Equal(t, 7, res.Players[0].PlayerID, "first position is kept")
	require.Equal(t, "Rui", res.Players[0].FirstName, "last row wins")
	require.Equal(t, 70, res.Players[0].OverallRating)
	require.Equal(t, 8, res.Players[1].PlayerID)
	require.Equal(t, 1, res.Duplicates)
	require.Equal(t, 0, res.Unnamed)
	require.Equal(t, 1, res.WithAttributes)
	require.Equal(t, 3, res.IdentityRows)
}

func TestNormalize_EmptyIdentity(t *testing.T) {
	res := Normalize(nil, []tables.Row{{"playerid": 1}}, resolverFor(tables.Dump{}))
	require.True(t, res.NoIdentityData)
	require.NotNil(t, res.Players)
	require.Empty(t, res.Players)
}

func TestNormalize_Idempotent(t *testing.T) {
	dump := tables.Dump{
		"players": {
			{"playerid": 3, "firstnameid": 1, "lastnameid": 2, "nationality": 54},
			{"playerid": 1, "commonnameid": 3},
			{"playerid": 2},
		},
		"career_playergrowthuserseason": {
			{"playerid": 3, "overall": 81, "potential": 88, "age": 22, "preferredposition1": 25, "height": 181},
			{"playerid": 1, "overall": 77, "skillmoves": 4, "value": 1200000},
		},
		"dcplayernames": {{"nameid": 1, "name": "Ana"}, {"nameid": 2, "name": "Silva"}, {"nameid": 3, "name": "Aninha"}},
	}

	run := func() []byte {
		res := Normalize(dump.Rows("players"), dump.Rows("career_playergrowthuserseason"), resolverFor(dump))
		b, err := json.Marshal(res.Players)
		require.NoError(t, err)
		return b
	}
	first, second := run(), run()
	require.Equal(t, string(first), string(second))

	a := Normalize(dump.Rows("players"), dump.Rows("career_playergrowthuserseason"), resolverFor(dump))
	b := Normalize(dump.Rows("players"), dump.Rows("career_playergrowthuserseason"), resolverFor(dump))
	if diff := cmp.Diff(a.Players, b.Players); diff != "" {
		t.Fatalf("normalize not deterministic (-first +second):\n%s", diff)
	}

	require.Equal(t, []int{3, 1, 2}, []int{a.Players[0].PlayerID, a.Players[1].PlayerID, a.Players[2].PlayerID})
	require.Equal(t, "ST", a.Players[0].Position(""))
	require.Equal(t, "Ana Silva", a.Players[0].DisplayName())
	require.Equal(t, "Aninha", *a.Players[1].CommonName)
	require.Equal(t, "Player #1", a.Players[1].DisplayName(), "placeholder first name hides the common name")
}

func TestPlayerDisplay(t *testing.T) {
	common := "Neymar Jr"
	pos := "LW"
	p := Player{PlayerID: 9, FirstName: "Neymar", Surname: "da Silva", CommonName: &common, OverallRating: 89, Potential: 89, Age: 33, PreferredPosition1: &pos}
	require.Equal(t, "Neymar Jr", p.DisplayName())
	require.Equal(t, "Neymar Jr (OVR 89, LW)", p.DetailedDisplay())
	require.Equal(t, 0, p.Growth())

	p.FirstName = UnknownName(9)
	require.Equal(t, "Player #9", p.DisplayName())
	require.Equal(t, "Player #9 (OVR 89, LW)", p.DetailedDisplay())
}

func TestPositionLabel(t *testing.T) {
	require.Equal(t, "GK", PositionLabel(0))
	require.Equal(t, "ST", PositionLabel(25))
	require.Equal(t, "LW", PositionLabel(27))
	require.Equal(t, "99", PositionLabel(99))
}
