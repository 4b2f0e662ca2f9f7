package tables

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_SingleObject(t *testing.T) {
	d, err := Decode(strings.NewReader(`{"players":[{"playerid":1,"firstnameid":10}],"dcplayernames":[]}`), nil)
	require.NoError(t, err)
	require.Len(t, d.Rows("players"), 1)
	require.False(t, d.Has("dcplayernames"))

	id, ok := d.Rows("players")[0].Int("playerid")
	require.True(t, ok)
	require.Equal(t, 1, id)
}

func TestDecode_ListIsShallowMergedLaterWins(t *testing.T) {
	input := `[
		{"players":[{"playerid":1}],"dcplayernames":[{"nameid":1,"name":"A"}]},
		{"players":[{"playerid":2},{"playerid":3}]}
	]`
	d, err := Decode(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, d.Rows("players"), 2)
	require.Len(t, d.Rows("dcplayernames"), 1)
}

func TestDecode_SkipsNonTableEntries(t *testing.T) {
	d, err := Decode(strings.NewReader(`{"players":[{"playerid":1}],"meta":{"version":1},"note":"x","ids":[1,2]}`), nil)
	require.NoError(t, err)
	require.Len(t, d.Rows("players"), 1)
	require.NotContains(t, d, "meta")
	require.NotContains(t, d, "note")
	require.NotContains(t, d, "ids")

	input := `[
		{"players":[{"playerid":1}]},
		{"info":"db2","dcplayernames":[{"nameid":10,"name":"Diego"}]},
		"stray",
		null
	]`
	d, err = Decode(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, d.Rows("players"), 1)
	require.Len(t, d.Rows("dcplayernames"), 1)
	require.NotContains(t, d, "info")
}

func TestDecode_LaterNonTableOverwritesEarlierTable(t *testing.T) {
	d, err := Decode(strings.NewReader(`[{"players":[{"playerid":1}]},{"players":{"count":1}}]`), nil)
	require.NoError(t, err)
	require.False(t, d.Has("players"))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("   "), nil)
	require.Error(t, err)

	_, err = Decode(strings.NewReader("{not json"), nil)
	require.Error(t, err)
}

func TestDecode_LargeIDsKeepPrecision(t *testing.T) {
	d, err := Decode(strings.NewReader(`{"players":[{"playerid":9007199254740993}]}`), nil)
	require.NoError(t, err)
	id, ok := d.Rows("players")[0].Int("playerid")
	require.True(t, ok)
	require.Equal(t, 9007199254740993, id)
}

func TestExtractInt(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want int
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"int", 7, 7, true},
		{"int64", int64(8), 8, true},
		{"whole float", float64(81), 81, true},
		{"fractional float", 81.5, 0, false},
		{"json number", json.Number("42"), 42, true},
		{"numeric string", " 12 ", 12, true},
		{"text", "abc", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractInt(tt.val)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRowAccessors(t *testing.T) {
	r := Row{"name": "Diego", "pos": json.Number("25"), "missing": nil}

	require.Equal(t, "Diego", r.StringOr("name", "x"))
	require.Equal(t, "25", r.StringOr("pos", "x"))
	require.Equal(t, "x", r.StringOr("missing", "x"))
	require.Nil(t, r.IntPtr("missing"))
	require.Equal(t, 25, *r.IntPtr("pos"))
}
