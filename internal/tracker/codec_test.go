package tracker

import (
	"testing"

	"github.com/Popalay/tennis-tracker/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSets(t *testing.T) {
	sets := map[int]scoring.Set{
		1: {Games: map[string]int{"A": 6, "B": 4}, Winner: "A"},
		2: {Games: map[string]int{"A": 3, "B": 6}, Winner: "B"},
	}

	data, err := encodeSets(sets)
	require.NoError(t, err)

	decoded, err := decodeSets(data)
	require.NoError(t, err)
	assert.Equal(t, sets, decoded)
}

func TestDecodeSets_LegacyWinnerArray(t *testing.T) {
	data := []byte(`{"1":{"games":{"A":6,"B":4},"winner":["A"]}}`)

	decoded, err := decodeSets(data)
	require.NoError(t, err)
	assert.Equal(t, "A", decoded[1].Winner)
	assert.Equal(t, 6, decoded[1].Games["A"])
}

func TestDecodeSets_LegacyWinnerTeamArray(t *testing.T) {
	data := []byte(`{"1":{"games":{"A-B":6,"C-D":4},"winner":["A","B"]}}`)

	decoded, err := decodeSets(data)
	require.NoError(t, err)
	assert.Equal(t, "A-B", decoded[1].Winner)
}

func TestDecodePoints(t *testing.T) {
	tests := []struct {
		name string
		data string
		want *scoring.PointsEarned
	}{
		{
			"canonical",
			`{"points":{"A":32,"B":7},"winner":"A","totalSets":2}`,
			&scoring.PointsEarned{Points: map[string]int{"A": 32, "B": 7}, Winner: "A", TotalSets: 2},
		},
		{
			"legacy winner array",
			`{"points":{"A":32,"B":7},"winner":["A"],"totalSets":2}`,
			&scoring.PointsEarned{Points: map[string]int{"A": 32, "B": 7}, Winner: "A", TotalSets: 2},
		},
		{
			"legacy winner team array",
			`{"points":{"A-B":32,"C-D":3},"winner":["A","B"],"totalSets":1}`,
			&scoring.PointsEarned{Points: map[string]int{"A-B": 32, "C-D": 3}, Winner: "A-B", TotalSets: 1},
		},
		{"no winner", `{"points":{"A":11,"B":11},"totalSets":2}`,
			&scoring.PointsEarned{Points: map[string]int{"A": 11, "B": 11}, TotalSets: 2}},
		{"null", `null`, nil},
		{"empty", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := decodePoints([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, points)
		})
	}
}

func TestDecodePoints_Invalid(t *testing.T) {
	_, err := decodePoints([]byte(`{"points":{},"winner":42}`))
	assert.Error(t, err)
}

func TestDecodeSets_MissingWinner(t *testing.T) {
	data := []byte(`{"1":{"games":{"A":5,"B":5}}}`)

	decoded, err := decodeSets(data)
	require.NoError(t, err)
	assert.Empty(t, decoded[1].Winner)
}

func TestDecodeSets_BadSetNumber(t *testing.T) {
	_, err := decodeSets([]byte(`{"first":{"games":{"A":6}}}`))
	assert.Error(t, err)
}

func TestDecodeTeams(t *testing.T) {
	tests := []struct {
		name string
		data string
		want [][]string
	}{
		{"canonical array", `[["A","B"],["C","D"]]`, [][]string{{"A", "B"}, {"C", "D"}}},
		{"index keyed map", `{"0":["A","B"],"1":["C","D"]}`, [][]string{{"A", "B"}, {"C", "D"}}},
		{"label keyed map", `{"team1":["A","B"],"team2":["C","D"]}`, [][]string{{"A", "B"}, {"C", "D"}}},
		{"null", `null`, nil},
		{"empty", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := decodeTeams([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, teams)
		})
	}
}

func TestDecodeTeams_Invalid(t *testing.T) {
	_, err := decodeTeams([]byte(`"not teams"`))
	assert.Error(t, err)
}
