package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

func TestLoadMoods_Default(t *testing.T) {
	table, err := LoadMoods("")
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())

	ranges := table.Ranges()
	require.True(t, math.IsInf(ranges[0].Min, -1))
	require.True(t, math.IsInf(ranges[len(ranges)-1].Max, 1))

	tests := []struct {
		score float64
		want  string
	}{
		{score: -100, want: "sad"},
		{score: -4, want: "sad"},
		{score: -2.5, want: "blues"},
		{score: -1, want: "blues"},
		{score: 0, want: "chill"},
		{score: 1, want: "chill"},
		{score: 3, want: "happy"},
		{score: 42, want: "party"},
	}
	for _, tc := range tests {
		got, ok := table.Classify(tc.score)
		require.True(t, ok, "score %v", tc.score)
		require.Equal(t, tc.want, got, "score %v", tc.score)
	}
}

func TestParseMoods_KeepsDeclarationOrder(t *testing.T) {
	table, err := ParseMoods([]byte(`
moods:
  - {label: A, min: 0, max: 5}
  - {label: B, min: 3, max: 8}
`))
	require.NoError(t, err)

	got, ok := table.Classify(4)
	require.True(t, ok)
	require.Equal(t, "A", got)

	_, ok = table.Classify(100)
	require.False(t, ok)
}

func TestParseMoods_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "moods: []"},
		{name: "inverted", data: "moods:\n  - {label: x, min: 2, max: 1}"},
		{name: "not yaml", data: "moods: [:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMoods([]byte(tc.data))
			require.Error(t, err)
		})
	}

	_, err := ParseMoods([]byte("moods: []"))
	require.ErrorIs(t, err, domain.ErrInvalidMoodTable)
}

func TestLoadMoods_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moods.yaml")
	require.NoError(t, os.WriteFile(path, []byte("moods:\n  - {label: ambient, min: -.inf, max: .inf}\n"), 0o600))

	table, err := LoadMoods(path)
	require.NoError(t, err)
	got, ok := table.Classify(7)
	require.True(t, ok)
	require.Equal(t, "ambient", got)

	_, err = LoadMoods(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
