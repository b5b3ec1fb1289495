package datastructure

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/Multicutx/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLevels() *LevelFile {
	return &LevelFile{
		Graphs: []Level{
			{
				Name: "triangle",
				Nodes: []LevelNode{
					{Id: 0, Position: Position{X: 0, Y: 0}},
					{Id: 1, Position: Position{X: 1, Y: 0}},
					{Id: 2, Position: Position{X: 0, Y: 1}},
				},
				Edges: []LevelEdge{
					{FromNodeId: 0, ToNodeId: 1, Cost: 5},
					{FromNodeId: 1, ToNodeId: 2, Cost: -2, IsCut: true},
					{FromNodeId: 0, ToNodeId: 2, Cost: -1, IsCut: true},
				},
				OptimalCost: -3,
			},
		},
	}
}

func TestLevelFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	testCases := []string{"levels.json", "levels.yaml", "levels.json.bz2", "levels.yml.bz2"}

	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			want := sampleLevels()
			require.NoError(t, WriteLevels(path, want))

			got, err := ReadLevels(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadLevelsJSONFieldNames(t *testing.T) {
	raw := `{"Graphs":[{"Nodes":[{"Id":4,"Position":{"x":1.5,"y":2}},{"Id":9,"Position":{"x":0,"y":0}}],
		"Edges":[{"FromNodeId":9,"ToNodeId":4,"Cost":-3.5,"IsCut":true,"OptimalCut":true}],"OptimalCost":-3.5}]}`

	levels, err := DecodeLevels(bytes.NewBufferString(raw), false)
	require.NoError(t, err)
	require.Len(t, levels.Graphs, 1)

	level := levels.Graphs[0]
	assert.Equal(t, 1.5, level.Nodes[0].Position.X)
	assert.Equal(t, int64(9), level.Edges[0].FromNodeId)
	assert.True(t, level.Edges[0].OptimalCut)
	assert.Equal(t, []bool{true}, level.CutLabeling())

	g, cf, err := level.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumberOfVertices())
	assert.Equal(t, -3.5, cf.GetCost(0))
}

func TestLevelSetOptimal(t *testing.T) {
	level := sampleLevels().Graphs[0]
	level.SetOptimal([]bool{false, true, true}, -3)

	assert.False(t, level.Edges[0].OptimalCut)
	assert.True(t, level.Edges[1].OptimalCut)
	assert.True(t, level.Edges[2].OptimalCut)
	assert.Equal(t, -3.0, level.OptimalCost)
}

func TestLevelFileErrors(t *testing.T) {
	dir := t.TempDir()

	err := WriteLevels(filepath.Join(dir, "levels.txt"), sampleLevels())
	assert.True(t, errors.Is(err, util.ErrBadParamInput))

	_, err = ReadLevels(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ReadLevels(bad)
	assert.Error(t, err)

	level := Level{
		Nodes: []LevelNode{{Id: 1}},
		Edges: []LevelEdge{{FromNodeId: 1, ToNodeId: 2, Cost: 1}},
	}
	_, _, err = level.Build()
	assert.True(t, errors.Is(err, ErrInvalidGraph))
}
