package datastructure

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"gopkg.in/yaml.v3"
)

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type LevelNode struct {
	Id       int64    `json:"Id" yaml:"Id"`
	Position Position `json:"Position" yaml:"Position"`
}

type LevelEdge struct {
	FromNodeId int64   `json:"FromNodeId" yaml:"FromNodeId"`
	ToNodeId   int64   `json:"ToNodeId" yaml:"ToNodeId"`
	Cost       float64 `json:"Cost" yaml:"Cost"`
	IsCut      bool    `json:"IsCut" yaml:"IsCut"`
	OptimalCut bool    `json:"OptimalCut" yaml:"OptimalCut"`
	IsSpecial  bool    `json:"IsSpecial,omitempty" yaml:"IsSpecial,omitempty"`
}

// Level is one puzzle of a level file: a graph with edge costs, the optimal cut and its cost.
type Level struct {
	Name        string      `json:"Name,omitempty" yaml:"Name,omitempty"`
	Nodes       []LevelNode `json:"Nodes" yaml:"Nodes"`
	Edges       []LevelEdge `json:"Edges" yaml:"Edges"`
	OptimalCost float64     `json:"OptimalCost" yaml:"OptimalCost"`
	Difficulty  float64     `json:"Difficulty,omitempty" yaml:"Difficulty,omitempty"`
}

type LevelFile struct {
	Graphs []Level `json:"Graphs" yaml:"Graphs"`
}

// Build turns the level into a validated graph and its cost function. edge i of the graph is
// level.Edges[i].
func (l *Level) Build() (*Graph, *CostFunction, error) {
	nodeIDs := make([]int64, len(l.Nodes))
	for i, n := range l.Nodes {
		nodeIDs[i] = n.Id
	}
	specs := make([]EdgeSpec, len(l.Edges))
	for i, e := range l.Edges {
		specs[i] = NewEdgeSpec(e.FromNodeId, e.ToNodeId, e.Cost)
	}
	return NewGraph(nodeIDs, specs)
}

// CutLabeling returns the player's cut (IsCut) as an edge labeling.
func (l *Level) CutLabeling() []bool {
	cut := make([]bool, len(l.Edges))
	for i, e := range l.Edges {
		cut[i] = e.IsCut
	}
	return cut
}

// SetOptimal stores a solved labeling (indexed like l.Edges) and its cost in the level.
func (l *Level) SetOptimal(labeling []bool, cost float64) {
	for i := range l.Edges {
		l.Edges[i].OptimalCut = labeling[i]
	}
	l.OptimalCost = cost
}

type levelFormat uint8

const (
	formatJSON levelFormat = iota
	formatYAML
)

// detectFormat reads the format from the file name: name.json, name.yaml|yml, each optionally
// followed by .bz2.
func detectFormat(filename string) (levelFormat, bool, error) {
	name := strings.ToLower(filename)
	compressed := strings.HasSuffix(name, ".bz2")
	name = strings.TrimSuffix(name, ".bz2")

	switch filepath.Ext(name) {
	case ".json":
		return formatJSON, compressed, nil
	case ".yaml", ".yml":
		return formatYAML, compressed, nil
	default:
		return formatJSON, compressed, util.WrapErrorf(nil, util.ErrBadParamInput,
			"unsupported level file %q: want .json or .yaml, optionally .bz2", filename)
	}
}

func ReadLevels(filename string) (*LevelFile, error) {
	format, compressed, err := detectFormat(filename)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if compressed {
		bz, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
		if err != nil {
			return nil, err
		}
		defer bz.Close()
		r = bz
	}

	return DecodeLevels(r, format == formatYAML)
}

func DecodeLevels(r io.Reader, isYAML bool) (*LevelFile, error) {
	levels := &LevelFile{}
	var err error
	if isYAML {
		err = yaml.NewDecoder(r).Decode(levels)
	} else {
		err = json.NewDecoder(r).Decode(levels)
	}
	if err != nil {
		return nil, fmt.Errorf("decode level file: %w", err)
	}
	return levels, nil
}

func WriteLevels(filename string, levels *LevelFile) error {
	format, compressed, err := detectFormat(filename)
	if err != nil {
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var bz *bzip2.Writer
	if compressed {
		bz, err = bzip2.NewWriter(f, &bzip2.WriterConfig{})
		if err != nil {
			return err
		}
		w = bz
	}

	bw := bufio.NewWriter(w)
	if err := EncodeLevels(bw, levels, format == formatYAML); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if bz != nil {
		return bz.Close()
	}
	return nil
}

func EncodeLevels(w io.Writer, levels *LevelFile, isYAML bool) error {
	if isYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(levels); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(levels)
}
