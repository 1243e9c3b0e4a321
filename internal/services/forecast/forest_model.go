package forecast

import (
	"context"
	"fmt"

	"PatientPulse/internal/domain/models"
)

// ForestNode is one node of an exported regression tree. A node whose
// Left equals Right is a leaf and yields Value.
type ForestNode struct {
	Feature   int     `yaml:"feature" json:"feature"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Left      int     `yaml:"left" json:"left"`
	Right     int     `yaml:"right" json:"right"`
	Value     float64 `yaml:"value" json:"value"`
}

type ForestTree struct {
	Nodes []ForestNode `yaml:"nodes" json:"nodes"`
}

// ForestModel averages the outputs of its trees.
type ForestModel struct {
	trees []ForestTree
}

type forestFile struct {
	Features []string     `yaml:"features" json:"features"`
	Trees    []ForestTree `yaml:"trees" json:"trees"`
}

// NewForestModel checks the column order and the shape of every tree.
func NewForestModel(features []string, trees []ForestTree) (*ForestModel, error) {
	if len(features) != models.NumFeatures {
		return nil, fmt.Errorf("model expects %d features, got %d", models.NumFeatures, len(features))
	}
	for i, name := range features {
		if name != models.FeatureNames[i] {
			return nil, fmt.Errorf("feature %d: want %q, got %q", i, models.FeatureNames[i], name)
		}
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	for ti, t := range trees {
		if err := validateTree(t); err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return &ForestModel{trees: trees}, nil
}

func validateTree(t ForestTree) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Left == n.Right {
			continue
		}
		if n.Feature < 0 || n.Feature >= models.NumFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		// children must come after the parent so evaluation always terminates
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("node %d: bad child index %d", i, c)
			}
		}
	}
	return nil
}

func (m *ForestModel) Predict(_ context.Context, fv models.FeatureVector) (float64, error) {
	var sum float64
	for _, t := range m.trees {
		sum += evalTree(t, fv)
	}
	return sum / float64(len(m.trees)), nil
}

func evalTree(t ForestTree, fv models.FeatureVector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == n.Right {
			return n.Value
		}
		if fv[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Trees reports the ensemble size.
func (m *ForestModel) Trees() int { return len(m.trees) }
