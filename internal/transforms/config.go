package transforms

import (
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"
)

// Builder constructs one transform from its YAML configuration node.
type Builder func(node *yaml.Node) (Transform, error)

// Builders maps a transform type name to its builder. The table is owned by
// the caller: there is no global registry, and callers extend the table by
// adding entries before building.
type Builders map[string]Builder

// stageType is the discriminator every pipeline stage must carry.
type stageType struct {
	Type string `yaml:"type"`
}

// Build constructs a pipeline from a YAML sequence of stage mappings, each
// with a "type" key naming a builder plus that builder's own options:
//
//	- type: pad
//	  size_divisor: 32
//	- type: mosaic
//	  pad_val: 114
//	  pipeline:
//	    - type: pad
//	      size_divisor: 32
func (b Builders) Build(node *yaml.Node) (Transform, error) {
	// Unwrap a document node to its content.
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) != 1 {
			return nil, fmt.Errorf("pipeline config: expected a single document")
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("pipeline config: expected a sequence of stages, got %s", kindName(node.Kind))
	}

	stages := make([]Transform, 0, len(node.Content))
	for i, stageNode := range node.Content {
		var st stageType
		if err := stageNode.Decode(&st); err != nil {
			return nil, fmt.Errorf("pipeline stage %d: %w", i, err)
		}
		if st.Type == "" {
			return nil, fmt.Errorf("pipeline stage %d: missing type", i)
		}
		builder, ok := b[st.Type]
		if !ok {
			return nil, fmt.Errorf("pipeline stage %d: unknown transform type %q", i, st.Type)
		}
		stage, err := builder(stageNode)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d (%s): %w", i, st.Type, err)
		}
		stages = append(stages, stage)
	}
	return NewCompose(stages...), nil
}

// BuildPipeline parses YAML bytes and builds the pipeline they describe.
func BuildPipeline(builders Builders, data []byte) (Transform, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	return builders.Build(&root)
}

// mosaicStageConfig is the YAML shape of a mosaic stage.
type mosaicStageConfig struct {
	PadVal   float64   `yaml:"pad_val"`
	Seed     int64     `yaml:"seed"`
	Pipeline yaml.Node `yaml:"pipeline"`
}

// DefaultBuilders returns the builder table for the transforms in this
// package. The dataset feeds mosaic stages; pipelines without a mosaic may
// pass nil.
func DefaultBuilders(dataset Dataset) Builders {
	builders := Builders{}

	builders["pad"] = func(node *yaml.Node) (Transform, error) {
		var config PadConfig
		if err := node.Decode(&config); err != nil {
			return nil, err
		}
		return NewPad(config)
	}

	builders["mosaic"] = func(node *yaml.Node) (Transform, error) {
		var config mosaicStageConfig
		if err := node.Decode(&config); err != nil {
			return nil, err
		}
		if config.Pipeline.Kind == 0 {
			return nil, fmt.Errorf("mosaic requires a per-image pipeline")
		}
		pipeline, err := builders.Build(&config.Pipeline)
		if err != nil {
			return nil, err
		}

		mosaicConfig := MosaicConfig{PadVal: config.PadVal}
		if config.Seed != 0 {
			mosaicConfig.Rand = rand.New(rand.NewSource(config.Seed))
		}
		return NewMosaic(dataset, pipeline, mosaicConfig)
	}

	return builders
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
