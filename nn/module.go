// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/detkit-ml/detkit/internal/serialization"
	"github.com/detkit-ml/detkit/internal/tensor"
)

// Header describes the contents of a .dkpt file.
type Header = serialization.Header

// CheckpointMeta carries the training position stored in a checkpoint.
type CheckpointMeta = serialization.CheckpointMeta

// Save saves a model's state dictionary to a .dkpt file.
//
// Example:
//
//	err := nn.Save(model, "model.dkpt", "Sequential", nil)
func Save(model Model, path, modelType string, metadata map[string]string) error {
	writer, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = writer.Close()
	}()

	return writer.WriteStateDict(model.StateDict(), modelType, metadata)
}

// SaveCheckpoint saves a model's state dictionary together with the current
// training position, so a resumed run continues its schedules where it
// stopped.
func SaveCheckpoint(model Model, path, modelType string, metadata map[string]string, meta CheckpointMeta) error {
	writer, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = writer.Close()
	}()

	header := serialization.Header{
		ModelType:      modelType,
		Metadata:       metadata,
		CheckpointMeta: &meta,
	}
	return writer.WriteStateDictWithHeader(model.StateDict(), header)
}

// SaveState writes a raw state dictionary to a .dkpt file, with the
// training position recorded when meta is non-nil. Use it when a
// checkpoint must carry more than the model's own parameters, such as EMA
// shadow buffers merged in under their buffer names.
func SaveState(stateDict map[string]*tensor.RawTensor, path, modelType string, meta *CheckpointMeta) error {
	writer, err := serialization.NewWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = writer.Close()
	}()

	header := serialization.Header{
		ModelType:      modelType,
		CheckpointMeta: meta,
	}
	return writer.WriteStateDictWithHeader(stateDict, header)
}

// LoadState reads the full state dictionary of a .dkpt file without
// loading it into a model, leaving the caller to route entries, such as
// splitting EMA shadow buffers from model parameters.
func LoadState(path string) (map[string]*tensor.RawTensor, Header, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() {
		_ = reader.Close()
	}()

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return nil, Header{}, err
	}
	return stateDict, reader.Header(), nil
}

// Load reads a state dictionary from a .dkpt file into the model.
// Returns the file header, which carries checkpoint metadata when present.
//
// Example:
//
//	header, err := nn.Load("model.dkpt", model)
func Load(path string, model Model) (Header, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return Header{}, err
	}
	defer func() {
		_ = reader.Close()
	}()

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return Header{}, err
	}

	if err := model.LoadStateDict(stateDict); err != nil {
		return Header{}, err
	}

	return reader.Header(), nil
}
