package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"neurowire/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion stamps records written by this build.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeGeneration(generation model.GenerationRecord) ([]byte, error) {
	return json.Marshal(generation)
}

func DecodeGeneration(data []byte) (model.GenerationRecord, error) {
	var generation model.GenerationRecord
	if err := json.Unmarshal(data, &generation); err != nil {
		return model.GenerationRecord{}, err
	}
	if err := checkVersion(generation.VersionedRecord); err != nil {
		return model.GenerationRecord{}, err
	}
	return generation, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
