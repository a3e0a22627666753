package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"neurowire/internal/model"
)

func TestDecodeGenerationFixture(t *testing.T) {
	generation, err := DecodeGeneration(readFixture(t, "generation_v1.json"))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if generation.RunID != "run-fixture-1" || generation.GenerationNumber != 7 || generation.Survivors != 412 {
		t.Fatalf("unexpected generation header: %+v", generation)
	}
	if len(generation.Generation) != 2 || len(generation.Generation[1]) != 0 {
		t.Fatalf("unexpected population shape: %+v", generation.Generation)
	}
	want := model.LinkRecord{Sensor: "N0", Action: "FD", LinkStrength: -0.5}
	if generation.Generation[0][1] != want {
		t.Fatalf("unexpected link: %+v", generation.Generation[0][1])
	}
}

func TestDecodeRunFixture(t *testing.T) {
	run, err := DecodeRun(readFixture(t, "run_v1.json"))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if run.ID != "run-fixture-1" || run.Seed != 42 || run.Predicate != "right-half" || run.MutationRate != 0.01 {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	_, err := DecodeGeneration(readFixture(t, "generation_v0.json"))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
	payload, err := EncodeRun(model.RunRecord{ID: "r", VersionedRecord: model.VersionedRecord{SchemaVersion: 1, CodecVersion: 9}})
	if err != nil {
		t.Fatalf("encode run: %v", err)
	}
	if _, err := DecodeRun(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestGenerationCodecKeepsStrengthBits(t *testing.T) {
	in := model.GenerationRecord{
		VersionedRecord:  CurrentVersion(),
		RunID:            "run-1",
		GenerationNumber: 3,
		Generation: model.PopulationDump{{
			{Sensor: "RN", Action: "N3", LinkStrength: 0.1 + 0.2},
			{Sensor: "N3", Action: "LT", LinkStrength: -3.9999999999999996},
		}},
	}
	payload, err := EncodeGeneration(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeGeneration(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(fixturePath(name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}
