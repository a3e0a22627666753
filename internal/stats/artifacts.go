package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"neurowire/internal/model"
)

const (
	ConfigFile    = "config.json"
	DumpFile      = "dump.json"
	SurvivorsFile = "survivors.csv"
)

// RunArtifacts is everything exported for one run.
type RunArtifacts struct {
	Run        model.RunRecord
	Generation model.GenerationRecord
	Survivors  []model.SurvivorPoint
}

// populationDump is the downloadable dump shape: the generation number and
// the population's links, nothing else.
type populationDump struct {
	GenerationNumber int                  `json:"generationNumber"`
	Generation       model.PopulationDump `json:"generation"`
}

// WriteRunArtifacts writes config, dump and survivor series into
// baseDir/<run id> and returns that directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, ConfigFile), artifacts.Run, "  "); err != nil {
		return "", err
	}
	if err := WriteDump(filepath.Join(runDir, DumpFile), artifacts.Generation); err != nil {
		return "", err
	}
	if err := WriteSurvivorSeries(filepath.Join(runDir, SurvivorsFile), artifacts.Survivors); err != nil {
		return "", err
	}
	return runDir, nil
}

// WriteDump writes a generation as tab-indented JSON.
func WriteDump(path string, generation model.GenerationRecord) error {
	dump := generation.Generation
	if dump == nil {
		dump = model.PopulationDump{}
	}
	return writeJSON(path, populationDump{GenerationNumber: generation.GenerationNumber, Generation: dump}, "\t")
}

func ReadDump(path string) (model.GenerationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GenerationRecord{}, err
	}
	var dump populationDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return model.GenerationRecord{}, fmt.Errorf("decode dump %s: %w", path, err)
	}
	if dump.Generation == nil {
		return model.GenerationRecord{}, fmt.Errorf("dump %s has no generation", path)
	}
	return model.GenerationRecord{GenerationNumber: dump.GenerationNumber, Generation: dump.Generation}, nil
}

func WriteSurvivorSeries(path string, history []model.SurvivorPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "survivors", "population", "ratio"}); err != nil {
		return err
	}
	for _, point := range history {
		if err := writer.Write([]string{
			strconv.Itoa(point.Generation),
			strconv.Itoa(point.Survivors),
			strconv.Itoa(point.Population),
			strconv.FormatFloat(Ratio(point), 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadSurvivorSeries(path string) ([]model.SurvivorPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.SurvivorPoint{}, nil
		}
		return nil, err
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("survivor series header must have at least 3 columns")
	}

	history := make([]model.SurvivorPoint, 0, 64)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		var values [3]int
		for i := range values {
			if values[i], err = strconv.Atoi(record[i]); err != nil {
				return nil, fmt.Errorf("survivor series column %s: %w", header[i], err)
			}
		}
		history = append(history, model.SurvivorPoint{Generation: values[0], Survivors: values[1], Population: values[2]})
	}
	return history, nil
}

func ReadRunConfig(path string) (model.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunRecord{}, err
	}
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func writeJSON(path string, value any, indent string) error {
	data, err := json.MarshalIndent(value, "", indent)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
