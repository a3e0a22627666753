package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// LinkRecord is the dump form of one link: endpoint names and strength only.
// Field names are part of the export format.
type LinkRecord struct {
	Sensor       string  `json:"sensor"`
	Action       string  `json:"action"`
	LinkStrength float64 `json:"linkStrength"`
}

// PopulationDump lists every agent's links, agents in population order and
// links in each agent's evaluation order.
type PopulationDump [][]LinkRecord

// GenerationRecord is a persisted population snapshot.
type GenerationRecord struct {
	VersionedRecord
	RunID            string         `json:"run_id,omitempty"`
	GenerationNumber int            `json:"generationNumber"`
	Survivors        int            `json:"survivors"`
	Generation       PopulationDump `json:"generation"`
}

// RunRecord describes one evolution run.
type RunRecord struct {
	VersionedRecord
	ID                 string  `json:"id"`
	CreatedAtUTC       string  `json:"created_at_utc"`
	ContinuedFrom      string  `json:"continued_from,omitempty"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	PopulationSize     int     `json:"population_size"`
	TurnsPerGeneration int     `json:"turns_per_generation"`
	Generations        int     `json:"generations"`
	NeuronCount        int     `json:"neuron_count"`
	MaxLinks           int     `json:"max_links"`
	MutationRate       float64 `json:"mutation_rate"`
	Predicate          string  `json:"predicate"`
	Extinction         string  `json:"extinction"`
	Seed               int64   `json:"seed"`
	Workers            int     `json:"workers"`
	FinalGeneration    int     `json:"final_generation"`
	FinalSurvivors     int     `json:"final_survivors"`
}

// SurvivorPoint is one generation boundary of a run's survivor history.
type SurvivorPoint struct {
	Generation int `json:"generation"`
	Survivors  int `json:"survivors"`
	Population int `json:"population"`
}
