package histogram

import (
	"encoding/json"
	"fmt"
)

// Artifact is the wire form of an observation table: the shared bin grid plus
// one normalized histogram per object.
type Artifact struct {
	Bins BinGrid     `json:"bins"`
	PDFs [][]float64 `json:"pdfs"`
}

func ParseArtifact(data []byte) (*Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse observation artifact: %w", err)
	}
	if len(artifact.PDFs) == 0 {
		return nil, fmt.Errorf("observation artifact has no pdfs")
	}
	if artifact.Bins.N != 0 && artifact.Bins.N != len(artifact.PDFs[0]) {
		return nil, fmt.Errorf(
			"observation artifact declares %d bins but rows have %d",
			artifact.Bins.N,
			len(artifact.PDFs[0]),
		)
	}
	return &artifact, nil
}

func (a *Artifact) ObservationSet() (*ObservationSet, error) {
	return NewObservationSet(a.PDFs)
}
