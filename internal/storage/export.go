package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/overshoot/internal/dynamo"
)

type ExportData struct {
	Name        string               `json:"name"`
	FrameMillis float64              `json:"frame_millis"`
	Frames      int                  `json:"frames"`
	Times       []float64            `json:"times"`
	Series      map[string][]float64 `json:"series"`
	Metrics     map[string]float64   `json:"metrics"`
}

// ExportJSON writes the result as one series per oscillator id.
func ExportJSON(w io.Writer, name string, frameMillis float64, result *dynamo.Result) error {
	data := ExportData{
		Name:        name,
		FrameMillis: frameMillis,
		Frames:      result.Frames,
		Times:       result.Times,
		Series:      make(map[string][]float64, len(result.IDs)),
		Metrics:     result.Metrics,
	}
	for _, id := range result.IDs {
		data.Series[id] = result.Column(id)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
