package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/overshoot/internal/config"
	"github.com/san-kum/overshoot/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// Store keeps one directory per run holding metadata.json and samples.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Timestamp   time.Time               `json:"timestamp"`
	FrameMillis float64                 `json:"frame_millis"`
	Frames      int                     `json:"frames"`
	IDs         []string                `json:"ids"`
	Oscillators []config.OscillatorSpec `json:"oscillators"`
	Metrics     map[string]float64      `json:"metrics"`
}

// Save writes a run and returns its id, "<name>_<uuidv7>".
func (s *Store) Save(name string, cfg *config.Config, result *dynamo.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", name, uuid.Must(uuid.NewV7()))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   time.Now(),
		FrameMillis: cfg.FrameMillis,
		Frames:      result.Frames,
		IDs:         result.IDs,
		Oscillators: cfg.Oscillators,
		Metrics:     result.Metrics,
	}

	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err == nil {
		err = writeFile(filepath.Join(runDir, samplesFile), func(w io.Writer) error {
			return ExportCSV(w, result)
		})
	}
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

// writeFile creates path, fills it with write and reports the first error
// from writing or closing.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a run's samples back into a Result. Metrics come from
// the run metadata.
func (s *Store) LoadSamples(runID string) (*dynamo.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	res, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if meta, err := s.Load(runID); err == nil {
		res.Metrics = meta.Metrics
	}
	return res, nil
}

// ExportCSV writes a header of "time" followed by one column per
// oscillator id, then one row per frame.
func ExportCSV(w io.Writer, result *dynamo.Result) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, result.IDs...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(t, 'f', 6, 64))
		for j := range result.IDs {
			v := 0.0
			if i < len(result.Values) && j < len(result.Values[i]) {
				v = result.Values[i][j]
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the ExportCSV format. Short rows are padded with zeros.
func ReadCSV(r io.Reader) (*dynamo.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != "time" {
		return nil, fmt.Errorf("samples: missing time header")
	}

	ids := records[0][1:]
	res := &dynamo.Result{
		IDs:     append([]string(nil), ids...),
		Times:   make([]float64, 0, len(records)-1),
		Values:  make([][]float64, 0, len(records)-1),
		Metrics: map[string]float64{},
	}
	for n, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("samples line %d: %w", n+2, err)
		}
		row := make([]float64, len(ids))
		for j := 1; j < len(record) && j <= len(ids); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("samples line %d: %w", n+2, err)
			}
			row[j-1] = v
		}
		res.Times = append(res.Times, t)
		res.Values = append(res.Values, row)
	}
	res.Frames = len(res.Times)
	return res, nil
}
