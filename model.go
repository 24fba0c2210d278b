package clustergo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/clustergo/codec"
	"github.com/hupe1980/clustergo/distance"
)

// modelMagic identifies a clustergo model snapshot stream.
var modelMagic = [4]byte{'C', 'L', 'G', 'M'}

const modelVersion = 1

// Model is the persistable view of a fitted clustering: everything needed to
// assign new observations, detached from the training data.
type Model struct {
	K             int             `json:"k"`
	Metric        distance.Metric `json:"metric"`
	Centers       [][]float64     `json:"centers"`
	MedoidIndexes []int           `json:"medoid_indexes,omitempty"`
	Cost          float64         `json:"cost"`
	Iterations    int             `json:"iterations"`
}

// NewModel builds a Model from a fit result. The metric records which
// built-in distance the engine ran with; models fitted with a custom
// distance function must be queried via PredictWith.
func NewModel(metric distance.Metric, res *Result) (*Model, error) {
	if res == nil || len(res.Centers) == 0 {
		return nil, ErrNotFitted
	}

	return &Model{
		K:             len(res.Centers),
		Metric:        metric,
		Centers:       res.Centers,
		MedoidIndexes: res.MedoidIndexes,
		Cost:          res.Cost,
		Iterations:    res.Iterations,
	}, nil
}

// Predict assigns each point to its nearest center under the model's
// recorded metric. Ties resolve to the lowest center index.
func (m *Model) Predict(points [][]float64) ([]int, error) {
	fn, err := distance.Provider(m.Metric)
	if err != nil {
		return nil, err
	}
	return m.PredictWith(fn, points)
}

// PredictWith assigns each point to its nearest center under fn.
func (m *Model) PredictWith(fn distance.Func, points [][]float64) ([]int, error) {
	if len(m.Centers) == 0 {
		return nil, ErrNotFitted
	}

	dim := len(m.Centers[0])
	for _, p := range points {
		if len(p) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(p)}
		}
	}

	mat := distance.NewMatrix(points, m.Centers, fn)
	out := make([]int, len(points))
	for i := range points {
		out[i], _ = mat.NearestInRow(i)
	}
	return out, nil
}

// Predict assigns each point to the nearest center of a fitted result using
// the engine's own distance function.
func (e *Engine) Predict(res *Result, points [][]float64) (_ []int, err error) {
	start := time.Now()
	defer func() {
		e.opts.metrics.RecordPredict(len(points), time.Since(start), err)
	}()

	if res == nil || len(res.Centers) == 0 {
		return nil, ErrNotFitted
	}

	m := &Model{Centers: res.Centers}
	return m.PredictWith(e.dist, points)
}

// SaveModel writes a self-describing snapshot of the model: a fixed header
// carrying the codec name, followed by the zstd-compressed payload. Bytes
// written by one codec only decode with the same codec, which is why the
// name travels in the header.
func SaveModel(w io.Writer, m *Model, c codec.Codec) error {
	if m == nil || len(m.Centers) == 0 {
		return ErrNotFitted
	}
	if c == nil {
		c = codec.Default
	}

	payload, err := c.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	name := c.Name()
	if len(name) > 255 {
		return fmt.Errorf("codec name too long: %q", name)
	}

	if _, err := w.Write(modelMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(modelVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create compressor: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// LoadModel reads a snapshot written by SaveModel, selecting the codec
// recorded in the header.
func LoadModel(r io.Reader) (*Model, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read model header: %w", err)
	}
	if [4]byte(header[:4]) != modelMagic {
		return nil, errors.New("not a clustergo model snapshot")
	}
	if header[4] != modelVersion {
		return nil, fmt.Errorf("unsupported model version %d", header[4])
	}

	nameBuf := make([]byte, header[5])
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("read codec name: %w", err)
	}
	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", nameBuf)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create decompressor: %w", err)
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}

	var m Model
	if err := c.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	return &m, nil
}
