package terrain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Garsondee/Turn-Tactics/internal/game"
)

// ErrMalformed is returned when terrain CSV layers disagree or hold bad cells.
var ErrMalformed = errors.New("malformed terrain")

// Default layer file names used by SaveDir.
const (
	KindsFile   = "terrain_map.csv"
	HeightsFile = "height_map.csv"
)

// LoadFiles reads a grid from a terrain layer file and a height layer file.
func LoadFiles(kindsPath, heightsPath string, cellSize float64) (*Grid, error) {
	kf, err := os.Open(kindsPath)
	if err != nil {
		return nil, err
	}
	defer kf.Close()
	hf, err := os.Open(heightsPath)
	if err != nil {
		return nil, err
	}
	defer hf.Close()

	g, err := ReadCSV(kf, hf, cellSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kindsPath, err)
	}
	return g, nil
}

// SaveDir writes both layers into dir as KindsFile and HeightsFile,
// creating dir if needed.
func (g *Grid) SaveDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	kf, err := os.Create(filepath.Join(dir, KindsFile))
	if err != nil {
		return err
	}
	defer kf.Close()
	hf, err := os.Create(filepath.Join(dir, HeightsFile))
	if err != nil {
		return err
	}
	defer hf.Close()

	if err := g.WriteCSV(kf, hf); err != nil {
		return err
	}
	if err := kf.Close(); err != nil {
		return err
	}
	return hf.Close()
}

// WriteCSV writes the grid as two layers, one row per line: terrain kind codes
// to kinds and heights to heights.
func (g *Grid) WriteCSV(kinds, heights io.Writer) error {
	kw := csv.NewWriter(kinds)
	hw := csv.NewWriter(heights)
	krow := make([]string, g.Cols)
	hrow := make([]string, g.Cols)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			t := g.At(col, row)
			krow[col] = strconv.Itoa(int(t.Kind))
			hrow[col] = strconv.Itoa(t.Height)
		}
		if err := kw.Write(krow); err != nil {
			return fmt.Errorf("write terrain row %d: %w", row, err)
		}
		if err := hw.Write(hrow); err != nil {
			return fmt.Errorf("write height row %d: %w", row, err)
		}
	}
	kw.Flush()
	hw.Flush()
	if err := kw.Error(); err != nil {
		return err
	}
	return hw.Error()
}

// ReadCSV loads a grid from the two layers written by WriteCSV.
func ReadCSV(kinds, heights io.Reader, cellSize float64) (*Grid, error) {
	krows, err := readLayer(kinds)
	if err != nil {
		return nil, fmt.Errorf("read terrain layer: %w", err)
	}
	hrows, err := readLayer(heights)
	if err != nil {
		return nil, fmt.Errorf("read height layer: %w", err)
	}
	if len(krows) != len(hrows) {
		return nil, fmt.Errorf("%w: %d terrain rows, %d height rows", ErrMalformed, len(krows), len(hrows))
	}
	if len(krows) == 0 {
		return NewGrid(0, 0, cellSize), nil
	}

	cols := len(krows[0])
	g := NewGrid(cols, len(krows), cellSize)
	for row := range krows {
		if len(krows[row]) != cols || len(hrows[row]) != cols {
			return nil, fmt.Errorf("%w: row %d has %d/%d cells, want %d",
				ErrMalformed, row, len(krows[row]), len(hrows[row]), cols)
		}
		for col := 0; col < cols; col++ {
			k, err := strconv.Atoi(krows[row][col])
			if err != nil || k < 0 || k > math.MaxUint8 || !game.TerrainKind(k).Valid() {
				return nil, fmt.Errorf("%w: bad terrain code %q at (%d,%d)", ErrMalformed, krows[row][col], col, row)
			}
			h, err := strconv.Atoi(hrows[row][col])
			if err != nil {
				return nil, fmt.Errorf("%w: bad height %q at (%d,%d)", ErrMalformed, hrows[row][col], col, row)
			}
			g.Set(col, row, game.TerrainKind(k), h)
		}
	}
	return g, nil
}

// readLayer reads every row, leaving row-length checks to the caller.
func readLayer(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}
