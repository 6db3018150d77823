// Package source reads the yearly accident extracts. The files are
// Latin-1 encoded CSV with a header row; columns are matched by name.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/charmap"

	"github.com/David-Botos/saferoads/pkg/model"
)

// File naming patterns. DefaultPattern follows the national extracts
// (2012_France_vehicules.csv) rather than the english table names of
// CategoryPattern (2012_vehicles.csv); set FILE_PATTERN to switch.
const (
	DefaultPattern  = "{year}_France_{source}.csv"
	CategoryPattern = "{year}_{category}.csv"
)

// DirSource finds the extracts of a year in one directory. Pattern may use
// {year}, {category} (english table name) and {source} (french file stem).
type DirSource struct {
	Dir     string
	Pattern string
}

// NewDirSource creates a DirSource, using DefaultPattern when pattern is empty
func NewDirSource(dir, pattern string) *DirSource {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &DirSource{Dir: dir, Pattern: pattern}
}

// Path returns the file holding category for year
func (s *DirSource) Path(category model.Category, year int) string {
	name := strings.NewReplacer(
		"{year}", strconv.Itoa(year),
		"{category}", string(category),
		"{source}", category.SourceName(),
	).Replace(s.Pattern)
	return filepath.Join(s.Dir, name)
}

// Characteristics reads the characteristics extract of year
func (s *DirSource) Characteristics(year int) ([]model.RawCharacteristics, error) {
	return readFile[model.RawCharacteristics](s.Path(model.CategoryCharacteristics, year))
}

// Locations reads the locations extract of year
func (s *DirSource) Locations(year int) ([]model.RawLocation, error) {
	return readFile[model.RawLocation](s.Path(model.CategoryLocations, year))
}

// Vehicles reads the vehicles extract of year
func (s *DirSource) Vehicles(year int) ([]model.RawVehicle, error) {
	return readFile[model.RawVehicle](s.Path(model.CategoryVehicles, year))
}

// Users reads the users extract of year
func (s *DirSource) Users(year int) ([]model.RawUser, error) {
	return readFile[model.RawUser](s.Path(model.CategoryUsers, year))
}

func readFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no file %s", model.ErrYearNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Decode[T](f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return rows, nil
}

// Decode reads Latin-1 CSV from r into one T per data row. Every field of
// T tagged with a csv name must have a header column.
func Decode[T any](r io.Reader) ([]T, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: missing header row")
		}
		return nil, err
	}
	dec.DisallowMissingColumns = true

	rows := make([]T, 0)
	for {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
