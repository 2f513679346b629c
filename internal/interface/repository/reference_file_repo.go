package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pnr-itinerary-service/internal/domain/entity"
	"pnr-itinerary-service/internal/domain/repository"
)

// Reference file names inside the data directory
const (
	AirportFile  = "airportDatabase.json"
	AirlineFile  = "airlines.json"
	AircraftFile = "aircraftTypes.json"
)

// airportJSON is one value of airportDatabase.json, keyed by IATA code
type airportJSON struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// FileReferenceRepository serves reference data from JSON files. A missing
// file reads as an empty table; a malformed one is an error.
type FileReferenceRepository struct {
	dir string
}

// NewFileReferenceRepository creates a repository over dir
func NewFileReferenceRepository(dir string) *FileReferenceRepository {
	return &FileReferenceRepository{dir: dir}
}

// Airports returns the repository as an AirportRepository
func (r *FileReferenceRepository) Airports() repository.AirportRepository { return fileAirports{r} }

// Airlines returns the repository as an AirlineRepository
func (r *FileReferenceRepository) Airlines() repository.AirlineRepository { return fileAirlines{r} }

// AircraftTypes returns the repository as an AircraftTypeRepository
func (r *FileReferenceRepository) AircraftTypes() repository.AircraftTypeRepository {
	return fileAircraft{r}
}

func (r *FileReferenceRepository) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (r *FileReferenceRepository) codeNames(name string) (map[string]string, error) {
	m := make(map[string]string)
	if err := r.readJSON(name, &m); err != nil {
		return nil, err
	}
	return m, nil
}

type fileAirports struct{ r *FileReferenceRepository }

func (f fileAirports) ListAll(ctx context.Context) ([]*entity.Airport, error) {
	raw := make(map[string]airportJSON)
	if err := f.r.readJSON(AirportFile, &raw); err != nil {
		return nil, err
	}

	airports := make([]*entity.Airport, 0, len(raw))
	for _, code := range sortedKeys(raw) {
		a := raw[code]
		airports = append(airports, &entity.Airport{
			AirportCode: strings.ToUpper(code),
			AirportName: a.Name,
			CityName:    a.City,
			CountryName: a.Country,
			TzName:      a.Timezone,
		})
	}
	return airports, nil
}

func (f fileAirports) GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error) {
	airports, err := f.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range airports {
		if a.AirportCode == code {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fileAirlines struct{ r *FileReferenceRepository }

func (f fileAirlines) ListAll(ctx context.Context) ([]*entity.Airline, error) {
	m, err := f.r.codeNames(AirlineFile)
	if err != nil {
		return nil, err
	}
	airlines := make([]*entity.Airline, 0, len(m))
	for _, code := range sortedKeys(m) {
		airlines = append(airlines, &entity.Airline{Code: strings.ToUpper(code), Name: m[code]})
	}
	return airlines, nil
}

func (f fileAirlines) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	m, err := f.r.codeNames(AirlineFile)
	if err != nil {
		return nil, err
	}
	name, ok := m[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entity.Airline{Code: code, Name: name}, nil
}

type fileAircraft struct{ r *FileReferenceRepository }

func (f fileAircraft) ListAll(ctx context.Context) ([]*entity.AircraftType, error) {
	m, err := f.r.codeNames(AircraftFile)
	if err != nil {
		return nil, err
	}
	types := make([]*entity.AircraftType, 0, len(m))
	for _, code := range sortedKeys(m) {
		types = append(types, &entity.AircraftType{Code: strings.ToUpper(code), Name: m[code]})
	}
	return types, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
