package photoindex

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/1F47E/geo-photo-search/pkg/models"
)

var (
	ErrInvalidBox    = errors.New("invalid bounding box: max below min")
	ErrInvalidRadius = errors.New("invalid radius: must not be negative")
)

// IndexData represents the serializable form of the index
type IndexData struct {
	Photos []*models.Photo
	Count  int
}

// SaveToFile saves the index to a binary file
func (idx *Index) SaveToFile(filename string) error {
	photos := idx.All()
	data := IndexData{
		Photos: photos,
		Count:  len(photos),
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}
	return nil
}

// LoadFromFile replaces the index content with the photos stored in filename
func (idx *Index) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data IndexData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}

	idx.Clear()
	idx.IndexPhotos(data.Photos)
	return nil
}

// LoadOrNew loads filename when it exists and returns an empty index otherwise
func LoadOrNew(filename string) (*Index, error) {
	idx := New()
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err := idx.LoadFromFile(filename); err != nil {
		return nil, err
	}
	return idx, nil
}
