package saver

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"us-resample/internal/model"
)

// ParquetSaver stores a packet as a Parquet file with the model.Bar schema.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.Bar, path string) error {
	return parquet.WriteFile(path, bars)
}

func (ParquetSaver) Load(path string) ([]model.Bar, error) {
	bars, err := parquet.ReadFile[model.Bar](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return bars, nil
}
