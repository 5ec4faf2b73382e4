package saver

import (
	"encoding/json"
	"fmt"
	"os"

	"us-resample/internal/model"
)

// JSONSaver stores a packet as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(bars)
}

func (JSONSaver) Load(path string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var bars []model.Bar
	if err := json.NewDecoder(f).Decode(&bars); err != nil {
		return nil, fmt.Errorf("parse JSON %s: %w", path, err)
	}
	return bars, nil
}
