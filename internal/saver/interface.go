package saver

import (
	"strings"

	"us-resample/internal/model"
)

// PacketSaver persists one packet (chunk) of bars to path.
// The batch runner only depends on this interface; main injects the implementation.
type PacketSaver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// PacketLoader reads one packet of bars written by a crawler or a PacketSaver.
type PacketLoader interface {
	Load(path string) ([]model.Bar, error)
	Extension() string
}

// PacketStore reads and writes one format.
type PacketStore interface {
	PacketSaver
	PacketLoader
}

// NewPacketSaver creates implementation by format (csv, parquet, json).
// Returns nil if format not supported.
func NewPacketSaver(format string) PacketSaver {
	return NewPacketStore(format)
}

// NewPacketLoader is NewPacketSaver for reading.
func NewPacketLoader(format string) PacketLoader {
	return NewPacketStore(format)
}

// NewPacketStore returns the store for format, or nil.
func NewPacketStore(format string) PacketStore {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
