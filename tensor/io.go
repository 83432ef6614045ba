package tensor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

type tensorRecord struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// WriteTensors encodes a named tensor set as JSON.
func WriteTensors(w io.Writer, tensors map[string]*Tensor) error {
	if len(tensors) == 0 {
		return errors.New("WriteTensors requires at least one tensor")
	}
	records := make(map[string]tensorRecord, len(tensors))
	for name, t := range tensors {
		if t == nil {
			return fmt.Errorf("tensor %s is nil", name)
		}
		records[name] = tensorRecord{Shape: t.Shape(), Data: t.Data()}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// ReadTensors decodes tensors written by WriteTensors.
func ReadTensors(r io.Reader) (map[string]*Tensor, error) {
	records := make(map[string]tensorRecord)
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	result := make(map[string]*Tensor, len(records))
	for name, rec := range records {
		t, err := New(rec.Data, rec.Shape...)
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		result[name] = t
	}
	return result, nil
}

// SaveTensors serializes a named tensor set to disk using JSON.
func SaveTensors(path string, tensors map[string]*Tensor) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTensors(file, tensors); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadTensors deserializes tensors saved with SaveTensors.
func LoadTensors(path string) (map[string]*Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTensors(file)
}
