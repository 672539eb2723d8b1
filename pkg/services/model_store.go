package services

import (
	"encoding/json"
	"os"

	"fixnow-api/pkg/models"

	"github.com/xh3b4sd/tracer"
)

// SaveLinearModel writes the model artifact as indented JSON
func SaveLinearModel(path string, m *models.LinearModel) error {
	var err error

	var b []byte
	{
		b, err = json.MarshalIndent(m, "", "  ")
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		err = os.WriteFile(path, append(b, '\n'), 0o644)
		if err != nil {
			return tracer.Mask(err)
		}
	}

	return nil
}

// LoadLinearModel reads and validates a model artifact written by SaveLinearModel
func LoadLinearModel(path string) (*models.LinearModel, error) {
	var err error

	var b []byte
	{
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	var m models.LinearModel
	{
		err = json.Unmarshal(b, &m)
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	{
		err = m.Validate()
		if err != nil {
			return nil, tracer.Mask(err)
		}
	}

	return &m, nil
}
