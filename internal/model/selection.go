package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CropRect is a normalized region of a page's visible area; all fields are in [0,1].
type CropRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r CropRect) HasArea() bool {
	return r.W > 0 && r.H > 0
}

// UnmarshalJSON accepts either [x, y, w, h] or {"x":..,"y":..,"w":..,"h":..}.
func (r *CropRect) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []float64
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		if len(values) != 4 {
			return fmt.Errorf("crop_box needs 4 values, got %d", len(values))
		}
		r.X, r.Y, r.W, r.H = values[0], values[1], values[2], values[3]
		return nil
	}
	type plain CropRect
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = CropRect(p)
	return nil
}

type PageSelection struct {
	SourceRef  string    `json:"source_pdf"`
	PageNumber int       `json:"page_number"`
	Crop       *CropRect `json:"crop_box,omitempty"`
}
