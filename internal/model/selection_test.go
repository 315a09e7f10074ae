package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageSelectionCropBoxShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *CropRect
	}{
		{name: "array", raw: `{"source_pdf":"a.pdf","page_number":1,"crop_box":[0.1,0.2,0.3,0.4]}`, want: &CropRect{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}},
		{name: "object", raw: `{"source_pdf":"a.pdf","page_number":1,"crop_box":{"x":0,"y":0,"w":1,"h":1}}`, want: &CropRect{W: 1, H: 1}},
		{name: "absent", raw: `{"source_pdf":"a.pdf","page_number":1}`, want: nil},
		{name: "null", raw: `{"source_pdf":"a.pdf","page_number":1,"crop_box":null}`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sel PageSelection
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &sel))
			require.Equal(t, tt.want, sel.Crop)
			require.Equal(t, "a.pdf", sel.SourceRef)
		})
	}
}

func TestPageSelectionCropBoxWrongLength(t *testing.T) {
	var sel PageSelection
	err := json.Unmarshal([]byte(`{"source_pdf":"a.pdf","crop_box":[0.1,0.2]}`), &sel)
	require.Error(t, err)
}

func TestFileRecordHasPage(t *testing.T) {
	f := &FileRecord{Pages: []PageRecord{{PageNumber: 1}, {PageNumber: 2}}}
	require.False(t, f.HasPage(0))
	require.True(t, f.HasPage(1))
	require.True(t, f.HasPage(2))
	require.False(t, f.HasPage(3))
	require.Equal(t, map[int]string{1: "", 2: ""}, f.PageMap())
}
