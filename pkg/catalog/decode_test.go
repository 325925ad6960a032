package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
	}{
		{name: "string", in: `"24-70mm"`, want: "24-70mm"},
		{name: "trimmed string", in: `"  T2.8 "`, want: "T2.8"},
		{name: "integer", in: `50`, want: "50"},
		{name: "float", in: `46.31`, want: "46.31"},
		{name: "bool", in: `true`, want: "true"},
		{name: "null", in: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				V Text `json:"v"`
			}
			if err := json.Unmarshal([]byte(`{"v":`+tt.in+`}`), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.V != tt.want {
				t.Errorf("Text = %q, want %q", got.V, tt.want)
			}
		})
	}
}

func TestText_UnmarshalJSON_RejectsComposite(t *testing.T) {
	var got struct {
		V Text `json:"v"`
	}
	if err := json.Unmarshal([]byte(`{"v":[1,2]}`), &got); err == nil {
		t.Fatal("expected error for array value")
	}
	if err := json.Unmarshal([]byte(`{"v":{"a":1}}`), &got); err == nil {
		t.Fatal("expected error for object value")
	}
}

func TestText_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
	}{
		{name: "string", in: `v: 24-70mm`, want: "24-70mm"},
		{name: "integer", in: `v: 50`, want: "50"},
		{name: "float", in: `v: 46.31`, want: "46.31"},
		{name: "bool", in: `v: True`, want: "true"},
		{name: "quoted dash", in: `v: "-"`, want: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				V Text `yaml:"v"`
			}
			if err := yaml.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.V != tt.want {
				t.Errorf("Text = %q, want %q", got.V, tt.want)
			}
		})
	}
}

func TestDecodeJSON_AliasesAndCoercion(t *testing.T) {
	doc := `{
		"lenses": [
			{"id": "a", "displayName": "Alpha 50", "brand": "Cooke", "seriesName": "S4/i",
			 "focalLength": 50, "imageCircle": 33.0, "closeFocusCm": 45, "lensFormat": "S35"},
			{"id": "b", "display_name": "Beta 25", "manufacturer": "ARRI", "lens_name": "Ultra Prime",
			 "focal_length": "25mm", "close_focus_centimeters": "25"},
			{"id": "", "display_name": "No ID"},
			{"display_name": "Missing ID"}
		],
		"cameras": [{"id": "cam", "manufacturer": "ARRI", "model": "Alexa 35", "sensorWidthMm": 27.99}],
		"formats": [{"id": "f1", "cameraID": "cam", "name": "Open Gate", "width_mm": 27.99, "height_mm": 19.22}],
		"rentals": [{"id": "r1", "name": "House", "url": "https://example.com"}],
		"inventory": [{"rentalId": "r1", "lensId": "a"}, {"rental_id": "r1"}]
	}`

	snap, rep, err := DecodeJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}

	if len(snap.Lenses) != 2 {
		t.Fatalf("lenses = %d, want 2", len(snap.Lenses))
	}
	if rep.DroppedLenses != 2 {
		t.Errorf("DroppedLenses = %d, want 2", rep.DroppedLenses)
	}
	if rep.DroppedInventory != 1 {
		t.Errorf("DroppedInventory = %d, want 1", rep.DroppedInventory)
	}

	a := snap.Lenses[0]
	if a.DisplayName != "Alpha 50" || a.Manufacturer != "Cooke" || a.SeriesName != "S4/i" {
		t.Errorf("lens a names = %q/%q/%q", a.DisplayName, a.Manufacturer, a.SeriesName)
	}
	if a.FocalLength != "50" {
		t.Errorf("FocalLength = %q, want %q", a.FocalLength, "50")
	}
	if a.ImageCircle != "33.0" {
		t.Errorf("ImageCircle = %q, want %q", a.ImageCircle, "33.0")
	}
	if a.CloseFocusCm != "45" {
		t.Errorf("CloseFocusCm = %q, want %q", a.CloseFocusCm, "45")
	}
	if a.LensFormatCategory != "S35" {
		t.Errorf("LensFormatCategory = %q, want %q", a.LensFormatCategory, "S35")
	}

	b := snap.Lenses[1]
	if b.SeriesName != "Ultra Prime" || b.CloseFocusCm != "25" {
		t.Errorf("lens b = %+v", b)
	}

	if len(snap.RecordingFormats) != 1 || snap.RecordingFormats[0].CameraID != "cam" {
		t.Fatalf("recording formats = %+v", snap.RecordingFormats)
	}
	if snap.RecordingFormats[0].RecordingFormatName != "Open Gate" {
		t.Errorf("format name = %q", snap.RecordingFormats[0].RecordingFormatName)
	}
	if snap.Cameras[0].SensorWidthMm != "27.99" {
		t.Errorf("SensorWidthMm = %q", snap.Cameras[0].SensorWidthMm)
	}
	if snap.Rentals[0].Website != "https://example.com" {
		t.Errorf("Website = %q", snap.Rentals[0].Website)
	}
	if len(snap.Inventory) != 1 || snap.Inventory[0].LensID != "a" {
		t.Errorf("inventory = %+v", snap.Inventory)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	if _, _, err := DecodeJSON(strings.NewReader(`{"lenses": [`)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestDecodeYAML_Empty(t *testing.T) {
	snap, _, err := DecodeYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeYAML empty: %v", err)
	}
	if len(snap.Lenses) != 0 {
		t.Errorf("lenses = %d, want 0", len(snap.Lenses))
	}
}

func TestDecodeCollection(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "bare array", body: `[{"id":"a"},{"id":"b"}]`, want: 2},
		{name: "wrapped", body: `{"lenses":[{"id":"a"}]}`, want: 1},
		{name: "empty body", body: ``, want: 0},
		{name: "wrong key", body: `{"items":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []rawLens
			err := decodeCollection([]byte(tt.body), "lenses", &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(out) != tt.want {
				t.Errorf("len = %d, want %d", len(out), tt.want)
			}
		})
	}
}
