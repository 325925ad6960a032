package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HerbHall/cinelens/pkg/models"
)

// Text is a catalog scalar coerced to its string form. Upstream payloads mix
// strings, integers, floats and booleans for the same field, so every scalar
// kind is accepted and null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", kindOf(data[0]))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Text) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar", value.Line)
	}
	switch value.ShortTag() {
	case "!!null":
		*t = ""
	case "!!bool":
		*t = Text(strings.ToLower(value.Value))
	default:
		*t = Text(strings.TrimSpace(value.Value))
	}
	return nil
}

func kindOf(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

// first returns the first non-empty alias value.
func first(vals ...Text) string {
	for _, v := range vals {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

// rawLens accepts every field spelling seen across catalog publishers.
type rawLens struct {
	ID                      Text `json:"id" yaml:"id"`
	DisplayName             Text `json:"display_name" yaml:"display_name"`
	DisplayNameCamel        Text `json:"displayName" yaml:"displayName"`
	Name                    Text `json:"name" yaml:"name"`
	Manufacturer            Text `json:"manufacturer" yaml:"manufacturer"`
	Brand                   Text `json:"brand" yaml:"brand"`
	SeriesName              Text `json:"series_name" yaml:"series_name"`
	SeriesNameCamel         Text `json:"seriesName" yaml:"seriesName"`
	Series                  Text `json:"series" yaml:"series"`
	LensName                Text `json:"lens_name" yaml:"lens_name"`
	LensNameCamel           Text `json:"lensName" yaml:"lensName"`
	Format                  Text `json:"format" yaml:"format"`
	FocalLength             Text `json:"focal_length" yaml:"focal_length"`
	FocalLengthCamel        Text `json:"focalLength" yaml:"focalLength"`
	Aperture                Text `json:"aperture" yaml:"aperture"`
	CloseFocusIn            Text `json:"close_focus_in" yaml:"close_focus_in"`
	CloseFocusInches        Text `json:"close_focus_inches" yaml:"close_focus_inches"`
	CloseFocusInCamel       Text `json:"closeFocusIn" yaml:"closeFocusIn"`
	CloseFocusInchesCamel   Text `json:"closeFocusInches" yaml:"closeFocusInches"`
	CloseFocusCm            Text `json:"close_focus_cm" yaml:"close_focus_cm"`
	CloseFocusCentimeters   Text `json:"close_focus_centimeters" yaml:"close_focus_centimeters"`
	CloseFocusCmCamel       Text `json:"closeFocusCm" yaml:"closeFocusCm"`
	CloseFocusCentiCamel    Text `json:"closeFocusCentimeters" yaml:"closeFocusCentimeters"`
	ImageCircle             Text `json:"image_circle" yaml:"image_circle"`
	ImageCircleCamel        Text `json:"imageCircle" yaml:"imageCircle"`
	Length                  Text `json:"length" yaml:"length"`
	FrontDiameter           Text `json:"front_diameter" yaml:"front_diameter"`
	FrontDiameterCamel      Text `json:"frontDiameter" yaml:"frontDiameter"`
	SqueezeFactor           Text `json:"squeeze_factor" yaml:"squeeze_factor"`
	SqueezeFactorCamel      Text `json:"squeezeFactor" yaml:"squeezeFactor"`
	LensFormatCategory      Text `json:"lens_format_category" yaml:"lens_format_category"`
	LensFormatCategoryCamel Text `json:"lensFormatCategory" yaml:"lensFormatCategory"`
	LensFormat              Text `json:"lens_format" yaml:"lens_format"`
	LensFormatCamel         Text `json:"lensFormat" yaml:"lensFormat"`
	FormatCategory          Text `json:"format_category" yaml:"format_category"`
}

func (r rawLens) toModel() models.Lens {
	return models.Lens{
		ID:                 string(r.ID),
		DisplayName:        first(r.DisplayName, r.DisplayNameCamel, r.Name),
		Manufacturer:       first(r.Manufacturer, r.Brand),
		SeriesName:         first(r.SeriesName, r.SeriesNameCamel, r.Series, r.LensName, r.LensNameCamel),
		Format:             string(r.Format),
		FocalLength:        first(r.FocalLength, r.FocalLengthCamel),
		Aperture:           string(r.Aperture),
		CloseFocusInches:   first(r.CloseFocusIn, r.CloseFocusInches, r.CloseFocusInCamel, r.CloseFocusInchesCamel),
		CloseFocusCm:       first(r.CloseFocusCm, r.CloseFocusCentimeters, r.CloseFocusCmCamel, r.CloseFocusCentiCamel),
		ImageCircle:        first(r.ImageCircle, r.ImageCircleCamel),
		Length:             string(r.Length),
		FrontDiameter:      first(r.FrontDiameter, r.FrontDiameterCamel),
		SqueezeFactor:      first(r.SqueezeFactor, r.SqueezeFactorCamel),
		LensFormatCategory: first(r.LensFormatCategory, r.LensFormatCategoryCamel, r.LensFormat, r.LensFormatCamel, r.FormatCategory),
	}
}

type rawCamera struct {
	ID                  Text `json:"id" yaml:"id"`
	Manufacturer        Text `json:"manufacturer" yaml:"manufacturer"`
	Model               Text `json:"model" yaml:"model"`
	SensorType          Text `json:"sensor_type" yaml:"sensor_type"`
	SensorTypeCamel     Text `json:"sensorType" yaml:"sensorType"`
	SensorWidthMm       Text `json:"sensor_width_mm" yaml:"sensor_width_mm"`
	SensorWidthMmCamel  Text `json:"sensorWidthMm" yaml:"sensorWidthMm"`
	SensorWidth         Text `json:"sensor_width" yaml:"sensor_width"`
	SensorHeightMm      Text `json:"sensor_height_mm" yaml:"sensor_height_mm"`
	SensorHeightMmCamel Text `json:"sensorHeightMm" yaml:"sensorHeightMm"`
	SensorHeight        Text `json:"sensor_height" yaml:"sensor_height"`
	ImageCircleMm       Text `json:"image_circle_mm" yaml:"image_circle_mm"`
	ImageCircleMmCamel  Text `json:"imageCircleMm" yaml:"imageCircleMm"`
	ImageCircle         Text `json:"image_circle" yaml:"image_circle"`
}

func (r rawCamera) toModel() models.Camera {
	return models.Camera{
		ID:             string(r.ID),
		Manufacturer:   string(r.Manufacturer),
		Model:          string(r.Model),
		SensorType:     first(r.SensorType, r.SensorTypeCamel),
		SensorWidthMm:  first(r.SensorWidthMm, r.SensorWidthMmCamel, r.SensorWidth),
		SensorHeightMm: first(r.SensorHeightMm, r.SensorHeightMmCamel, r.SensorHeight),
		ImageCircleMm:  first(r.ImageCircleMm, r.ImageCircleMmCamel, r.ImageCircle),
	}
}

type rawRecordingFormat struct {
	ID                   Text `json:"id" yaml:"id"`
	CameraID             Text `json:"camera_id" yaml:"camera_id"`
	CameraIDCamel        Text `json:"cameraId" yaml:"cameraId"`
	CameraIDUpper        Text `json:"cameraID" yaml:"cameraID"`
	FormatName           Text `json:"recording_format_name" yaml:"recording_format_name"`
	FormatNameCamel      Text `json:"recordingFormatName" yaml:"recordingFormatName"`
	Name                 Text `json:"name" yaml:"name"`
	WidthMm              Text `json:"recording_width_mm" yaml:"recording_width_mm"`
	WidthMmCamel         Text `json:"recordingWidthMm" yaml:"recordingWidthMm"`
	Width                Text `json:"width_mm" yaml:"width_mm"`
	HeightMm             Text `json:"recording_height_mm" yaml:"recording_height_mm"`
	HeightMmCamel        Text `json:"recordingHeightMm" yaml:"recordingHeightMm"`
	Height               Text `json:"height_mm" yaml:"height_mm"`
	ImageCircleMm        Text `json:"recording_image_circle_mm" yaml:"recording_image_circle_mm"`
	ImageCircleMmCamel   Text `json:"recordingImageCircleMm" yaml:"recordingImageCircleMm"`
	ImageCircleShortName Text `json:"image_circle_mm" yaml:"image_circle_mm"`
}

func (r rawRecordingFormat) toModel() models.RecordingFormat {
	return models.RecordingFormat{
		ID:                     string(r.ID),
		CameraID:               first(r.CameraID, r.CameraIDCamel, r.CameraIDUpper),
		RecordingFormatName:    first(r.FormatName, r.FormatNameCamel, r.Name),
		RecordingWidthMm:       first(r.WidthMm, r.WidthMmCamel, r.Width),
		RecordingHeightMm:      first(r.HeightMm, r.HeightMmCamel, r.Height),
		RecordingImageCircleMm: first(r.ImageCircleMm, r.ImageCircleMmCamel, r.ImageCircleShortName),
	}
}

type rawRental struct {
	ID      Text `json:"id" yaml:"id"`
	Name    Text `json:"name" yaml:"name"`
	Address Text `json:"address" yaml:"address"`
	Phone   Text `json:"phone" yaml:"phone"`
	Website Text `json:"website" yaml:"website"`
	URL     Text `json:"url" yaml:"url"`
}

func (r rawRental) toModel() models.Rental {
	return models.Rental{
		ID:      string(r.ID),
		Name:    string(r.Name),
		Address: string(r.Address),
		Phone:   string(r.Phone),
		Website: first(r.Website, r.URL),
	}
}

type rawInventoryItem struct {
	RentalID      Text `json:"rental_id" yaml:"rental_id"`
	RentalIDCamel Text `json:"rentalId" yaml:"rentalId"`
	RentalIDUpper Text `json:"rentalID" yaml:"rentalID"`
	LensID        Text `json:"lens_id" yaml:"lens_id"`
	LensIDCamel   Text `json:"lensId" yaml:"lensId"`
	LensIDUpper   Text `json:"lensID" yaml:"lensID"`
}

func (r rawInventoryItem) toModel() models.InventoryItem {
	return models.InventoryItem{
		RentalID: first(r.RentalID, r.RentalIDCamel, r.RentalIDUpper),
		LensID:   first(r.LensID, r.LensIDCamel, r.LensIDUpper),
	}
}

// rawDocument is the top-level structure of a catalog file.
type rawDocument struct {
	Lenses           []rawLens            `json:"lenses" yaml:"lenses"`
	Cameras          []rawCamera          `json:"cameras" yaml:"cameras"`
	RecordingFormats []rawRecordingFormat `json:"recording_formats" yaml:"recording_formats"`
	Formats          []rawRecordingFormat `json:"formats" yaml:"formats"`
	Rentals          []rawRental          `json:"rentals" yaml:"rentals"`
	Inventory        []rawInventoryItem   `json:"inventory" yaml:"inventory"`
}

// DecodeReport counts records dropped at the ingestion boundary because a
// required key was empty.
type DecodeReport struct {
	DroppedLenses    int `json:"dropped_lenses"`
	DroppedCameras   int `json:"dropped_cameras"`
	DroppedFormats   int `json:"dropped_formats"`
	DroppedRentals   int `json:"dropped_rentals"`
	DroppedInventory int `json:"dropped_inventory"`
}

// Dropped returns the total number of dropped records.
func (r DecodeReport) Dropped() int {
	return r.DroppedLenses + r.DroppedCameras + r.DroppedFormats + r.DroppedRentals + r.DroppedInventory
}

func (d rawDocument) build() (Snapshot, DecodeReport) {
	var snap Snapshot
	var rep DecodeReport

	snap.Lenses = make([]models.Lens, 0, len(d.Lenses))
	for i := range d.Lenses {
		l := d.Lenses[i].toModel()
		if l.ID == "" {
			rep.DroppedLenses++
			continue
		}
		snap.Lenses = append(snap.Lenses, l)
	}

	snap.Cameras = make([]models.Camera, 0, len(d.Cameras))
	for i := range d.Cameras {
		c := d.Cameras[i].toModel()
		if c.ID == "" {
			rep.DroppedCameras++
			continue
		}
		snap.Cameras = append(snap.Cameras, c)
	}

	formats := make([]rawRecordingFormat, 0, len(d.RecordingFormats)+len(d.Formats))
	formats = append(formats, d.RecordingFormats...)
	formats = append(formats, d.Formats...)
	snap.RecordingFormats = make([]models.RecordingFormat, 0, len(formats))
	for i := range formats {
		f := formats[i].toModel()
		if f.ID == "" || f.CameraID == "" {
			rep.DroppedFormats++
			continue
		}
		snap.RecordingFormats = append(snap.RecordingFormats, f)
	}

	snap.Rentals = make([]models.Rental, 0, len(d.Rentals))
	for i := range d.Rentals {
		r := d.Rentals[i].toModel()
		if r.ID == "" {
			rep.DroppedRentals++
			continue
		}
		snap.Rentals = append(snap.Rentals, r)
	}

	snap.Inventory = make([]models.InventoryItem, 0, len(d.Inventory))
	for i := range d.Inventory {
		it := d.Inventory[i].toModel()
		if it.RentalID == "" || it.LensID == "" {
			rep.DroppedInventory++
			continue
		}
		snap.Inventory = append(snap.Inventory, it)
	}

	return snap, rep
}

// DecodeJSON parses a JSON catalog document.
func DecodeJSON(r io.Reader) (Snapshot, DecodeReport, error) {
	var doc rawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Snapshot{}, DecodeReport{}, fmt.Errorf("catalog: parse json: %w", err)
	}
	snap, rep := doc.build()
	return snap, rep, nil
}

// DecodeYAML parses a YAML catalog document.
func DecodeYAML(r io.Reader) (Snapshot, DecodeReport, error) {
	var doc rawDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Snapshot{}, DecodeReport{}, nil
		}
		return Snapshot{}, DecodeReport{}, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	snap, rep := doc.build()
	return snap, rep, nil
}

// DecodeFile parses a catalog file, choosing the decoder by extension.
// Files without a .json extension are read as YAML.
func DecodeFile(path string) (Snapshot, DecodeReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, DecodeReport{}, fmt.Errorf("catalog: open %q: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DecodeJSON(f)
	}
	return DecodeYAML(f)
}

// decodeCollection decodes one endpoint payload into out. The payload may be
// a bare array or an object holding the array under key.
func decodeCollection(data []byte, key string, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	inner, ok := wrapper[key]
	if !ok {
		return fmt.Errorf("missing %q collection", key)
	}
	return json.Unmarshal(inner, out)
}
