package models

// Camera is a cinema camera body. Sensor dimensions are free-text millimeters.
type Camera struct {
	ID             string `json:"id" yaml:"id"`
	Manufacturer   string `json:"manufacturer" yaml:"manufacturer"`
	Model          string `json:"model" yaml:"model"`
	SensorType     string `json:"sensor_type,omitempty" yaml:"sensor_type,omitempty"`
	SensorWidthMm  string `json:"sensor_width_mm,omitempty" yaml:"sensor_width_mm,omitempty"`
	SensorHeightMm string `json:"sensor_height_mm,omitempty" yaml:"sensor_height_mm,omitempty"`
	ImageCircleMm  string `json:"image_circle_mm,omitempty" yaml:"image_circle_mm,omitempty"`
}

// DisplayName joins manufacturer and model, e.g. "ARRI Alexa 35".
func (c Camera) DisplayName() string {
	switch {
	case c.Manufacturer == "":
		return c.Model
	case c.Model == "":
		return c.Manufacturer
	}
	return c.Manufacturer + " " + c.Model
}

// RecordingFormat is one active recording area of a camera. A camera has
// many recording formats, linked by CameraID.
type RecordingFormat struct {
	ID                     string `json:"id" yaml:"id"`
	CameraID               string `json:"camera_id" yaml:"camera_id"`
	RecordingFormatName    string `json:"recording_format_name" yaml:"recording_format_name"`
	RecordingWidthMm       string `json:"recording_width_mm,omitempty" yaml:"recording_width_mm,omitempty"`
	RecordingHeightMm      string `json:"recording_height_mm,omitempty" yaml:"recording_height_mm,omitempty"`
	RecordingImageCircleMm string `json:"recording_image_circle_mm,omitempty" yaml:"recording_image_circle_mm,omitempty"`
}
