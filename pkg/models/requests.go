package models

// LightRequest is the body of POST light
type LightRequest struct {
	DeviceName string `json:"deviceName"`
	Status     string `json:"status"`
	State      string `json:"state"`
}

// PumpRequest is the body of POST pump
type PumpRequest struct {
	DeviceName string `json:"deviceName"`
	Status     string `json:"status"`
	AutoLevel  bool   `json:"autoLevel"`
	Schedule   string `json:"schedule"`
	State      string `json:"state"`
}

// SensorRequest is the body of POST sensor.
// AlertThreshold is nil for subtypes without a default and is then left out.
type SensorRequest struct {
	SensorName     string   `json:"sensorName"`
	Type           string   `json:"type"`
	AlertThreshold *float64 `json:"alertThreshold,omitempty"`
	Status         string   `json:"status"`
}

// NewLightRequest builds a light body with the defaults new lights start with
func NewLightRequest(deviceName string) LightRequest {
	return LightRequest{
		DeviceName: deviceName,
		Status:     DefaultStatus,
		State:      "off",
	}
}

// NewPumpRequest builds a pump body with the default watering schedule
func NewPumpRequest(deviceName string) PumpRequest {
	return PumpRequest{
		DeviceName: deviceName,
		Status:     DefaultStatus,
		AutoLevel:  true,
		Schedule:   "06:00, 18:00",
		State:      "auto",
	}
}

// NewSensorRequest builds a sensor body
func NewSensorRequest(sensorName, sensorType string, alertThreshold *float64) SensorRequest {
	return SensorRequest{
		SensorName:     sensorName,
		Type:           sensorType,
		AlertThreshold: alertThreshold,
		Status:         DefaultStatus,
	}
}
