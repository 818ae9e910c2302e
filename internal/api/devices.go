package api

import (
	"context"

	"github.com/doidoi-app/doidoi-cli/pkg/models"
)

// AddLight creates a light, switched off
func (c *Client) AddLight(ctx context.Context, token, deviceName string) (*CreateResponse, error) {
	return c.post(ctx, token, models.Light().Endpoint(), models.NewLightRequest(deviceName))
}

// AddPump creates a pump in automatic mode on the default schedule
func (c *Client) AddPump(ctx context.Context, token, deviceName string) (*CreateResponse, error) {
	return c.post(ctx, token, models.Pump().Endpoint(), models.NewPumpRequest(deviceName))
}

// AddSensor creates a sensor of the given subtype.
// A nil alertThreshold is left out of the request.
func (c *Client) AddSensor(ctx context.Context, token, sensorName, sensorType string, alertThreshold *float64) (*CreateResponse, error) {
	return c.post(ctx, token, models.Sensor(sensorType).Endpoint(), models.NewSensorRequest(sensorName, sensorType, alertThreshold))
}
