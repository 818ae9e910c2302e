package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/api"
	"github.com/doidoi-app/doidoi-cli/internal/auth"
	"github.com/doidoi-app/doidoi-cli/internal/events"
	"github.com/doidoi-app/doidoi-cli/internal/form"
	"github.com/doidoi-app/doidoi-cli/internal/logging"
	"github.com/doidoi-app/doidoi-cli/internal/output"
	"github.com/doidoi-app/doidoi-cli/internal/tui"
	"github.com/doidoi-app/doidoi-cli/pkg/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var deviceCmd = &cobra.Command{
	Use:     "device",
	Aliases: []string{"d"},
	Short:   "Manage devices",
	Long:    `Add pumps, lights and sensors to your garden.`,
}

var deviceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a device",
	Long: `Register a new device with the backend.

The type is one of the values listed by 'doidoi device types'.
Sensors are created with their default alert threshold.

Examples:
  doidoi device add --type pump --name "Bơm 1"
  doidoi device add --type "Temperature Sensor" --name "Nhiệt kế"
  doidoi device add -i                 Fill in the form interactively`,
	Args: cobra.NoArgs,
	RunE: runDeviceAdd,
}

var deviceTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the device types that can be added",
	Args:  cobra.NoArgs,
	RunE:  runDeviceTypes,
}

func init() {
	rootCmd.AddCommand(deviceCmd)
	deviceCmd.AddCommand(deviceAddCmd)
	deviceCmd.AddCommand(deviceTypesCmd)

	// Add flags
	deviceAddCmd.Flags().StringP("type", "t", "", "Device type (pump, light or a sensor type)")
	deviceAddCmd.Flags().StringP("name", "n", "", "Device name")
	deviceAddCmd.Flags().BoolP("interactive", "i", false, "Open the interactive add-device form")
}

// addResult is the machine-readable outcome of 'device add'
type addResult struct {
	Type      string `json:"type" yaml:"type"`
	Name      string `json:"name" yaml:"name"`
	Message   string `json:"message" yaml:"message"`
	RequestID string `json:"requestId,omitempty" yaml:"requestId,omitempty"`
}

func runDeviceAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := api.NewClient(viper.GetString("api_url"))

	tokenStore, err := auth.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	var opts []form.Option
	if publisher := connectPublisher(); publisher != nil {
		defer publisher.Close()
		opts = append(opts, form.WithNotifier(publisher))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		bridge := &tui.Bridge{}
		ctrl := form.New(client, tokenStore, bridge, bridge, opts...)
		return tui.Run(ctx, ctrl, bridge, tokenStore)
	}

	typeValue, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")

	machine := IsJSON() || IsYAML()
	console := output.NewConsole(os.Stdout, IsQuiet() || machine)
	ctrl := form.New(client, tokenStore, console, console, opts...)
	ctrl.SetKind(models.ParseKind(typeValue))
	ctrl.SetName(name)

	result := ctrl.Submit(ctx)

	switch result.Outcome {
	case form.OutcomeCreated:
		if done, err := structured(addResult{
			Type:      result.Draft.Kind.String(),
			Name:      result.Draft.Name,
			Message:   result.Response.Message,
			RequestID: result.Response.RequestID,
		}); done {
			return err
		}
		if !IsQuiet() {
			// keep the confirmation on screen for as long as the form would
			select {
			case <-console.ModalClosed():
			case <-ctx.Done():
			case <-time.After(form.SuccessModalDuration + time.Second):
			}
		}
		return nil

	case form.OutcomeNoToken:
		return fmt.Errorf("not logged in: run 'doidoi auth set-token' first")
	}

	// The console has already shown an alert for these
	cmd.SilenceErrors = true
	if result.Err != nil {
		return result.Err
	}
	return fmt.Errorf("device add failed: %s", result.Outcome)
}

// connectPublisher connects to the event broker when one is configured.
// Failing to connect never blocks adding a device.
func connectPublisher() *events.Publisher {
	broker := viper.GetString("mqtt.broker")
	if broker == "" {
		return nil
	}

	publisher, err := events.Connect(events.Config{
		Broker:   broker,
		Topic:    viper.GetString("mqtt.topic"),
		ClientID: viper.GetString("mqtt.client_id"),
	})
	if err != nil {
		logging.Warn("Device events disabled", zap.String("broker", broker), zap.Error(err))
		if !IsQuiet() {
			fmt.Fprintln(os.Stderr, "Warning: device events disabled:", err)
		}
		return nil
	}
	return publisher
}

// deviceType is one row of 'device types'
type deviceType struct {
	Label          string   `json:"label" yaml:"label"`
	Value          string   `json:"value" yaml:"value"`
	Endpoint       string   `json:"endpoint" yaml:"endpoint"`
	AlertThreshold *float64 `json:"alertThreshold,omitempty" yaml:"alertThreshold,omitempty"`
}

func runDeviceTypes(cmd *cobra.Command, args []string) error {
	types := make([]deviceType, 0, len(models.KindOptions))
	for _, opt := range models.KindOptions {
		kind := models.ParseKind(opt.Value)
		t := deviceType{
			Label:    opt.Label,
			Value:    opt.Value,
			Endpoint: kind.Endpoint(),
		}
		if v, ok := models.SensorThreshold(kind.Subtype()); ok {
			t.AlertThreshold = &v
		}
		types = append(types, t)
	}

	if done, err := structured(types); done {
		return err
	}

	headers := []string{"VALUE", "LABEL", "ENDPOINT", "THRESHOLD"}
	var rows [][]string
	for _, t := range types {
		threshold := "-"
		if t.AlertThreshold != nil {
			threshold = strconv.FormatFloat(*t.AlertThreshold, 'f', -1, 64)
		}
		rows = append(rows, []string{t.Value, t.Label, "/" + t.Endpoint, threshold})
	}

	output.Table(headers, rows)
	return nil
}
