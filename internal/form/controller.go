// Package form implements the add-device form: its state, input validation,
// dispatch to the device API and the success/failure feedback loop.
//
// The controller is UI-agnostic. Views (the CLI printer, the interactive
// terminal form) plug in through the View and Navigator interfaces.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/api"
	"github.com/doidoi-app/doidoi-cli/internal/logging"
	"github.com/doidoi-app/doidoi-cli/pkg/models"
	"go.uber.org/zap"
)

// SuccessModalDuration is how long the confirmation modal stays open
const SuccessModalDuration = 2000 * time.Millisecond

// RouteLogin is where users are sent when the server rejects their token
const RouteLogin = "login"

// Texts shown to the user
const (
	ValidationMessage  = "Vui lòng nhập đầy đủ tên và chọn loại thiết bị."
	FailureTitle       = "Lỗi"
	FailureMessage     = "Không thể thêm thiết bị."
	UnauthorizedTitle  = "Error"
	DeviceNameLabelFmt = "Tên: %s"
)

// ErrBusy is returned when a submission is already in flight or its
// confirmation modal is still open
var ErrBusy = errors.New("a submission is already in progress")

// State is the controller's position in the submission lifecycle
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailure
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome summarises how a Submit call ended
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeInvalid
	OutcomeNoToken
	OutcomeUnauthorized
	OutcomeFailed
	OutcomeBusy
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNoToken:
		return "no-token"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Result is returned by Submit
type Result struct {
	Outcome  Outcome
	Draft    models.Draft
	Response *api.CreateResponse
	Err      error
}

// DeviceAPI creates devices on the backend
type DeviceAPI interface {
	AddLight(ctx context.Context, token, deviceName string) (*api.CreateResponse, error)
	AddPump(ctx context.Context, token, deviceName string) (*api.CreateResponse, error)
	AddSensor(ctx context.Context, token, sensorName, sensorType string, alertThreshold *float64) (*api.CreateResponse, error)
}

// TokenProvider reads the bearer token at submission time
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// View shows feedback to the user
type View interface {
	// Alert shows a blocking message
	Alert(title, message string)
	// ShowModal opens the success confirmation
	ShowModal(message, deviceName string)
	// CloseModal closes the success confirmation
	CloseModal()
}

// Navigator switches screens
type Navigator interface {
	Replace(route string)
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Notifier is told about every device created through the form
type Notifier interface {
	DeviceCreated(ctx context.Context, draft models.Draft, resp *api.CreateResponse) error
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Option configures a Controller
type Option func(*Controller)

// WithScheduler replaces the wall-clock scheduler used for the modal timeout
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithNotifier registers a notifier for created devices
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// Controller owns the add-device form state
type Controller struct {
	api       DeviceAPI
	tokens    TokenProvider
	view      View
	navigator Navigator
	scheduler Scheduler
	notifier  Notifier

	mu           sync.Mutex
	state        State
	inFlight     bool
	name         string
	kind         models.Kind
	message      string
	modalVisible bool
}

// New creates a controller in the idle state
func New(deviceAPI DeviceAPI, tokens TokenProvider, view View, navigator Navigator, opts ...Option) *Controller {
	c := &Controller{
		api:       deviceAPI,
		tokens:    tokens,
		view:      view,
		navigator: navigator,
		scheduler: timeScheduler{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetName updates the device name field
func (c *Controller) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// SetKind updates the selected device type
func (c *Controller) SetKind(kind models.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = kind
}

// Snapshot is a copy of the form fields
type Snapshot struct {
	State        State
	Name         string
	Kind         models.Kind
	Message      string
	ModalVisible bool
}

// Snapshot returns the current form fields
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:        c.state,
		Name:         c.name,
		Kind:         c.kind,
		Message:      c.message,
		ModalVisible: c.modalVisible,
	}
}

// DismissAlert acknowledges a failure alert and returns the form to idle
func (c *Controller) DismissAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateFailure {
		c.state = StateIdle
	}
}

// Submit validates the form and sends one create request.
//
// A missing token aborts without any alert or request.
func (c *Controller) Submit(ctx context.Context) Result {
	c.mu.Lock()
	if c.inFlight || c.state == StateSubmitting || c.state == StateSuccess {
		c.mu.Unlock()
		return Result{Outcome: OutcomeBusy, Err: ErrBusy}
	}
	c.inFlight = true
	draft := models.Draft{Name: c.name, Kind: c.kind}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	token, tokenErr := c.tokens.AccessToken(ctx)

	if err := draft.Validate(); err != nil {
		c.view.Alert("", ValidationMessage)
		return Result{Outcome: OutcomeInvalid, Draft: draft, Err: err}
	}

	if tokenErr != nil || token == "" {
		logging.Debug("No access token, submission aborted", zap.Error(tokenErr))
		return Result{Outcome: OutcomeNoToken, Draft: draft, Err: tokenErr}
	}

	c.setState(StateSubmitting)

	resp, err := c.dispatch(ctx, token, draft)
	if err != nil {
		return c.handleError(draft, err)
	}
	if resp == nil {
		resp = &api.CreateResponse{}
	}

	c.handleSuccess(ctx, draft, resp)
	return Result{Outcome: OutcomeCreated, Draft: draft, Response: resp}
}

func (c *Controller) dispatch(ctx context.Context, token string, draft models.Draft) (*api.CreateResponse, error) {
	switch draft.Kind.Tag() {
	case models.KindPump:
		return c.api.AddPump(ctx, token, draft.Name)
	case models.KindLight:
		return c.api.AddLight(ctx, token, draft.Name)
	default:
		subtype := draft.Kind.Subtype()
		var threshold *float64
		if v, ok := models.SensorThreshold(subtype); ok {
			threshold = &v
		}
		return c.api.AddSensor(ctx, token, draft.Name, subtype, threshold)
	}
}

func (c *Controller) handleSuccess(ctx context.Context, draft models.Draft, resp *api.CreateResponse) {
	c.mu.Lock()
	c.message = resp.Message
	c.modalVisible = true
	c.state = StateSuccess
	c.mu.Unlock()

	c.view.ShowModal(resp.Message, draft.Name)
	c.scheduler.AfterFunc(SuccessModalDuration, c.resetAfterSuccess)

	if c.notifier != nil {
		if err := c.notifier.DeviceCreated(ctx, draft, resp); err != nil {
			logging.Warn("Failed to publish device event", zap.Error(err))
		}
	}
}

func (c *Controller) resetAfterSuccess() {
	c.mu.Lock()
	c.modalVisible = false
	c.name = ""
	c.message = ""
	c.kind = models.Kind{}
	c.state = StateIdle
	c.mu.Unlock()

	c.view.CloseModal()
}

func (c *Controller) handleError(draft models.Draft, err error) Result {
	c.setState(StateFailure)

	if api.IsUnauthorized(err) {
		var apiErr *api.APIError
		errors.As(err, &apiErr)
		c.view.Alert(UnauthorizedTitle, apiErr.Message)
		c.navigator.Replace(RouteLogin)
		return Result{Outcome: OutcomeUnauthorized, Draft: draft, Err: err}
	}

	logging.Error("Unexpected error",
		zap.String("device_type", draft.Kind.String()),
		zap.Error(err),
	)
	c.view.Alert(FailureTitle, FailureMessage)
	return Result{Outcome: OutcomeFailed, Draft: draft, Err: err}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}
