package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/api"
	"github.com/doidoi-app/doidoi-cli/pkg/models"
)

// apiCall records one call made to fakeAPI
type apiCall struct {
	op        string
	token     string
	name      string
	subtype   string
	threshold *float64
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	resp  *api.CreateResponse
	err   error
	// block, when set, holds every call until it is closed
	block chan struct{}
}

func (f *fakeAPI) record(c apiCall) (*api.CreateResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func (f *fakeAPI) AddLight(_ context.Context, token, name string) (*api.CreateResponse, error) {
	return f.record(apiCall{op: "light", token: token, name: name})
}

func (f *fakeAPI) AddPump(_ context.Context, token, name string) (*api.CreateResponse, error) {
	return f.record(apiCall{op: "pump", token: token, name: name})
}

func (f *fakeAPI) AddSensor(_ context.Context, token, name, subtype string, threshold *float64) (*api.CreateResponse, error) {
	return f.record(apiCall{op: "sensor", token: token, name: name, subtype: subtype, threshold: threshold})
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) AccessToken(context.Context) (string, error) {
	return f.token, f.err
}

type alert struct{ title, message string }

type fakeView struct {
	mu          sync.Mutex
	alerts      []alert
	modals      []string
	modalClosed int
}

func (v *fakeView) Alert(title, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, alert{title, message})
}

func (v *fakeView) ShowModal(message, deviceName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modals = append(v.modals, message+"|"+deviceName)
}

func (v *fakeView) CloseModal() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modalClosed++
}

type fakeNavigator struct {
	routes []string
}

func (n *fakeNavigator) Replace(route string) {
	n.routes = append(n.routes, route)
}

// manualScheduler keeps scheduled funcs until the test advances time
type manualScheduler struct {
	now     time.Duration
	pending []scheduled
}

type scheduled struct {
	at time.Duration
	f  func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.pending = append(s.pending, scheduled{at: s.now + d, f: f})
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	var keep []scheduled
	for _, p := range s.pending {
		if p.at <= s.now {
			p.f()
		} else {
			keep = append(keep, p)
		}
	}
	s.pending = keep
}

type fakeNotifier struct {
	drafts []models.Draft
	err    error
}

func (n *fakeNotifier) DeviceCreated(_ context.Context, draft models.Draft, _ *api.CreateResponse) error {
	n.drafts = append(n.drafts, draft)
	return n.err
}

type harness struct {
	api   *fakeAPI
	view  *fakeView
	nav   *fakeNavigator
	sched *manualScheduler
	ctrl  *Controller
}

func newHarness(tokens TokenProvider, opts ...Option) *harness {
	h := &harness{
		api:   &fakeAPI{resp: &api.CreateResponse{Message: "Created"}},
		view:  &fakeView{},
		nav:   &fakeNavigator{},
		sched: &manualScheduler{},
	}
	opts = append([]Option{WithScheduler(h.sched)}, opts...)
	h.ctrl = New(h.api, tokens, h.view, h.nav, opts...)
	return h
}

func floatPtrString(f *float64) string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", *f)
}

func TestSubmit_DispatchByKind(t *testing.T) {
	tests := []struct {
		name          string
		kind          models.Kind
		wantOp        string
		wantSubtype   string
		wantThreshold string
	}{
		{name: "pump", kind: models.Pump(), wantOp: "pump", wantThreshold: "<nil>"},
		{name: "light", kind: models.Light(), wantOp: "light", wantThreshold: "<nil>"},
		{name: "temperature sensor", kind: models.Sensor("Temperature Sensor"), wantOp: "sensor", wantSubtype: "Temperature Sensor", wantThreshold: "30.5"},
		{name: "light sensor", kind: models.Sensor("Light Sensor"), wantOp: "sensor", wantSubtype: "Light Sensor", wantThreshold: "10"},
		{name: "soil moisture sensor", kind: models.Sensor("Soil Moisture Sensor"), wantOp: "sensor", wantSubtype: "Soil Moisture Sensor", wantThreshold: "70"},
		{name: "humidity sensor", kind: models.Sensor("Humidity Sensor"), wantOp: "sensor", wantSubtype: "Humidity Sensor", wantThreshold: "70"},
		{name: "unknown sensor passes through without threshold", kind: models.Sensor("Pressure Sensor"), wantOp: "sensor", wantSubtype: "Pressure Sensor", wantThreshold: "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(fakeTokens{token: "abc123"})
			h.ctrl.SetName("Thiết bị 1")
			h.ctrl.SetKind(tt.kind)

			res := h.ctrl.Submit(context.Background())
			if res.Outcome != OutcomeCreated {
				t.Fatalf("Outcome = %v, want created (err = %v)", res.Outcome, res.Err)
			}

			calls := h.api.Calls()
			if len(calls) != 1 {
				t.Fatalf("got %d API calls, want 1", len(calls))
			}
			got := calls[0]
			if got.op != tt.wantOp {
				t.Errorf("op = %s, want %s", got.op, tt.wantOp)
			}
			if got.token != "abc123" {
				t.Errorf("token = %s, want abc123", got.token)
			}
			if got.name != "Thiết bị 1" {
				t.Errorf("name = %s, want Thiết bị 1", got.name)
			}
			if got.subtype != tt.wantSubtype {
				t.Errorf("subtype = %q, want %q", got.subtype, tt.wantSubtype)
			}
			if floatPtrString(got.threshold) != tt.wantThreshold {
				t.Errorf("threshold = %s, want %s", floatPtrString(got.threshold), tt.wantThreshold)
			}
		})
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name     string
		nameText string
		kind     models.Kind
	}{
		{name: "empty name", nameText: "", kind: models.Pump()},
		{name: "whitespace name", nameText: "   \t", kind: models.Light()},
		{name: "no type selected", nameText: "Bơm 1", kind: models.Kind{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(fakeTokens{token: "abc123"})
			h.ctrl.SetName(tt.nameText)
			h.ctrl.SetKind(tt.kind)

			res := h.ctrl.Submit(context.Background())
			if res.Outcome != OutcomeInvalid {
				t.Errorf("Outcome = %v, want invalid", res.Outcome)
			}
			if n := len(h.api.Calls()); n != 0 {
				t.Errorf("got %d API calls, want 0", n)
			}
			if len(h.view.alerts) != 1 || h.view.alerts[0].message != ValidationMessage {
				t.Errorf("alerts = %v, want one validation alert", h.view.alerts)
			}
			if s := h.ctrl.Snapshot().State; s != StateIdle {
				t.Errorf("State = %v, want idle", s)
			}
		})
	}
}

func TestSubmit_ValidationBeforeTokenCheck(t *testing.T) {
	h := newHarness(fakeTokens{})
	h.ctrl.SetKind(models.Pump())

	res := h.ctrl.Submit(context.Background())
	if res.Outcome != OutcomeInvalid {
		t.Errorf("Outcome = %v, want invalid", res.Outcome)
	}
	if len(h.view.alerts) != 1 {
		t.Errorf("alerts = %v, want the validation alert even without a token", h.view.alerts)
	}
}

func TestSubmit_MissingTokenAbortsSilently(t *testing.T) {
	tests := []struct {
		name   string
		tokens fakeTokens
	}{
		{name: "empty token", tokens: fakeTokens{}},
		{name: "store error", tokens: fakeTokens{err: errors.New("no access token stored")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.tokens)
			h.ctrl.SetName("Bơm 1")
			h.ctrl.SetKind(models.Pump())

			res := h.ctrl.Submit(context.Background())
			if res.Outcome != OutcomeNoToken {
				t.Errorf("Outcome = %v, want no-token", res.Outcome)
			}
			if n := len(h.api.Calls()); n != 0 {
				t.Errorf("got %d API calls, want 0", n)
			}
			if len(h.view.alerts) != 0 {
				t.Errorf("alerts = %v, want none", h.view.alerts)
			}
			if len(h.nav.routes) != 0 {
				t.Errorf("routes = %v, want none", h.nav.routes)
			}
		})
	}
}

func TestSubmit_SuccessModalLifecycle(t *testing.T) {
	h := newHarness(fakeTokens{token: "abc123"})
	h.ctrl.SetName("Bơm 1")
	h.ctrl.SetKind(models.Pump())

	res := h.ctrl.Submit(context.Background())
	if res.Outcome != OutcomeCreated {
		t.Fatalf("Outcome = %v, want created", res.Outcome)
	}

	snap := h.ctrl.Snapshot()
	if !snap.ModalVisible {
		t.Error("modal should be visible right after success")
	}
	if snap.Message != "Created" {
		t.Errorf("Message = %q, want Created", snap.Message)
	}
	if snap.State != StateSuccess {
		t.Errorf("State = %v, want success", snap.State)
	}
	if len(h.view.modals) != 1 || h.view.modals[0] != "Created|Bơm 1" {
		t.Errorf("modals = %v, want [Created|Bơm 1]", h.view.modals)
	}

	h.sched.Advance(SuccessModalDuration - time.Millisecond)
	if !h.ctrl.Snapshot().ModalVisible {
		t.Fatal("modal closed before 2000ms")
	}

	h.sched.Advance(time.Millisecond)
	snap = h.ctrl.Snapshot()
	if snap.ModalVisible {
		t.Error("modal should be closed after 2000ms")
	}
	if snap.Name != "" || snap.Message != "" || !snap.Kind.IsZero() {
		t.Errorf("fields not reset: %+v", snap)
	}
	if snap.State != StateIdle {
		t.Errorf("State = %v, want idle", snap.State)
	}
	if h.view.modalClosed != 1 {
		t.Errorf("CloseModal called %d times, want 1", h.view.modalClosed)
	}
}

func TestSubmit_BusyWhileModalOpen(t *testing.T) {
	h := newHarness(fakeTokens{token: "abc123"})
	h.ctrl.SetName("Bơm 1")
	h.ctrl.SetKind(models.Pump())
	h.ctrl.Submit(context.Background())

	res := h.ctrl.Submit(context.Background())
	if res.Outcome != OutcomeBusy || !errors.Is(res.Err, ErrBusy) {
		t.Errorf("second Submit = %v/%v, want busy", res.Outcome, res.Err)
	}
	if n := len(h.api.Calls()); n != 1 {
		t.Errorf("got %d API calls, want 1", n)
	}
}

func TestSubmit_BusyWhileInFlight(t *testing.T) {
	h := newHarness(fakeTokens{token: "abc123"})
	h.api.block = make(chan struct{})
	h.ctrl.SetName("Đèn 1")
	h.ctrl.SetKind(models.Light())

	done := make(chan Result)
	go func() { done <- h.ctrl.Submit(context.Background()) }()

	// Wait until the first request reaches the API
	deadline := time.Now().Add(2 * time.Second)
	for len(h.api.Calls()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first submission never reached the API")
		}
		time.Sleep(time.Millisecond)
	}

	if res := h.ctrl.Submit(context.Background()); res.Outcome != OutcomeBusy {
		t.Errorf("concurrent Submit outcome = %v, want busy", res.Outcome)
	}

	close(h.api.block)
	if res := <-done; res.Outcome != OutcomeCreated {
		t.Errorf("first Submit outcome = %v, want created", res.Outcome)
	}
	if n := len(h.api.Calls()); n != 1 {
		t.Errorf("got %d API calls, want 1", n)
	}
}

func TestSubmit_Unauthorized(t *testing.T) {
	h := newHarness(fakeTokens{token: "expired"})
	h.api.err = &api.APIError{StatusCode: 401, Message: "Token expired"}
	h.ctrl.SetName("Bơm 1")
	h.ctrl.SetKind(models.Pump())

	res := h.ctrl.Submit(context.Background())
	if res.Outcome != OutcomeUnauthorized {
		t.Errorf("Outcome = %v, want unauthorized", res.Outcome)
	}
	if len(h.nav.routes) != 1 || h.nav.routes[0] != RouteLogin {
		t.Errorf("routes = %v, want [login]", h.nav.routes)
	}
	want := alert{UnauthorizedTitle, "Token expired"}
	if len(h.view.alerts) != 1 || h.view.alerts[0] != want {
		t.Errorf("alerts = %v, want [%v]", h.view.alerts, want)
	}
	if h.ctrl.Snapshot().ModalVisible {
		t.Error("modal should not open on failure")
	}
}

func TestSubmit_OtherFailuresDoNotNavigate(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "forbidden", err: &api.APIError{StatusCode: 403, Message: "Forbidden"}},
		{name: "bad request", err: &api.APIError{StatusCode: 400, Message: "bad"}},
		{name: "server error", err: &api.APIError{StatusCode: 500}},
		{name: "network error", err: errors.New("request failed: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(fakeTokens{token: "abc123"})
			h.api.err = tt.err
			h.ctrl.SetName("Đèn 1")
			h.ctrl.SetKind(models.Light())

			res := h.ctrl.Submit(context.Background())
			if res.Outcome != OutcomeFailed {
				t.Errorf("Outcome = %v, want failed", res.Outcome)
			}
			if len(h.nav.routes) != 0 {
				t.Errorf("routes = %v, want none", h.nav.routes)
			}
			want := alert{FailureTitle, FailureMessage}
			if len(h.view.alerts) != 1 || h.view.alerts[0] != want {
				t.Errorf("alerts = %v, want [%v]", h.view.alerts, want)
			}
			if n := len(h.api.Calls()); n != 1 {
				t.Errorf("got %d API calls, want 1 (no retry)", n)
			}
		})
	}
}

func TestDismissAlert_AllowsResubmit(t *testing.T) {
	h := newHarness(fakeTokens{token: "abc123"})
	h.api.err = errors.New("boom")
	h.ctrl.SetName("Đèn 1")
	h.ctrl.SetKind(models.Light())

	h.ctrl.Submit(context.Background())
	if s := h.ctrl.Snapshot().State; s != StateFailure {
		t.Fatalf("State = %v, want failure", s)
	}

	h.ctrl.DismissAlert()
	if s := h.ctrl.Snapshot().State; s != StateIdle {
		t.Fatalf("State after dismiss = %v, want idle", s)
	}

	h.api.err = nil
	if res := h.ctrl.Submit(context.Background()); res.Outcome != OutcomeCreated {
		t.Errorf("resubmit Outcome = %v, want created", res.Outcome)
	}
}

func TestSubmit_NotifierSeesCreatedDevice(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("broker down")}
	h := newHarness(fakeTokens{token: "abc123"}, WithNotifier(notifier))
	h.ctrl.SetName("Nhiệt 1")
	h.ctrl.SetKind(models.Sensor("Temperature Sensor"))

	res := h.ctrl.Submit(context.Background())
	if res.Outcome != OutcomeCreated {
		t.Errorf("Outcome = %v, want created even when the notifier fails", res.Outcome)
	}
	if len(notifier.drafts) != 1 || notifier.drafts[0].Name != "Nhiệt 1" {
		t.Errorf("notifier drafts = %v, want one for Nhiệt 1", notifier.drafts)
	}
}

func TestSubmit_NilResponseTreatedAsEmpty(t *testing.T) {
	h := newHarness(fakeTokens{token: "abc123"})
	h.api.resp = nil
	h.ctrl.SetName("Đèn 1")
	h.ctrl.SetKind(models.Light())

	res := h.ctrl.Submit(context.Background())
	if res.Outcome != OutcomeCreated {
		t.Fatalf("Outcome = %v, want created", res.Outcome)
	}
	if res.Response == nil {
		t.Error("Response should never be nil on success")
	}
}
