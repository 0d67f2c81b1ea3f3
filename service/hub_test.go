package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// recorder collects lifecycle calls across services in order
type recorder struct {
	calls []string
}

type fakeService struct {
	name     string
	deps     []string
	rec      *recorder
	args     []any
	initErr  error
	startErr error
	stopErr  error
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }

func (f *fakeService) Init(args ...any) error {
	f.rec.calls = append(f.rec.calls, "init:"+f.name)
	f.args = args
	return f.initErr
}

func (f *fakeService) Start() error {
	f.rec.calls = append(f.rec.calls, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	f.rec.calls = append(f.rec.calls, "stop:"+f.name)
	return f.stopErr
}

func newFake(rec *recorder, name string, deps ...string) *fakeService {
	return &fakeService{name: name, deps: deps, rec: rec}
}

func TestRegisterDuplicate(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	if err := h.Register(newFake(rec, "terminal")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := h.Register(newFake(rec, "terminal")); err == nil {
		t.Fatal("expected error registering duplicate service")
	}
	if got := h.Names(); !reflect.DeepEqual(got, []string{"terminal"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	// Registered out of order on purpose
	h.Register(newFake(rec, "bell", "terminal"))
	h.Register(newFake(rec, "logger", "terminal"))
	h.Register(newFake(rec, "terminal"))

	if err := h.InitAll(); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := h.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{
		"init:terminal", "init:bell", "init:logger",
		"start:terminal", "start:bell", "start:logger",
		"stop:logger", "stop:bell", "stop:terminal",
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}

	// Second StopAll has nothing left to stop
	rec.calls = nil
	if err := h.StopAll(); err != nil {
		t.Fatalf("second StopAll: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("second StopAll called %v", rec.calls)
	}
}

func TestInitArgs(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	svc := newFake(rec, "bell")
	h.Register(svc, "tone", 3)

	if err := h.InitAll(); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if !reflect.DeepEqual(svc.args, []any{"tone", 3}) {
		t.Errorf("args = %v", svc.args)
	}
}

func TestMissingDependency(t *testing.T) {
	h := NewHub()
	h.Register(newFake(&recorder{}, "bell", "terminal"))

	err := h.InitAll()
	if err == nil || !strings.Contains(err.Error(), "unregistered service: terminal") {
		t.Fatalf("InitAll error = %v", err)
	}
}

func TestCircularDependency(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	h.Register(newFake(rec, "a", "b"))
	h.Register(newFake(rec, "b", "a"))

	err := h.InitAll()
	if err == nil || !strings.Contains(err.Error(), "circular") {
		t.Fatalf("InitAll error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("services touched despite cycle: %v", rec.calls)
	}
}

func TestStartBeforeInit(t *testing.T) {
	h := NewHub()
	h.Register(newFake(&recorder{}, "terminal"))
	if err := h.StartAll(); err == nil {
		t.Fatal("expected error starting before InitAll")
	}
}

func TestInitFailureStopsInitialized(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	h.Register(newFake(rec, "terminal"))
	bell := newFake(rec, "bell", "terminal")
	bell.initErr = errors.New("no device")
	h.Register(bell)

	err := h.InitAll()
	if !errors.Is(err, bell.initErr) {
		t.Fatalf("InitAll error = %v", err)
	}
	want := []string{"init:terminal", "init:bell", "stop:terminal"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	h.Register(newFake(rec, "terminal"))
	bell := newFake(rec, "bell", "terminal")
	bell.startErr = errors.New("busy")
	h.Register(bell)

	if err := h.InitAll(); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	rec.calls = nil
	if err := h.StartAll(); !errors.Is(err, bell.startErr) {
		t.Fatalf("StartAll error = %v", err)
	}
	want := []string{"start:terminal", "start:bell", "stop:terminal"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}

	// Nothing counts as started after a rollback
	rec.calls = nil
	h.StopAll()
	if len(rec.calls) != 0 {
		t.Errorf("StopAll after rollback called %v", rec.calls)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	a := newFake(rec, "a")
	a.stopErr = errors.New("a failed")
	b := newFake(rec, "b")
	b.stopErr = errors.New("b failed")
	h.Register(a)
	h.Register(b)

	h.InitAll()
	h.StartAll()
	err := h.StopAll()
	if !errors.Is(err, a.stopErr) || !errors.Is(err, b.stopErr) {
		t.Fatalf("StopAll error = %v", err)
	}
	want := []string{"init:a", "init:b", "start:a", "start:b", "stop:b", "stop:a"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v\nwant %v", rec.calls, want)
	}
}

func TestMustGet(t *testing.T) {
	h := NewHub()
	svc := newFake(&recorder{}, "terminal")
	h.Register(svc)

	if got := MustGet[*fakeService](h, "terminal"); got != svc {
		t.Errorf("MustGet returned %p, want %p", got, svc)
	}
	if _, ok := h.Get("bell"); ok {
		t.Error("Get found unregistered service")
	}

	assertPanics(t, func() { MustGet[*fakeService](h, "bell") })
	assertPanics(t, func() { MustGet[*recorder](h, "terminal") })
}

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	fn()
}
