package kioskService

import (
	"HospitalKiosk/internal/api/kiosk"
	kioskRepository "HospitalKiosk/internal/api/kiosk/repository"
	"HospitalKiosk/internal/entity"
	"HospitalKiosk/pkg/backend"
	"HospitalKiosk/pkg/dialogue"
	"HospitalKiosk/pkg/nlp"
	"HospitalKiosk/pkg/simulator"
	"HospitalKiosk/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeGateway struct {
	mu      sync.Mutex
	asks    []string
	block   chan struct{}
	started chan struct{}
	heard   string
	voicing chan struct{}
}

func (f *fakeGateway) Exchange(ctx context.Context, text string, tag simulator.Tag) backend.Result {
	reply, _ := f.Query(ctx, text, tag)
	return backend.Result{Outcome: backend.OutcomeSuccess, Text: reply}
}

func (f *fakeGateway) Ask(ctx context.Context, text string, tag simulator.Tag) string {
	f.mu.Lock()
	f.asks = append(f.asks, text)
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ""
		}
	}
	return "backend: " + simulator.Reply(text, tag)
}

func (f *fakeGateway) Query(_ context.Context, text string, tag simulator.Tag) (string, bool) {
	return simulator.Reply(text, tag), true
}

func (f *fakeGateway) Recognize(context.Context, backend.Upload) backend.Transcript {
	return backend.Transcript{Text: f.heard}
}

func (f *fakeGateway) UploadAudio(_ context.Context, filename string, _ []byte) backend.Upload {
	return backend.Upload{FileID: "file-1", Extension: "webm"}
}

func (f *fakeGateway) Speak(ctx context.Context, _ string) backend.Speech {
	f.mu.Lock()
	voicing := f.voicing
	f.mu.Unlock()

	if voicing != nil {
		select {
		case <-voicing:
		case <-ctx.Done():
		}
	}
	return backend.Speech{AudioPath: "ttsaudio/reply.mp3"}
}

func (f *fakeGateway) FetchAudio(context.Context, string) ([]byte, string, error) {
	return nil, "", backend.ErrAudioNotFound
}

func (f *fakeGateway) Health(context.Context) backend.Health {
	return backend.Health{STT: true, LLM: true, TTS: true}
}

type fakeStore struct {
	mu          sync.Mutex
	turns       []entity.KioskTurn
	receptions  []entity.KioskReception
	escalations []entity.KioskEscalation
}

func (f *fakeStore) NewClient(bool) (kioskRepository.Client, error) {
	return kioskRepository.Client{
		Turns:       f,
		Receptions:  f,
		Escalations: f,
		Commit:      func() error { return nil },
		Rollback:    func() error { return nil },
	}, nil
}

func (f *fakeStore) CreateTurn(_ context.Context, turn entity.KioskTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeStore) GetTurnsBySessionID(context.Context, string, int) ([]entity.KioskTurn, error) {
	return nil, nil
}

func (f *fakeStore) CreateReception(_ context.Context, reception entity.KioskReception) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receptions = append(f.receptions, reception)
	return nil
}

func (f *fakeStore) CreateEscalation(_ context.Context, escalation entity.KioskEscalation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.escalations = append(f.escalations, escalation)
	return nil
}

func (f *fakeStore) GetEscalationByID(context.Context, string) (entity.KioskEscalation, error) {
	return entity.KioskEscalation{}, kiosk.ErrEscalationNotFound
}

func (f *fakeStore) GetOpenEscalations(context.Context, int) ([]entity.KioskEscalation, error) {
	return nil, nil
}

func (f *fakeStore) ResolveEscalation(context.Context, string, string) error {
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *KioskConfig {
	return &KioskConfig{
		StaffResetDelay: 20 * time.Millisecond,
		IdleTimeout:     time.Minute,
		HealthInterval:  time.Hour,
		MaxSessions:     4,
	}
}

func newTestService(t *testing.T, gw backend.IGateway, store *fakeStore) IKioskService {
	t.Helper()
	return newTestServiceWith(t, testConfig(), gw, store)
}

func newTestServiceWith(t *testing.T, cfg *KioskConfig, gw backend.IGateway, store *fakeStore) IKioskService {
	t.Helper()

	var repo kioskRepository.Repository
	if store != nil {
		repo = store
	}
	svc := NewKioskService(testLogger(), cfg, gw, repo, nil, nil, utils.New(), nlp.NewNormalizer(nlp.PickRight))
	t.Cleanup(svc.Shutdown)
	return svc
}

// openSession creates a session and walks it to the main menu.
func openSession(t *testing.T, svc IKioskService, simulation bool) string {
	t.Helper()
	ctx := context.Background()

	view, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := svc.SelectMode(ctx, view.ID, simulation); err != nil {
		t.Fatalf("select mode: %v", err)
	}
	if _, err := svc.Start(ctx, view.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	return view.ID
}

func say(t *testing.T, svc IKioskService, id string, text string) *kiosk.TurnResponse {
	t.Helper()
	resp, err := svc.HandleUtterance(context.Background(), id, text)
	if err != nil {
		t.Fatalf("utterance %q: %v", text, err)
	}
	return resp
}

func TestSessionWalkthrough(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeGateway{}, nil)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Screen != "mode_select" || view.Mode != "" {
		t.Fatalf("new session should wait for a mode: %+v", view)
	}

	resp, err := svc.SelectMode(ctx, view.ID, true)
	if err != nil {
		t.Fatalf("mode: %v", err)
	}
	if resp.Session.Screen != "start" || resp.Session.Mode != "simulation" {
		t.Fatalf("unexpected session after mode: %+v", resp.Session)
	}

	resp, err = svc.Start(ctx, view.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resp.Session.Screen != "main" {
		t.Fatalf("expected main screen, got %+v", resp.Session)
	}

	resp, err = svc.SelectService(ctx, view.ID, "reception")
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	if resp.Text != "접수를 시작하겠습니다. 이름을 말씀해주세요." {
		t.Fatalf("unexpected service reply: %q", resp.Text)
	}
	if resp.Session.Step != "name" || resp.Session.StepLabel != "성함 입력" {
		t.Fatalf("unexpected step: %+v", resp.Session)
	}
	if !resp.Audio.Simulated {
		t.Fatalf("simulation mode must not synthesize audio")
	}

	resp = say(t, svc, view.ID, "김철수")
	if resp.Text != "김철수님, 맞습니까?" || resp.Session.Step != "confirmName" {
		t.Fatalf("unexpected name turn: %q %+v", resp.Text, resp.Session)
	}
}

func TestReceptionIsRecorded(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(t, &fakeGateway{}, store)
	id := openSession(t, svc, true)

	if _, err := svc.SelectService(context.Background(), id, "reception"); err != nil {
		t.Fatalf("service: %v", err)
	}
	for _, text := range []string{"김철수", "네", "010-1234-5678", "네", "서울시 강남구", "네", "머리가 아파요"} {
		say(t, svc, id, text)
	}
	resp := say(t, svc, id, "네")

	if resp.Session.Step != "finish" || resp.Session.Reception == nil {
		t.Fatalf("reception should be complete: %+v", resp.Session)
	}
	if resp.Session.Reception.Department != "신경과" {
		t.Fatalf("unexpected department: %+v", resp.Session.Reception)
	}

	svc.Shutdown()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.receptions) != 1 {
		t.Fatalf("expected one reception record, got %d", len(store.receptions))
	}
	got := store.receptions[0]
	if got.PatientName != "김철수" || got.Phone != "010-1234-5678" || got.Department != "신경과" {
		t.Fatalf("unexpected reception record: %+v", got)
	}
	if len(store.turns) != 9 {
		t.Fatalf("expected 9 recorded turns, got %d", len(store.turns))
	}
}

func TestSecondTurnIsRejectedWhileBusy(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{block: make(chan struct{}), started: make(chan struct{}, 1)}
	svc := newTestService(t, gw, nil)
	id := openSession(t, svc, false)

	first := make(chan error, 1)
	go func() {
		_, err := svc.HandleUtterance(context.Background(), id, "접수하고 싶어요")
		first <- err
	}()
	<-gw.started

	if _, err := svc.HandleUtterance(context.Background(), id, "길찾기"); !errors.Is(err, kiosk.ErrTurnInProgress) {
		t.Fatalf("expected turn in progress, got %v", err)
	}

	view, err := svc.GetSession(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !view.Busy {
		t.Fatalf("session should report busy")
	}

	close(gw.block)
	if err := <-first; err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
}

func TestResetCancelsOutstandingTurn(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{block: make(chan struct{}), started: make(chan struct{}, 1)}
	t.Cleanup(func() { close(gw.block) })
	svc := newTestService(t, gw, nil)
	id := openSession(t, svc, false)

	first := make(chan error, 1)
	go func() {
		_, err := svc.HandleUtterance(context.Background(), id, "길찾기")
		first <- err
	}()
	<-gw.started

	resp, err := svc.Reset(context.Background(), id, kiosk.ResetStart)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if resp.Session.Screen != "start" || resp.Session.Busy {
		t.Fatalf("unexpected session after reset: %+v", resp.Session)
	}

	select {
	case err := <-first:
		if !errors.Is(err, kiosk.ErrTurnCanceled) {
			t.Fatalf("expected canceled turn, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("canceled turn never returned")
	}

	// The canceled turn must not land on the reset session.
	time.Sleep(20 * time.Millisecond)
	view, err := svc.GetSession(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Screen != "start" || view.Service != "" {
		t.Fatalf("late turn leaked into session: %+v", view)
	}
}

func TestStaffEscalationResetsToMain(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(t, &fakeGateway{}, store)
	id := openSession(t, svc, true)

	events, unsubscribe, err := svc.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	var resp *kiosk.TurnResponse
	for i := 0; i < 3; i++ {
		resp, err = svc.ReportError(context.Background(), id, "microphone unavailable")
		if err != nil {
			t.Fatalf("report error: %v", err)
		}
	}
	if !resp.Escalate || !resp.Session.StaffCalled || resp.Session.Status != "직원 호출 중..." {
		t.Fatalf("third error should call staff: %+v", resp)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != kiosk.EventStaff {
				continue
			}
			if ev.Turn.Text != "직원이 곧 도착합니다" {
				t.Fatalf("unexpected staff message: %q", ev.Turn.Text)
			}
			if ev.Turn.Session.Screen != "main" || ev.Turn.Session.StaffCalled || ev.Turn.Session.ErrorCount != 0 {
				t.Fatalf("session should be reset to main: %+v", ev.Turn.Session)
			}

			svc.Shutdown()
			store.mu.Lock()
			defer store.mu.Unlock()
			if len(store.escalations) != 1 || store.escalations[0].Status != entity.EscalationOpen {
				t.Fatalf("expected one open escalation, got %+v", store.escalations)
			}
			return
		case <-deadline:
			t.Fatalf("staff reset never happened")
		}
	}
}

func TestCommandEventsPrecedeVoicing(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	svc := newTestService(t, gw, nil)
	id := openSession(t, svc, false)

	events, unsubscribe, err := svc.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	voicing := make(chan struct{})
	gw.mu.Lock()
	gw.voicing = voicing
	gw.mu.Unlock()

	done := make(chan *kiosk.TurnResponse, 1)
	go func() {
		resp, err := svc.Reset(context.Background(), id, kiosk.ResetServices)
		if err != nil {
			t.Errorf("reset: %v", err)
		}
		done <- resp
	}()

	next := func() kiosk.Event {
		t.Helper()
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatalf("no event")
			return kiosk.Event{}
		}
	}

	ev := next()
	if ev.Type != kiosk.EventTurn || ev.Turn.Text != dialogue.PromptMain || ev.Turn.Audio.Path != "" {
		t.Fatalf("reset reply should be published before voicing: %+v", ev)
	}

	close(voicing)
	ev = next()
	if ev.Type != kiosk.EventAudio || ev.Turn.Audio.Path != "ttsaudio/reply.mp3" || ev.Turn.Text != dialogue.PromptMain {
		t.Fatalf("expected audio follow-up, got %+v", ev)
	}

	resp := <-done
	if resp == nil || resp.Audio.Path != "ttsaudio/reply.mp3" {
		t.Fatalf("caller should get the voiced reply: %+v", resp)
	}
}

func TestStaffCalledIgnoresInput(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.StaffResetDelay = time.Hour
	svc := newTestServiceWith(t, cfg, &fakeGateway{}, nil)
	id := openSession(t, svc, true)

	for i := 0; i < 3; i++ {
		say(t, svc, id, "   ")
	}
	resp := say(t, svc, id, "접수")
	if resp.Text != "직원이 곧 도착합니다" || resp.Session.Service != "" {
		t.Fatalf("input during staff call should be held: %q %+v", resp.Text, resp.Session)
	}
}

func TestLiveAudioIsNormalized(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{heard: "n/ (접수)/(접수를) 하고 싶어요"}
	svc := newTestService(t, gw, nil)
	id := openSession(t, svc, false)

	resp, err := svc.HandleAudio(context.Background(), id, "utterance.webm", []byte("RIFF"))
	if err != nil {
		t.Fatalf("audio: %v", err)
	}
	if resp.Utterance != "접수를 하고 싶어요" {
		t.Fatalf("unexpected transcript: %q", resp.Utterance)
	}
	if resp.Session.Service != "reception" {
		t.Fatalf("transcript should route to reception: %+v", resp.Session)
	}
	if resp.Audio.Simulated || resp.Audio.Path != "ttsaudio/reply.mp3" {
		t.Fatalf("live mode should synthesize audio: %+v", resp.Audio)
	}
	if resp.Session.Health == nil {
		t.Fatalf("live session should report backend health")
	}

	if _, err := svc.HandleAudio(context.Background(), id, "empty.webm", nil); !errors.Is(err, kiosk.ErrAudioRequired) {
		t.Fatalf("expected audio required, got %v", err)
	}
}

func TestTypedInputIsNotNormalized(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeGateway{}, nil)
	id := openSession(t, svc, true)

	if _, err := svc.SelectService(context.Background(), id, "reception"); err != nil {
		t.Fatalf("service: %v", err)
	}
	say(t, svc, id, "김철수")
	say(t, svc, id, "네")

	resp := say(t, svc, id, "  +82 10-1234-5678 ")
	if resp.Utterance != "+82 10-1234-5678" || resp.Text != "+82 10-1234-5678 번호가 맞습니까?" {
		t.Fatalf("typed phone was rewritten: utterance=%q reply=%q", resp.Utterance, resp.Text)
	}
	say(t, svc, id, "네")

	resp = say(t, svc, id, "서울시 강남구 12/3")
	if resp.Text != "서울시 강남구 12/3 주소가 맞습니까?" {
		t.Fatalf("typed address was rewritten: %q", resp.Text)
	}
	if resp.Session.Patient == nil || resp.Session.Patient.Phone != "+82 10-1234-5678" {
		t.Fatalf("unexpected patient: %+v", resp.Session.Patient)
	}
}

func TestSimulationModeHasNoHealth(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeGateway{}, nil)
	id := openSession(t, svc, true)

	view, err := svc.GetSession(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Health != nil {
		t.Fatalf("simulation mode must not probe the backend")
	}
}

func TestInvalidInputs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeGateway{}, nil)
	id := openSession(t, svc, true)
	ctx := context.Background()

	if _, err := svc.SelectService(ctx, id, "billing"); !errors.Is(err, kiosk.ErrInvalidService) {
		t.Fatalf("expected invalid service, got %v", err)
	}
	if _, err := svc.Reset(ctx, id, kiosk.ResetTarget("lobby")); !errors.Is(err, kiosk.ErrInvalidResetTarget) {
		t.Fatalf("expected invalid reset target, got %v", err)
	}
	if _, err := svc.HandleUtterance(ctx, "missing", "네"); !errors.Is(err, kiosk.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestCloseAndReap(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeGateway{}, nil)
	ctx := context.Background()

	closed := openSession(t, svc, true)
	if err := svc.CloseSession(ctx, closed); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.GetSession(ctx, closed); !errors.Is(err, kiosk.ErrSessionNotFound) {
		t.Fatalf("closed session still reachable: %v", err)
	}

	idle := openSession(t, svc, true)
	svc.(*kioskService).reapIdle(time.Now().Add(2 * time.Minute))
	if _, err := svc.GetSession(ctx, idle); !errors.Is(err, kiosk.ErrSessionNotFound) {
		t.Fatalf("idle session should be reaped: %v", err)
	}
}

func TestSessionLimit(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeGateway{}, nil)
	for i := 0; i < 4; i++ {
		if _, err := svc.CreateSession(context.Background()); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := svc.CreateSession(context.Background()); !errors.Is(err, kiosk.ErrSessionLimit) {
		t.Fatalf("expected session limit, got %v", err)
	}
}
