package dialogue

import (
	"HospitalKiosk/pkg/simulator"
	"context"
	"strings"
	"sync"
	"testing"
)

type fakeGateway struct {
	mu      sync.Mutex
	replies map[simulator.Tag]string
	down    bool
	asked   []simulator.Tag
	queried []string
}

func (f *fakeGateway) Ask(_ context.Context, text string, tag simulator.Tag) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, tag)
	if reply, ok := f.replies[tag]; ok && !f.down {
		return reply
	}
	return simulator.Reply(text, tag)
}

func (f *fakeGateway) Query(_ context.Context, text string, tag simulator.Tag) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, text)
	if f.down {
		return "", false
	}
	return f.replies[tag], true
}

func newTestController(gw Gateway) *Controller {
	return NewController(gw, simulator.New(0), nil)
}

func mainSession(mode Mode) Session {
	return Session{Mode: mode, Screen: ScreenMain}
}

func atStep(mode Mode, service Service, step Step) Session {
	return Session{Mode: mode, Screen: ScreenService, Flow: &Flow{Service: service, Step: step}}
}

func TestRouteIntent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want Service
		ok   bool
	}{
		{"접수내역 확인하고 싶어요", ServiceLookup, true},
		{"접수 내역", ServiceLookup, true},
		{"내역 좀 보여주세요", ServiceLookup, true},
		{"접수하러 왔어요", ServiceReception, true},
		{"길 찾기", ServiceDirection, true},
		{"길찾아 주세요", ServiceDirection, true},
		{"안녕하세요", ServiceNone, false},
	}

	for _, tc := range cases {
		got, ok := RouteIntent(tc.text)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("RouteIntent(%q) = (%q, %v), want (%q, %v)", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoutingSelectsLookupBeforeReception(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	next, reply := c.HandleUtterance(context.Background(), mainSession(ModeSimulation), "접수내역 확인하고 싶어요")

	if next.Service() != ServiceLookup || next.Step() != StepLookupName {
		t.Fatalf("unexpected routing: service=%q step=%q", next.Service(), next.Step())
	}
	if next.Screen != ScreenService {
		t.Fatalf("expected service screen, got %q", next.Screen)
	}
	if reply.Text != "접수 내역을 확인하겠습니다. 이름을 말씀해주세요." {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
}

func TestRoutingNoMatchKeepsSession(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	s := mainSession(ModeSimulation)
	s.Policy.ErrorCount = 1

	next, reply := c.HandleUtterance(context.Background(), s, "오늘 날씨 어때요")
	if reply.Text != PromptRouting {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
	if next.Flow != nil || next.Screen != ScreenMain || next.Policy != s.Policy {
		t.Fatalf("session changed on routing miss: %+v", next)
	}
}

func TestNameStepQuotesName(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	next, reply := c.HandleUtterance(context.Background(), atStep(ModeSimulation, ServiceReception, StepName), "김철수")

	if reply.Text != "김철수님, 맞습니까?" {
		t.Fatalf("unexpected prompt: %q", reply.Text)
	}
	if next.Step() != StepConfirmName {
		t.Fatalf("unexpected step: %q", next.Step())
	}
	if next.Flow.Patient.Name != "김철수" {
		t.Fatalf("name not stored: %+v", next.Flow.Patient)
	}
}

func TestHandleUtteranceDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	s := atStep(ModeSimulation, ServiceReception, StepName)
	_, _ = c.HandleUtterance(context.Background(), s, "김철수")

	if s.Flow.Step != StepName || s.Flow.Patient.Name != "" {
		t.Fatalf("input session was mutated: %+v", s.Flow)
	}
}

func TestConfirmationRetryCounting(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	ctx := context.Background()
	s := atStep(ModeSimulation, ServiceReception, StepName)

	s, _ = c.HandleUtterance(ctx, s, "김철수")
	s, reply := c.HandleUtterance(ctx, s, "아니오")
	if reply.Text != PromptRetryName || s.Step() != StepName || s.Policy.RetryCount != 1 {
		t.Fatalf("first negative: reply=%q step=%q retry=%d", reply.Text, s.Step(), s.Policy.RetryCount)
	}

	s, _ = c.HandleUtterance(ctx, s, "김철수")
	s, _ = c.HandleUtterance(ctx, s, "틀렸어요")
	if s.Policy.RetryCount != 2 {
		t.Fatalf("expected retry count 2, got %d", s.Policy.RetryCount)
	}

	s, _ = c.HandleUtterance(ctx, s, "김철수")
	s, reply = c.HandleUtterance(ctx, s, "네 맞아요")
	if reply.Text != PromptAskPhone || s.Step() != StepPhone {
		t.Fatalf("affirmative: reply=%q step=%q", reply.Text, s.Step())
	}
	if s.Policy.RetryCount != 0 {
		t.Fatalf("retry count not cleared after affirmative: %d", s.Policy.RetryCount)
	}
}

func TestThirdNegativeEscalates(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	s := atStep(ModeSimulation, ServiceReception, StepConfirmName)
	s.Flow.Patient.Name = "김철수"
	s.Policy.RetryCount = 2

	next, reply := c.HandleUtterance(context.Background(), s, "아니오")
	if !reply.Escalate {
		t.Fatalf("expected escalation")
	}
	if reply.Text != PromptRetryExceeded {
		t.Fatalf("unexpected escalation text: %q", reply.Text)
	}
	if !next.StaffCalled {
		t.Fatalf("expected staff handoff state")
	}
	if next.Policy.ErrorCount != 0 {
		t.Fatalf("retry escalation must not touch error count: %d", next.Policy.ErrorCount)
	}

	after, reply := c.HandleUtterance(context.Background(), next, "여보세요")
	if reply.Text != PromptStaffArriving || after.Step() != next.Step() {
		t.Fatalf("utterance during handoff changed state: reply=%q", reply.Text)
	}
}

func TestUnclearConfirmationAsksForYesOrNo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		step  Step
		input string
		want  string
	}{
		{StepName, "김철수", PromptUnclearConfirm},
		{StepPhone, "010-1234-5678", PromptUnclearConfirm},
		{StepAddress, "서울시 강남구", PromptUnclearConfirm},
		{StepSymptom, "머리가 아파요", PromptUnclearTriage},
	}

	for _, tc := range cases {
		c := newTestController(nil)
		ctx := context.Background()

		s, _ := c.HandleUtterance(ctx, atStep(ModeSimulation, ServiceReception, tc.step), tc.input)
		confirmStep := s.Step()

		next, reply := c.HandleUtterance(ctx, s, "글쎄요")
		if reply.Text != tc.want {
			t.Fatalf("%s: unclear reply = %q, want %q", confirmStep, reply.Text, tc.want)
		}
		if next.Step() != confirmStep || next.Policy != s.Policy || reply.Escalate {
			t.Fatalf("%s: unclear answer changed state: step=%q policy=%+v", confirmStep, next.Step(), next.Policy)
		}
	}
}

func TestReceptionFlowSimulation(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	ctx := context.Background()
	s, reply := c.SelectService(ctx, mainSession(ModeSimulation), ServiceReception)
	if reply.Text != "접수를 시작하겠습니다. 이름을 말씀해주세요." {
		t.Fatalf("unexpected service reply: %q", reply.Text)
	}

	steps := []struct {
		input string
		step  Step
		reply string
	}{
		{"김철수", StepConfirmName, "김철수님, 맞습니까?"},
		{"네", StepPhone, PromptAskPhone},
		{"010-1234-5678", StepConfirmPhone, "010-1234-5678 번호가 맞습니까?"},
		{"맞습니다", StepAddress, PromptAskAddress},
		{"서울시 강남구", StepConfirmAddress, "서울시 강남구 주소가 맞습니까?"},
		{"응", StepSymptom, PromptAskSymptom},
		{"두통이 있어요", StepConfirmTriage, "그런 증상은 신경과가 적절합니다.\n\n이 진료과로 접수해 드릴까요?"},
	}
	for _, st := range steps {
		s, reply = c.HandleUtterance(ctx, s, st.input)
		if s.Step() != st.step || reply.Text != st.reply {
			t.Fatalf("after %q: step=%q reply=%q, want step=%q reply=%q", st.input, s.Step(), reply.Text, st.step, st.reply)
		}
	}
	if s.Flow.PredictedDepartment != "신경과" {
		t.Fatalf("unexpected predicted department: %q", s.Flow.PredictedDepartment)
	}

	s, reply = c.HandleUtterance(ctx, s, "네 해줘")
	if s.Step() != StepFinish {
		t.Fatalf("expected finish, got %q", s.Step())
	}
	if s.Flow.Reception == nil || s.Flow.Reception.Department != s.Flow.PredictedDepartment {
		t.Fatalf("reception department mismatch: %+v", s.Flow.Reception)
	}
	if s.Flow.Reception.Date != "2025년 7월 29일" || s.Flow.Reception.Time != "오전 10시" {
		t.Fatalf("unexpected schedule: %+v", s.Flow.Reception)
	}
	if !strings.HasPrefix(reply.Text, "접수가 완료되었습니다. 신경과는") {
		t.Fatalf("unexpected completion: %q", reply.Text)
	}

	s, reply = c.HandleUtterance(ctx, s, "고맙습니다")
	if s.Step() != StepFinish || reply.Text == "" {
		t.Fatalf("finish follow-up: step=%q reply=%q", s.Step(), reply.Text)
	}
}

func TestTriageDepartments(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"두통이 심해요": "신경과",
		"복통이 있어요": "내과",
		"눈이 가려워요": "내과",
		"무릎이 아파요": "정형외과",
	}

	c := newTestController(nil)
	for symptom, dept := range cases {
		next, _ := c.HandleUtterance(context.Background(), atStep(ModeSimulation, ServiceReception, StepSymptom), symptom)
		if next.Flow.PredictedDepartment != dept {
			t.Fatalf("symptom %q: department %q, want %q", symptom, next.Flow.PredictedDepartment, dept)
		}
	}
}

func TestExtractDepartmentDefault(t *testing.T) {
	t.Parallel()

	if got := ExtractDepartment("잘 모르겠습니다"); got != simulator.DefaultDepartment {
		t.Fatalf("unexpected department: %q", got)
	}
}

func TestDeclinedTriageReturnsToMain(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	s := atStep(ModeSimulation, ServiceReception, StepConfirmTriage)
	s.Policy = Policy{ErrorCount: 1, RetryCount: 1}

	next, reply := c.HandleUtterance(context.Background(), s, "아니")
	if reply.Text != PromptReceptionDeclined {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
	if next.Screen != ScreenMain || next.Flow != nil || next.Policy != (Policy{}) {
		t.Fatalf("expected clean main session, got %+v", next)
	}
}

func TestLookupFlow(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	ctx := context.Background()
	s := atStep(ModeSimulation, ServiceLookup, StepLookupName)

	s, reply := c.HandleUtterance(ctx, s, "김철수")
	if reply.Text != "김철수님, 전화번호를 말씀해주세요." || s.Step() != StepLookupPhone {
		t.Fatalf("lookup name: step=%q reply=%q", s.Step(), reply.Text)
	}

	s, reply = c.HandleUtterance(ctx, s, "010-1234-5678")
	if s.Step() != StepShowResult || !strings.HasPrefix(reply.Text, "김철수님은 2025년 7월 29일") {
		t.Fatalf("lookup phone: step=%q reply=%q", s.Step(), reply.Text)
	}

	s, reply = c.HandleUtterance(ctx, s, "감사합니다")
	if s.Screen != ScreenMain || s.Flow != nil || reply.Text != PromptMain {
		t.Fatalf("show result did not return to main: %+v %q", s, reply.Text)
	}
}

func TestDirectionFlow(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	ctx := context.Background()
	s := atStep(ModeSimulation, ServiceDirection, StepDirection)

	s, reply := c.HandleUtterance(ctx, s, "주차장")
	if s.Step() != StepShowDirection || !strings.HasPrefix(reply.Text, "주차장은 지하 1층과 2층에") {
		t.Fatalf("direction: step=%q reply=%q", s.Step(), reply.Text)
	}

	s, _ = c.HandleUtterance(ctx, s, "네")
	if s.Screen != ScreenMain || s.Flow != nil {
		t.Fatalf("show direction did not return to main: %+v", s)
	}
}

func TestLiveModeUsesGateway(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{replies: map[simulator.Tag]string{
		simulator.TagDirection: "3층 엘리베이터 옆입니다.",
	}}
	c := newTestController(gw)

	_, reply := c.HandleUtterance(context.Background(), atStep(ModeLive, ServiceDirection, StepDirection), "영상의학과")
	if reply.Text != "3층 엘리베이터 옆입니다." {
		t.Fatalf("unexpected live reply: %q", reply.Text)
	}
	if len(gw.asked) != 1 || gw.asked[0] != simulator.TagDirection {
		t.Fatalf("gateway not asked: %v", gw.asked)
	}
}

func TestSimulationModeNeverCallsGateway(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	c := newTestController(gw)
	s := atStep(ModeSimulation, ServiceReception, StepConfirmName)

	_, _ = c.HandleUtterance(context.Background(), s, "네")
	if len(gw.asked) != 0 || len(gw.queried) != 0 {
		t.Fatalf("simulation mode reached the gateway: asked=%v queried=%v", gw.asked, gw.queried)
	}
}

func TestLiveClassifier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	gw := &fakeGateway{replies: map[simulator.Tag]string{simulator.TagClassify: "부정"}}
	if got := NewClassifier(gw).Classify(ctx, ModeLive, "네"); got != Negative {
		t.Fatalf("expected backend verdict, got %v", got)
	}

	down := &fakeGateway{down: true}
	if got := NewClassifier(down).Classify(ctx, ModeLive, "네"); got != Unclear {
		t.Fatalf("gateway failure must classify as unclear, got %v", got)
	}

	if got := NewClassifier(down).Classify(ctx, ModeSimulation, "네"); got != Affirmative {
		t.Fatalf("simulation classification ignored keywords, got %v", got)
	}
}

func TestBlankUtteranceCountsAsError(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	s := atStep(ModeSimulation, ServiceReception, StepName)

	want := []string{PromptRepeat, PromptRepeatOrTouch, PromptStaffCall}
	for i, text := range want {
		var reply Reply
		s, reply = c.HandleUtterance(context.Background(), s, "  ")
		if reply.Text != text {
			t.Fatalf("error %d: reply %q, want %q", i+1, reply.Text, text)
		}
		if reply.Escalate != (i == 2) {
			t.Fatalf("error %d: escalate=%v", i+1, reply.Escalate)
		}
	}
	if !s.StaffCalled || s.Step() != StepName {
		t.Fatalf("unexpected session after escalation: %+v", s)
	}
}

func TestIdleScreensAnswerWithStandingPrompt(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)

	_, reply := c.HandleUtterance(context.Background(), NewSession(), "접수")
	if reply.Text != PromptModeSelect {
		t.Fatalf("mode select reply: %q", reply.Text)
	}

	start := NewSession().SelectMode(ModeSimulation)
	next, reply := c.SelectService(context.Background(), start, ServiceReception)
	if reply.Text != PromptStart || next.Flow != nil {
		t.Fatalf("start screen accepted a service: %q %+v", reply.Text, next)
	}
}
