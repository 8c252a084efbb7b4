package dialogue

type Mode string

const (
	ModeUnset      Mode = ""
	ModeSimulation Mode = "simulation"
	ModeLive       Mode = "live"
)

type Screen string

const (
	ScreenModeSelect Screen = "mode_select"
	ScreenStart      Screen = "start"
	ScreenMain       Screen = "main"
	ScreenService    Screen = "service"
)

type Service string

const (
	ServiceNone      Service = ""
	ServiceReception Service = "reception"
	ServiceLookup    Service = "lookup"
	ServiceDirection Service = "direction"
)

type Step string

const (
	StepNone Step = ""

	StepName           Step = "name"
	StepConfirmName    Step = "confirmName"
	StepPhone          Step = "phone"
	StepConfirmPhone   Step = "confirmPhone"
	StepAddress        Step = "address"
	StepConfirmAddress Step = "confirmAddress"
	StepSymptom        Step = "symptom"
	StepConfirmTriage  Step = "confirmTriage"
	StepFinish         Step = "finish"

	StepLookupName  Step = "lookupName"
	StepLookupPhone Step = "lookupPhone"
	StepShowResult  Step = "showResult"

	StepDirection     Step = "direction"
	StepShowDirection Step = "showDirection"
)

type Patient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Symptom string `json:"symptom"`
}

type LookupQuery struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ReceptionResult struct {
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// Flow is the state of one service conversation. It only exists on the service screen.
type Flow struct {
	Service             Service
	Step                Step
	Patient             Patient
	Lookup              LookupQuery
	PredictedDepartment string
	Reception           *ReceptionResult
}

// Policy holds the misunderstanding counters of one session.
type Policy struct {
	ErrorCount int
	RetryCount int
}

type Session struct {
	Mode        Mode
	Screen      Screen
	Flow        *Flow
	Policy      Policy
	StaffCalled bool
}

type Reply struct {
	Text     string
	Escalate bool
}

func (s Session) Service() Service {
	if s.Flow == nil {
		return ServiceNone
	}
	return s.Flow.Service
}

func (s Session) Step() Step {
	if s.Flow == nil {
		return StepNone
	}
	return s.Flow.Step
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	if s.Flow == nil {
		return s
	}
	flow := *s.Flow
	if s.Flow.Reception != nil {
		reception := *s.Flow.Reception
		flow.Reception = &reception
	}
	s.Flow = &flow
	return s
}
