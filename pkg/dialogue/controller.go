package dialogue

import (
	"HospitalKiosk/pkg/simulator"
	"context"
	"strings"
)

// Controller decides the next session state and spoken reply for every input.
// It holds no session state itself.
type Controller struct {
	gateway    Gateway
	simulator  simulator.IResponder
	classifier *Classifier
	scheduler  Scheduler
}

func NewController(gateway Gateway, sim simulator.IResponder, scheduler Scheduler) *Controller {
	if scheduler == nil {
		scheduler = NewFixedScheduler()
	}
	return &Controller{
		gateway:    gateway,
		simulator:  sim,
		classifier: NewClassifier(gateway),
		scheduler:  scheduler,
	}
}

func (c *Controller) HandleUtterance(ctx context.Context, s Session, text string) (Session, Reply) {
	s = s.Clone()

	if s.StaffCalled {
		return s, Reply{Text: PromptStaffArriving}
	}
	if s.Screen == ScreenModeSelect || s.Screen == ScreenStart {
		return s, Reply{Text: StandingPrompt(s)}
	}
	if strings.TrimSpace(text) == "" {
		next, msg, esc := ReportError(s)
		return next, Reply{Text: msg, Escalate: esc}
	}

	if s.Flow == nil {
		service, ok := RouteIntent(text)
		if !ok {
			return s, Reply{Text: PromptRouting}
		}
		return c.SelectService(ctx, s, service)
	}

	return c.advance(ctx, s, text)
}

// SelectService enters a service at its first step, as a menu button does.
func (c *Controller) SelectService(ctx context.Context, s Session, service Service) (Session, Reply) {
	s = s.Clone()

	if s.StaffCalled {
		return s, Reply{Text: PromptStaffArriving}
	}
	if s.Screen == ScreenModeSelect || s.Screen == ScreenStart {
		return s, Reply{Text: StandingPrompt(s)}
	}
	step := firstStep(service)
	if step == StepNone {
		return s, Reply{Text: PromptRouting}
	}

	s.Screen = ScreenService
	s.Flow = &Flow{Service: service, Step: step}
	return s, Reply{Text: c.ask(ctx, s.Mode, serviceRequest[service], simulator.TagServiceSelection)}
}

func (c *Controller) advance(ctx context.Context, s Session, text string) (Session, Reply) {
	r, ok := table[s.Flow.Step]
	if !ok {
		next, msg, esc := ReportError(s)
		return next, Reply{Text: msg, Escalate: esc}
	}

	outcome := OutcomeAny
	if r.confirm {
		outcome = outcomeOf(c.classifier.Classify(ctx, s.Mode, text))
	}
	tr := r.on[outcome]

	if r.store != nil {
		r.store(s.Flow, text)
	}
	switch {
	case outcome == OutcomeAffirmative:
		s.Policy.RetryCount = 0
	case tr.effect == effectRetry:
		s.Policy.RetryCount++
		if s.Policy.RetryCount >= MaxRetries {
			return escalate(s, PromptRetryExceeded)
		}
	}

	reply := tr.say(&turn{ctx: ctx, ctrl: c, mode: s.Mode, flow: s.Flow, text: text})

	if tr.effect == effectResetToMain {
		return s.ResetToMain(), Reply{Text: reply}
	}
	if tr.next != StepNone {
		s.Flow.Step = tr.next
	}
	return s, Reply{Text: reply}
}

func (c *Controller) ask(ctx context.Context, mode Mode, text string, tag simulator.Tag) string {
	if mode == ModeLive && c.gateway != nil {
		return c.gateway.Ask(ctx, text, tag)
	}
	return c.simulator.Respond(ctx, text, tag)
}
