package kioskService

import (
	"HospitalKiosk/internal/api/kiosk"
	contextPkg "HospitalKiosk/pkg/context"
	"HospitalKiosk/pkg/dialogue"
	"HospitalKiosk/pkg/simulator"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func (s *kioskService) CreateSession(ctx context.Context) (*kiosk.SessionView, error) {
	s.mu.Lock()
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		return nil, kiosk.ErrSessionLimit
	}
	a := newSessionActor(uuid.NewString(), s)
	s.sessions[a.id] = a
	s.mu.Unlock()

	go a.run()

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": a.id,
	}).Info("Kiosk session created")

	return s.snapshot(ctx, a)
}

func (s *kioskService) GetSession(ctx context.Context, sessionID string) (*kiosk.SessionView, error) {
	a, err := s.actor(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, a)
}

func (s *kioskService) snapshot(ctx context.Context, a *sessionActor) (*kiosk.SessionView, error) {
	var view kiosk.SessionView
	if err := a.do(ctx, func(a *sessionActor) {
		view = a.view()
	}); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *kioskService) CloseSession(ctx context.Context, sessionID string) error {
	a := s.remove(sessionID)
	if a == nil {
		return kiosk.ErrSessionNotFound
	}
	a.stop()

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"session_id": sessionID,
	}).Info("Kiosk session closed")
	return nil
}

func (s *kioskService) SelectMode(ctx context.Context, sessionID string, simulation bool) (*kiosk.TurnResponse, error) {
	mode := dialogue.ModeLive
	if simulation {
		mode = dialogue.ModeSimulation
	}

	return s.command(ctx, sessionID, func(a *sessionActor) dialogue.Reply {
		a.abortTurn()
		a.cancelStaffReset()
		reply := dialogue.Reply{Text: dialogue.PromptStart}
		a.commit(contextPkg.GetRequestID(ctx), a.session.SelectMode(mode), reply, "")
		return reply
	})
}

func (s *kioskService) Start(ctx context.Context, sessionID string) (*kiosk.TurnResponse, error) {
	return s.command(ctx, sessionID, func(a *sessionActor) dialogue.Reply {
		next, reply := a.session.Start()
		a.commit(contextPkg.GetRequestID(ctx), next, reply, "")
		return reply
	})
}

func (s *kioskService) Reset(ctx context.Context, sessionID string, target kiosk.ResetTarget) (*kiosk.TurnResponse, error) {
	var reset func(dialogue.Session) dialogue.Session
	switch target {
	case kiosk.ResetMain:
		reset = dialogue.Session.ResetToMain
	case kiosk.ResetServices:
		reset = dialogue.Session.GoBackToServices
	case kiosk.ResetStart:
		reset = dialogue.Session.ResetToStart
	case kiosk.ResetMode:
		reset = dialogue.Session.ResetToModeSelection
	default:
		return nil, kiosk.ErrInvalidResetTarget
	}

	return s.command(ctx, sessionID, func(a *sessionActor) dialogue.Reply {
		a.abortTurn()
		a.cancelStaffReset()
		next := reset(a.session)
		reply := dialogue.Reply{Text: dialogue.StandingPrompt(next)}
		a.commit(contextPkg.GetRequestID(ctx), next, reply, "")
		return reply
	})
}

// ReportError handles input the kiosk could not capture at all. It counts as
// a misunderstanding and shares the staff escalation path.
func (s *kioskService) ReportError(ctx context.Context, sessionID string, reason string) (*kiosk.TurnResponse, error) {
	return s.command(ctx, sessionID, func(a *sessionActor) dialogue.Reply {
		if a.session.StaffCalled {
			return dialogue.Reply{Text: dialogue.PromptStaffArriving}
		}

		next, text, escalate := dialogue.ReportError(a.session)
		reply := dialogue.Reply{Text: text, Escalate: escalate}

		why := "unsupported_capability"
		if reason = strings.TrimSpace(reason); reason != "" {
			why += ": " + reason
		}
		a.commit(contextPkg.GetRequestID(ctx), next, reply, why)
		return reply
	})
}

func (s *kioskService) SelectService(ctx context.Context, sessionID string, service string) (*kiosk.TurnResponse, error) {
	svc, ok := dialogue.ParseService(service)
	if !ok {
		return nil, kiosk.ErrInvalidService
	}

	a, err := s.actor(sessionID)
	if err != nil {
		return nil, err
	}

	return a.beginTurn(ctx, func(ctx context.Context, session dialogue.Session) (dialogue.Session, dialogue.Reply, turnInput) {
		next, reply := s.controller.SelectService(ctx, session, svc)
		return next, reply, turnInput{utterance: dialogue.ServiceLabel(svc)}
	})
}

func (s *kioskService) HandleUtterance(ctx context.Context, sessionID string, text string) (*kiosk.TurnResponse, error) {
	a, err := s.actor(sessionID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	return a.beginTurn(ctx, func(ctx context.Context, session dialogue.Session) (dialogue.Session, dialogue.Reply, turnInput) {
		next, reply := s.controller.HandleUtterance(ctx, session, text)
		return next, reply, turnInput{utterance: text}
	})
}

// HandleAudio recognizes a recorded utterance and handles the transcript.
// Recognition runs inside the turn so a reset can cancel it. Only recognized
// text goes through the normalizer; typed input keeps its + and / characters.
func (s *kioskService) HandleAudio(ctx context.Context, sessionID string, filename string, data []byte) (*kiosk.TurnResponse, error) {
	if len(data) == 0 {
		return nil, kiosk.ErrAudioRequired
	}

	a, err := s.actor(sessionID)
	if err != nil {
		return nil, err
	}

	return a.beginTurn(ctx, func(ctx context.Context, session dialogue.Session) (dialogue.Session, dialogue.Reply, turnInput) {
		text := s.normalize(s.recognize(ctx, session.Mode, filename, data))
		next, reply := s.controller.HandleUtterance(ctx, session, text)
		return next, reply, turnInput{
			utterance: text,
			recording: &recording{filename: filename, data: data},
		}
	})
}

func (s *kioskService) Subscribe(sessionID string) (<-chan kiosk.Event, func(), error) {
	a, err := s.actor(sessionID)
	if err != nil {
		return nil, nil, err
	}
	events, cancel := a.hub.subscribe()
	return events, cancel, nil
}

// command applies fn on the session actor and publishes the reply from there,
// so events keep the order in which the actor handled them. Live replies are
// voiced afterwards and their audio follows as a separate event.
func (s *kioskService) command(ctx context.Context, sessionID string, fn func(a *sessionActor) dialogue.Reply) (*kiosk.TurnResponse, error) {
	a, err := s.actor(sessionID)
	if err != nil {
		return nil, err
	}

	var resp kiosk.TurnResponse
	if err := a.do(ctx, func(a *sessionActor) {
		resp = a.response("", fn(a))
		if dialogue.Mode(resp.Session.Mode) == dialogue.ModeLive {
			resp.Audio = kiosk.AudioView{}
		}
		turn := resp
		a.hub.publish(kiosk.Event{Type: kiosk.EventTurn, Turn: &turn})
	}); err != nil {
		return nil, err
	}

	if dialogue.Mode(resp.Session.Mode) != dialogue.ModeLive {
		return &resp, nil
	}

	resp.Audio = s.speak(ctx, dialogue.Mode(resp.Session.Mode), resp.Text)
	voiced := resp
	_ = a.do(context.WithoutCancel(ctx), func(a *sessionActor) {
		a.hub.publish(kiosk.Event{Type: kiosk.EventAudio, Turn: &voiced})
	})

	return &resp, nil
}

// speak voices a reply. Simulation mode never reaches the backend.
func (s *kioskService) speak(ctx context.Context, mode dialogue.Mode, text string) kiosk.AudioView {
	if mode != dialogue.ModeLive || s.gateway == nil || text == "" {
		return kiosk.AudioView{Simulated: true}
	}
	speech := s.gateway.Speak(ctx, text)
	return kiosk.AudioView{Path: speech.AudioPath, Simulated: speech.Simulated}
}

func (s *kioskService) recognize(ctx context.Context, mode dialogue.Mode, filename string, data []byte) string {
	if mode != dialogue.ModeLive || s.gateway == nil {
		return simulator.Transcript(nil)
	}
	upload := s.gateway.UploadAudio(ctx, filename, data)
	return s.gateway.Recognize(ctx, upload).Text
}

func (s *kioskService) normalize(text string) string {
	if s.normalizer == nil {
		return strings.TrimSpace(text)
	}
	return s.normalizer.Normalize(text)
}
