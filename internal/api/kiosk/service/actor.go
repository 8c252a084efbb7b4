package kioskService

import (
	"HospitalKiosk/internal/api/kiosk"
	"HospitalKiosk/pkg/backend"
	contextPkg "HospitalKiosk/pkg/context"
	"HospitalKiosk/pkg/dialogue"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type message func(a *sessionActor)

// turnInput is what a turn heard, for the reply and the turn record.
type turnInput struct {
	utterance string
	recording *recording
}

type turnFunc func(ctx context.Context, s dialogue.Session) (dialogue.Session, dialogue.Reply, turnInput)

type turnResult struct {
	resp kiosk.TurnResponse
	err  error
}

type pendingTurn struct {
	generation uint64
	requestID  string
	cancel     context.CancelFunc
	result     chan turnResult
	once       sync.Once
}

// resolve answers the waiting caller. Only the first answer counts.
func (p *pendingTurn) resolve(res turnResult) {
	p.once.Do(func() {
		p.result <- res
	})
}

// sessionActor owns one kiosk session. Every field below the hub is only
// touched from run().
type sessionActor struct {
	id    string
	svc   *kioskService
	log   *logrus.Entry
	inbox chan message
	done  chan struct{}
	hub   *hub

	lastActive atomic.Int64
	stopOnce   sync.Once

	session       dialogue.Session
	turn          *pendingTurn
	generation    uint64
	staffToken    uint64
	staffTimer    *time.Timer
	probe         *backend.Probe
	stopProbe     context.CancelFunc
	speakingUntil time.Time
	closed        bool
}

func newSessionActor(id string, svc *kioskService) *sessionActor {
	a := &sessionActor{
		id:      id,
		svc:     svc,
		log:     svc.log.WithField("session_id", id),
		inbox:   make(chan message),
		done:    make(chan struct{}),
		hub:     newHub(),
		session: dialogue.NewSession(),
	}
	a.touch()
	return a
}

func (a *sessionActor) run() {
	for msg := range a.inbox {
		msg(a)
		if a.closed {
			close(a.done)
			return
		}
	}
}

func (a *sessionActor) post(msg message) bool {
	select {
	case a.inbox <- msg:
		return true
	case <-a.done:
		return false
	}
}

// do runs fn on the actor and waits for it to finish.
func (a *sessionActor) do(ctx context.Context, fn message) error {
	ran := make(chan struct{})
	wrapped := func(a *sessionActor) {
		fn(a)
		close(ran)
	}

	select {
	case a.inbox <- wrapped:
	case <-a.done:
		return kiosk.ErrSessionNotFound
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ran:
		return nil
	case <-a.done:
		select {
		case <-ran:
			return nil
		default:
			return kiosk.ErrSessionNotFound
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *sessionActor) stop() {
	a.stopOnce.Do(func() {
		a.post(func(a *sessionActor) {
			a.abortTurn()
			a.cancelStaffReset()
			a.setProbe(false)
			a.hub.close()
			a.closed = true
		})
	})
}

func (a *sessionActor) touch() {
	a.lastActive.Store(time.Now().UnixNano())
}

func (a *sessionActor) lastSeen() time.Time {
	return time.Unix(0, a.lastActive.Load())
}

// beginTurn starts compute on its own goroutine against a snapshot of the
// session and waits for the committed reply. Input is refused while another
// turn is outstanding.
func (a *sessionActor) beginTurn(ctx context.Context, compute turnFunc) (*kiosk.TurnResponse, error) {
	var (
		pt       *pendingTurn
		beginErr error
	)

	err := a.do(ctx, func(a *sessionActor) {
		if a.turn != nil {
			beginErr = kiosk.ErrTurnInProgress
			return
		}

		a.touch()
		a.speakingUntil = time.Time{}
		a.generation++

		requestID := contextPkg.GetRequestID(ctx)
		turnCtx, cancel := context.WithCancel(a.svc.ctx)
		turnCtx = contextPkg.WithSessionID(contextPkg.WithRequestID(turnCtx, requestID), a.id)

		pt = &pendingTurn{
			generation: a.generation,
			requestID:  requestID,
			cancel:     cancel,
			result:     make(chan turnResult, 1),
		}
		a.turn = pt

		go a.runTurn(turnCtx, pt, a.session.Clone(), compute)
	})
	if err != nil {
		return nil, err
	}
	if beginErr != nil {
		return nil, beginErr
	}

	select {
	case res := <-pt.result:
		if res.err != nil {
			return nil, res.err
		}
		return &res.resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *sessionActor) runTurn(ctx context.Context, pt *pendingTurn, snapshot dialogue.Session, compute turnFunc) {
	next, reply, input := compute(ctx, snapshot)
	audio := a.svc.speak(ctx, next.Mode, reply.Text)

	committed := a.post(func(a *sessionActor) {
		a.finishTurn(ctx, pt, snapshot, next, reply, input, audio)
	})
	if !committed {
		pt.cancel()
		pt.resolve(turnResult{err: kiosk.ErrSessionNotFound})
	}
}

func (a *sessionActor) finishTurn(
	ctx context.Context,
	pt *pendingTurn,
	prev dialogue.Session,
	next dialogue.Session,
	reply dialogue.Reply,
	input turnInput,
	audio kiosk.AudioView,
) {
	// A reset or a close got here first.
	if a.turn != pt || ctx.Err() != nil {
		return
	}
	a.turn = nil
	pt.cancel()

	a.commit(pt.requestID, next, reply, escalationReason(reply))
	if audio.Simulated {
		a.speakingUntil = time.Now().Add(a.svc.config.TTSCompletionDelay)
	}

	resp := a.response(input.utterance, reply)
	resp.Audio = audio

	a.svc.recorder.recordTurn(pt.requestID, a.turnEntity(input, reply), input.recording)
	if completed := completedReception(prev, next); completed != nil {
		a.svc.recorder.recordReception(pt.requestID, a.id, *completed)
	}

	a.hub.publish(kiosk.Event{Type: kiosk.EventTurn, Turn: &resp})
	pt.resolve(turnResult{resp: resp})

	a.log.WithFields(logrus.Fields{
		"request_id": pt.requestID,
		"screen":     next.Screen,
		"service":    next.Service(),
		"step":       next.Step(),
		"escalate":   reply.Escalate,
	}).Debug("Kiosk turn committed")
}

// abortTurn cancels the outstanding turn. Its result will be discarded.
func (a *sessionActor) abortTurn() {
	if a.turn == nil {
		return
	}
	a.turn.cancel()
	a.turn.resolve(turnResult{err: kiosk.ErrTurnCanceled})
	a.turn = nil
	a.speakingUntil = time.Time{}
}

func (a *sessionActor) commit(requestID string, next dialogue.Session, reply dialogue.Reply, reason string) {
	a.session = next
	a.touch()
	a.setProbe(next.Mode == dialogue.ModeLive)

	if reply.Escalate {
		a.scheduleStaffReset()
		a.svc.recorder.recordEscalation(requestID, a.id, reason, next)
	}
}

// scheduleStaffReset returns the kiosk to the main menu once staff has been called.
func (a *sessionActor) scheduleStaffReset() {
	a.cancelStaffReset()
	a.staffToken++
	token := a.staffToken

	a.staffTimer = time.AfterFunc(a.svc.config.StaffResetDelay, func() {
		a.post(func(a *sessionActor) {
			if a.staffToken != token || a.staffTimer == nil {
				return
			}
			a.staffTimer = nil
			a.abortTurn()
			a.session = a.session.ResetToMain()
			a.touch()

			resp := a.response("", dialogue.Reply{Text: dialogue.PromptStaffArriving})
			a.hub.publish(kiosk.Event{Type: kiosk.EventStaff, Turn: &resp})
			a.log.Info("Kiosk returned to main menu after staff call")
		})
	})
}

func (a *sessionActor) cancelStaffReset() {
	if a.staffTimer != nil {
		a.staffTimer.Stop()
		a.staffTimer = nil
	}
	a.staffToken++
}

// setProbe keeps a liveness probe running exactly while the session is live.
func (a *sessionActor) setProbe(live bool) {
	switch {
	case live && a.probe == nil && a.svc.gateway != nil:
		ctx, cancel := context.WithCancel(a.svc.ctx)
		a.probe = backend.NewProbe(a.svc.gateway, a.svc.config.HealthInterval)
		a.stopProbe = cancel
		go a.probe.Run(ctx)
	case !live && a.probe != nil:
		a.stopProbe()
		a.probe = nil
		a.stopProbe = nil
	}
}

func (a *sessionActor) response(utterance string, reply dialogue.Reply) kiosk.TurnResponse {
	return kiosk.TurnResponse{
		SessionID: a.id,
		Utterance: utterance,
		Text:      reply.Text,
		Escalate:  reply.Escalate,
		Audio:     kiosk.AudioView{Simulated: true},
		Session:   a.view(),
	}
}

func (a *sessionActor) view() kiosk.SessionView {
	s := a.session
	v := kiosk.SessionView{
		ID:           a.id,
		Mode:         string(s.Mode),
		Screen:       string(s.Screen),
		Service:      string(s.Service()),
		ServiceLabel: dialogue.ServiceLabel(s.Service()),
		Step:         string(s.Step()),
		StepLabel:    dialogue.StepLabel(s.Step()),
		Busy:         a.turn != nil,
		Speaking:     time.Now().Before(a.speakingUntil),
		StaffCalled:  s.StaffCalled,
		ErrorCount:   s.Policy.ErrorCount,
		RetryCount:   s.Policy.RetryCount,
	}
	if s.StaffCalled {
		v.Status = dialogue.StatusStaffCalling
	}

	if s.Flow != nil && s.Flow.Service == dialogue.ServiceReception {
		patient := s.Flow.Patient
		v.Patient = &patient
		v.PredictedDepartment = s.Flow.PredictedDepartment
		if s.Flow.Reception != nil {
			reception := *s.Flow.Reception
			v.Reception = &reception
		}
	}

	if a.probe != nil {
		status := a.probe.Status()
		health := kiosk.HealthView{STT: status.STT, LLM: status.LLM, TTS: status.TTS}
		if !status.CheckedAt.IsZero() {
			checkedAt := status.CheckedAt
			health.CheckedAt = &checkedAt
		}
		v.Health = &health
	}

	return v
}

func escalationReason(reply dialogue.Reply) string {
	if reply.Text == dialogue.PromptRetryExceeded {
		return "retry_exceeded"
	}
	return "repeated_misunderstanding"
}

// completedReception reports the reception a turn has just finished, if any.
func completedReception(prev, next dialogue.Session) *dialogue.Flow {
	if next.Flow == nil || next.Flow.Reception == nil {
		return nil
	}
	if prev.Flow != nil && prev.Flow.Reception != nil {
		return nil
	}
	flow := *next.Flow
	return &flow
}
