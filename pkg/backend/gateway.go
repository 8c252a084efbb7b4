package backend

import (
	"HospitalKiosk/pkg/simulator"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	stageSTT   = "stt"
	stageLLM   = "llm"
	stageError = "error"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimedOut
	OutcomeTransportError
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "transport_error"
	}
}

type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

type IGateway interface {
	// Exchange sends one text request and waits for the backend's answer stage.
	Exchange(ctx context.Context, text string, tag simulator.Tag) Result
	// Ask is Exchange with the simulator standing in for every failure.
	Ask(ctx context.Context, text string, tag simulator.Tag) string
	Query(ctx context.Context, text string, tag simulator.Tag) (string, bool)

	Recognize(ctx context.Context, upload Upload) Transcript
	UploadAudio(ctx context.Context, filename string, data []byte) Upload
	Speak(ctx context.Context, text string) Speech
	FetchAudio(ctx context.Context, ref string) ([]byte, string, error)
	Health(ctx context.Context) Health
}

type gateway struct {
	cfg       Config
	simulator simulator.IResponder
	client    *http.Client
	dialer    *websocket.Dialer
	log       *logrus.Logger
}

func New(cfg Config, sim simulator.IResponder, log *logrus.Logger) IGateway {
	cfg = cfg.withDefaults()
	return &gateway{
		cfg:       cfg,
		simulator: sim,
		client:    &http.Client{Timeout: cfg.HTTPTimeout},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.ExchangeTimeout,
		},
		log: log,
	}
}

type textRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type fileRequest struct {
	FileID    string `json:"file_id"`
	Extension string `json:"extension,omitempty"`
}

type stageMessage struct {
	Stage    string `json:"stage"`
	Text     string `json:"text,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

func (g *gateway) Exchange(ctx context.Context, text string, tag simulator.Tag) Result {
	return g.await(ctx, g.cfg.ExchangeTimeout, textRequest{Text: text, Type: string(tag)}, stageLLM)
}

func (g *gateway) Ask(ctx context.Context, text string, tag simulator.Tag) string {
	if reply, ok := g.Query(ctx, text, tag); ok {
		return reply
	}
	return g.simulator.Respond(ctx, text, tag)
}

func (g *gateway) Query(ctx context.Context, text string, tag simulator.Tag) (string, bool) {
	res := g.Exchange(ctx, text, tag)
	if res.Outcome == OutcomeSuccess && strings.TrimSpace(res.Text) != "" {
		return res.Text, true
	}

	fields := logrus.Fields{
		"tag":     tag,
		"outcome": res.Outcome.String(),
	}
	if res.Err != nil {
		fields["error"] = res.Err.Error()
	}
	g.log.WithFields(fields).Warn("Backend exchange failed")
	return "", false
}

// await runs one request over a fresh channel. The channel is closed as soon as
// ctx ends, so a late answer can never race the timeout.
func (g *gateway) await(ctx context.Context, timeout time.Duration, request interface{}, stage string) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := g.dialer.DialContext(ctx, g.cfg.WSURL, nil)
	if err != nil {
		return failure(ctx, fmt.Errorf("dial %s: %w", g.cfg.WSURL, err))
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	deadline, _ := ctx.Deadline()
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	payload, err := json.Marshal(request)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: err}
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return failure(ctx, fmt.Errorf("send request: %w", err))
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return failure(ctx, fmt.Errorf("read reply: %w", err))
		}

		var msg stageMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("malformed reply: %w", err)}
		}

		switch msg.Stage {
		case stage:
			return Result{Outcome: OutcomeSuccess, Text: msg.Text}
		case stageError:
			return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("backend error: %s", msg.Text)}
		}
	}
}

func failure(ctx context.Context, err error) Result {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Result{Outcome: OutcomeTimedOut, Err: err}
	case errors.Is(ctx.Err(), context.Canceled):
		return Result{Outcome: OutcomeCanceled, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Outcome: OutcomeTimedOut, Err: err}
	}
	return Result{Outcome: OutcomeTransportError, Err: err}
}
