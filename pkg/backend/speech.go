package backend

import (
	"HospitalKiosk/pkg/simulator"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrAudioNotFound = errors.New("audio not found")
	ErrAudioTooLarge = errors.New("audio exceeds size limit")
)

// MaxAudioBytes caps a synthesized audio file fetched from the backend.
const MaxAudioBytes = 10 << 20

// Speech is the synthesized reply. Simulated speech has no audio behind it.
type Speech struct {
	AudioPath string `json:"audio_path"`
	Simulated bool   `json:"simulated,omitempty"`
}

type Upload struct {
	FileID    string `json:"file_id"`
	Extension string `json:"extension,omitempty"`
	Simulated bool   `json:"simulated,omitempty"`
}

type Transcript struct {
	Text      string `json:"text"`
	Simulated bool   `json:"simulated,omitempty"`
}

func (g *gateway) Speak(ctx context.Context, text string) Speech {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return simulatedSpeech()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.HTTPURL+"/speak", bytes.NewReader(payload))
	if err != nil {
		return simulatedSpeech()
	}
	req.Header.Set("Content-Type", "application/json")

	var speech Speech
	if err := g.doJSON(req, &speech); err != nil {
		g.log.WithField("error", err.Error()).Warn("Speech synthesis failed, continuing without audio")
		return simulatedSpeech()
	}
	if speech.AudioPath == "" {
		speech.Simulated = true
	}
	return speech
}

func (g *gateway) UploadAudio(ctx context.Context, filename string, data []byte) Upload {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err == nil {
		_, err = part.Write(data)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		return simulatedUpload()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.HTTPURL+"/upload-audio/", body)
	if err != nil {
		return simulatedUpload()
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var upload Upload
	if err := g.doJSON(req, &upload); err != nil {
		g.log.WithField("error", err.Error()).Warn("Audio upload failed, using simulated recognition")
		return simulatedUpload()
	}
	if upload.FileID == "" {
		return simulatedUpload()
	}
	if upload.Extension == "" {
		upload.Extension = strings.TrimPrefix(path.Ext(filename), ".")
	}
	return upload
}

// Recognize turns an uploaded recording into text. Anything short of a
// transcript from the backend yields a simulated one.
func (g *gateway) Recognize(ctx context.Context, upload Upload) Transcript {
	if upload.Simulated {
		return Transcript{Text: simulator.Transcript(nil), Simulated: true}
	}

	res := g.await(ctx, g.cfg.RecognitionTimeout, fileRequest{FileID: upload.FileID, Extension: upload.Extension}, stageSTT)
	if res.Outcome != OutcomeSuccess {
		fields := logrus.Fields{
			"file_id": upload.FileID,
			"outcome": res.Outcome.String(),
		}
		if res.Err != nil {
			fields["error"] = res.Err.Error()
		}
		g.log.WithFields(fields).Warn("Recognition failed, using simulated transcript")
		return Transcript{Text: simulator.Transcript(nil), Simulated: true}
	}
	return Transcript{Text: res.Text}
}

// FetchAudio loads synthesized audio by backend file name or absolute URL.
// Absolute URLs must point at the backend itself.
func (g *gateway) FetchAudio(ctx context.Context, ref string) ([]byte, string, error) {
	target, err := g.audioURL(ref)
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrAudioNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch audio: backend returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAudioBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > MaxAudioBytes {
		return nil, "", ErrAudioTooLarge
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return data, contentType, nil
}

func (g *gateway) audioURL(ref string) (string, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		name := path.Base(strings.ReplaceAll(ref, "\\", "/"))
		if name == "." || name == "/" || name == "" {
			return "", ErrAudioNotFound
		}
		return g.cfg.HTTPURL + "/ttsaudio/" + url.PathEscape(name), nil
	}

	target, err := url.Parse(ref)
	if err != nil {
		return "", ErrAudioNotFound
	}
	base, err := url.Parse(g.cfg.HTTPURL)
	if err != nil {
		return "", ErrAudioNotFound
	}
	if !strings.EqualFold(target.Scheme, base.Scheme) || !strings.EqualFold(target.Host, base.Host) {
		return "", ErrAudioNotFound
	}
	return target.String(), nil
}

func (g *gateway) doJSON(req *http.Request, out interface{}) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func simulatedSpeech() Speech {
	return Speech{AudioPath: fmt.Sprintf("simulated_%d.mp3", time.Now().UnixMilli()), Simulated: true}
}

func simulatedUpload() Upload {
	return Upload{FileID: fmt.Sprintf("simulated_%d", time.Now().UnixMilli()), Simulated: true}
}
