package proxy

import "HospitalKiosk/pkg/response"

var (
	ErrAudioRefRequired = response.NewError(400, "path or url is required")
	ErrAudioNotFound    = response.NewError(404, "audio not found")
	ErrAudioUnavailable = response.NewError(502, "audio backend unavailable")
	ErrFileRequired     = response.NewError(400, "multipart field \"file\" is required")
)
