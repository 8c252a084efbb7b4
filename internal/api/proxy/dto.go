package proxy

type SpeakRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type AudioQuery struct {
	Path string `query:"path"`
	URL  string `query:"url"`
}

func (q AudioQuery) Ref() string {
	if q.URL != "" {
		return q.URL
	}
	return q.Path
}
