package dialogue

const (
	MaxErrors  = 3
	MaxRetries = 3
)

// NewSession is the canonical idle session waiting for a mode choice.
func NewSession() Session {
	return Session{Screen: ScreenModeSelect}
}

func (s Session) ResetToModeSelection() Session {
	return NewSession()
}

// ResetToStart clears everything but the chosen mode.
func (s Session) ResetToStart() Session {
	return Session{Mode: s.Mode, Screen: ScreenStart}
}

// ResetToMain clears the service flow and both counters.
func (s Session) ResetToMain() Session {
	return Session{Mode: s.Mode, Screen: ScreenMain}
}

// GoBackToServices leaves the service flow but keeps the counters.
func (s Session) GoBackToServices() Session {
	return Session{Mode: s.Mode, Screen: ScreenMain, Policy: s.Policy}
}

func (s Session) SelectMode(mode Mode) Session {
	return Session{Mode: mode, Screen: ScreenStart}
}

// Start moves from the touch-to-start screen to the main menu.
func (s Session) Start() (Session, Reply) {
	if s.Screen != ScreenStart {
		return s, Reply{Text: StandingPrompt(s)}
	}
	return Session{Mode: s.Mode, Screen: ScreenMain}, Reply{Text: PromptWelcome}
}

// ReportError counts a misunderstanding. The third one calls staff.
func ReportError(s Session) (Session, string, bool) {
	s = s.Clone()
	s.Policy.ErrorCount++
	switch {
	case s.Policy.ErrorCount >= MaxErrors:
		s.StaffCalled = true
		return s, PromptStaffCall, true
	case s.Policy.ErrorCount == 2:
		return s, PromptRepeatOrTouch, false
	default:
		return s, PromptRepeat, false
	}
}

func escalate(s Session, text string) (Session, Reply) {
	s.StaffCalled = true
	return s, Reply{Text: text, Escalate: true}
}
