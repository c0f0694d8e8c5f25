package session

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot inline message shown on the next render
type Flash struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

// State is everything a single browser session carries between requests.
// A nil ViewingID means the viewer is idle; otherwise the story for that
// record is open.
type State struct {
	ViewingID  *int   `json:"viewing_id"`
	StoryIndex int    `json:"story_index"`
	Admin      bool   `json:"admin"`
	ShowLogin  bool   `json:"show_login"`
	Flash      *Flash `json:"flash,omitempty"`
}

func (s State) Viewing() bool {
	return s.ViewingID != nil
}

// Apply runs each action in order and returns the resulting state. The
// receiver is never modified.
func (s State) Apply(actions ...Action) State {
	for _, a := range actions {
		s = a.apply(s)
	}
	return s
}

// TakeFlash returns the pending flash, if any, along with the state that no
// longer carries it
func (s State) TakeFlash() (State, *Flash) {
	f := s.Flash
	s.Flash = nil
	return s, f
}

type Action interface {
	apply(State) State
}

type OpenStory struct {
	ID    int
	Index int
}

func (a OpenStory) apply(s State) State {
	id := a.ID
	s.ViewingID = &id
	s.StoryIndex = a.Index
	return s
}

type CloseStory struct{}

func (CloseStory) apply(s State) State {
	s.ViewingID = nil
	return s
}

type ToggleLogin struct{}

func (ToggleLogin) apply(s State) State {
	s.ShowLogin = !s.ShowLogin
	return s
}

type LoginSucceeded struct{}

func (LoginSucceeded) apply(s State) State {
	s.Admin = true
	s.ShowLogin = false
	s.Flash = &Flash{Kind: FlashSuccess, Text: "✓ Admin access granted!"}
	return s
}

type LoginFailed struct{}

func (LoginFailed) apply(s State) State {
	s.Flash = &Flash{Kind: FlashError, Text: "❌ Invalid username or password"}
	return s
}

type Logout struct{}

func (Logout) apply(s State) State {
	s.Admin = false
	return s
}

type SetFlash struct {
	Kind FlashKind
	Text string
}

func (a SetFlash) apply(s State) State {
	s.Flash = &Flash{Kind: a.Kind, Text: a.Text}
	return s
}
