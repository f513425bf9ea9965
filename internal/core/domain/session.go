package domain

// SessionState is the client-local belief about who is signed in.
// Ready stays false until the first notification from the identity service.
type SessionState struct {
	Identity *Identity `json:"identity,omitempty"`
	Ready    bool      `json:"ready"`
}

// ViewState selects the screen group the shell presents.
type ViewState string

const (
	ViewLoading         ViewState = "loading"
	ViewUnauthenticated ViewState = "unauthenticated"
	ViewAuthenticated   ViewState = "authenticated"
)

// View derives the screen group from the session.
func (s SessionState) View() ViewState {
	switch {
	case !s.Ready:
		return ViewLoading
	case s.Identity == nil:
		return ViewUnauthenticated
	default:
		return ViewAuthenticated
	}
}

// Screen names a single screen inside a group.
type Screen string

const (
	ScreenLoading  Screen = "loading"
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
	ScreenHome     Screen = "home"
	ScreenProfile  Screen = "profile"
)

var screenGroups = map[ViewState][]Screen{
	ViewLoading:         {ScreenLoading},
	ViewUnauthenticated: {ScreenLogin, ScreenRegister},
	ViewAuthenticated:   {ScreenHome, ScreenProfile},
}

// Screens returns the screens reachable in v. The first one is the entry screen.
func (v ViewState) Screens() []Screen {
	group := screenGroups[v]
	out := make([]Screen, len(group))
	copy(out, group)
	return out
}

// OperationState tracks a single auth or profile operation.
type OperationState string

const (
	OpIdle      OperationState = "idle"
	OpInFlight  OperationState = "in_flight"
	OpSucceeded OperationState = "succeeded"
	OpFailed    OperationState = "failed"
)

// OperationStatus is the observable state of an operation. Reason is set
// only when State is OpFailed.
type OperationStatus struct {
	State  OperationState
	Reason error
}
