package session

// Notifier shows short-lived messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// User-facing notification texts.
const (
	MsgSignupOK      = "Account created successfully!"
	MsgSignupFailed  = "Signup failed"
	MsgLoginOK       = "Logged in successfully!"
	MsgLoginFailed   = "Invalid email or password"
	MsgLogoutOK      = "Logged out successfully"
	MsgLogoutFailed  = "Logout failed"
	MsgProfileOK     = "Profile updated successfully!"
	MsgProfileFailed = "Profile update failed"
)
