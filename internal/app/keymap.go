package app

// Key binding constants used in handleKey.
const (
	KeyCtrlC     = "ctrl+c"
	KeyTab       = "tab"
	KeyShiftTab  = "shift+tab"
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyBackspace = "backspace"
	KeyClearLine = "ctrl+u"
	KeyClearAll  = "ctrl+l"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyPgUp      = "pgup"
	KeyPgDown    = "pgdown"
)
