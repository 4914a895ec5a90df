package announcements

// Level is the severity of a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one line of feedback for the acting user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notices collects feedback in the order it was produced.
type Notices []Notice

// Success appends a success notice.
func (n *Notices) Success(msg string) {
	*n = append(*n, Notice{Level: LevelSuccess, Message: msg})
}

// Error appends an error notice.
func (n *Notices) Error(msg string) {
	*n = append(*n, Notice{Level: LevelError, Message: msg})
}

// HasErrors reports whether any error notice was added.
func (n Notices) HasErrors() bool {
	for _, notice := range n {
		if notice.Level == LevelError {
			return true
		}
	}
	return false
}
