package core

import "time"

// RemotePilot identifies the registered operator of the station.
type RemotePilot struct {
	Email              string `json:"email"`
	RegistrationNumber string `json:"registrationNumber"`
}

// Session describes one recording session from station start to save.
type Session struct {
	ID        string      `json:"id"`
	Station   string      `json:"station"` // station serial number
	Name      string      `json:"name"`
	StartedAt time.Time   `json:"startedAt"`
	EndedAt   time.Time   `json:"endedAt"`
	Pilot     RemotePilot `json:"pilot"`
}

// Active reports whether the session has not been closed yet.
func (s Session) Active() bool {
	return s.EndedAt.IsZero()
}

// UploadMetadata accompanies a session export uploaded to the web frontend.
type UploadMetadata struct {
	Station     string  `json:"station"`
	SessionName string  `json:"sessionName"`
	DurationSec float64 `json:"durationSec"`
	Tag         string  `json:"tag"`
}
