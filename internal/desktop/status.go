package desktop

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Status is a point-in-time summary of the session.
type Status struct {
	SessionID     string   `json:"session_id"`
	Started       string   `json:"started"`
	Uptime        string   `json:"uptime"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Cols          int      `json:"cols"`
	Rows          int      `json:"rows"`
	Particles     int      `json:"particles"`
	SnowCount     int      `json:"snow_count"`
	Wind          float64  `json:"wind"`
	WindTarget    float64  `json:"wind_target"`
	Focused       string   `json:"focused,omitempty"`
	OpenWindows   []string `json:"open_windows"`
	Reloads       int      `json:"reloads"`
}

func (s *Session) Status() Status {
	now := s.now()
	st := Status{
		SessionID:     s.ID.String(),
		Started:       s.Started.Format(time.RFC3339),
		Uptime:        strings.TrimSpace(humanize.RelTime(s.Started, now, "", "")),
		UptimeSeconds: int64(now.Sub(s.Started).Seconds()),
		Cols:          s.cols,
		Rows:          s.rows,
		SnowCount:     s.cfg.Snow.Count,
		OpenWindows:   []string{},
		Reloads:       s.reloads,
	}
	if s.Field != nil {
		st.Particles = s.Field.Len()
		st.SnowCount = s.Field.Count()
		st.Wind = s.Field.Wind().Current()
		st.WindTarget = s.Field.Wind().Target()
	}
	st.Focused, _ = s.Windows.Focused()
	for _, e := range s.Windows.Taskbar() {
		st.OpenWindows = append(st.OpenWindows, e.ID)
	}
	return st
}
