package health

import (
	"context"
	"time"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Service encapsulates health-related checks.
type Service struct {
	checks map[string]Pinger
}

// NewService constructs a new health service. Nil checks report "disabled".
func NewService(checks map[string]Pinger) *Service {
	return &Service{checks: checks}
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status runs every check with a short timeout.
func (s *Service) Status(ctx context.Context) Report {
	rep := Report{OK: true, Checks: map[string]string{}}
	for name, check := range s.checks {
		if check == nil {
			rep.Checks[name] = "disabled"
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check.PingContext(cctx)
		cancel()
		if err != nil {
			rep.OK = false
			rep.Checks[name] = err.Error()
			continue
		}
		rep.Checks[name] = "ok"
	}
	return rep
}
