package telemetry

import (
	"io"
	"log"
	"strings"

	"github.com/xtding233/duel-engine/internal/duel"
)

// LogObserver writes one line per session event.
type LogObserver struct {
	logger *log.Logger
}

// NewLogObserver logs to w with the command prefix.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{logger: log.New(w, "[DUEL] ", log.LstdFlags)}
}

// Observe implements duel.Observer.
func (o *LogObserver) Observe(e duel.Event) {
	switch ev := e.(type) {
	case duel.GameStarted:
		o.logger.Printf("%s session=%s parties=%d", ev.EventName(), ev.SessionID, len(ev.Parties))
	case duel.RoundStarted:
		o.logger.Printf("%s round=%d objectives=%s", ev.EventName(), ev.Round, duel.FormatObjectives(ev.Objectives))
	case duel.TurnStarted:
		o.logger.Printf("%s round=%d party=%q", ev.EventName(), ev.Round, ev.Party.String())
	case duel.ObjectiveResolved:
		o.logger.Printf("%s round=%d party=%q objective=%s value=%d miss=%d score=%d",
			ev.EventName(), ev.Round, ev.Party, ev.Objective, ev.CounterValue, ev.Miss, ev.Score)
	case duel.InputRejected:
		o.logger.Printf("%s round=%d party=%q input=%q err=%v", ev.EventName(), ev.Round, ev.Party, ev.Input, ev.Err)
	case duel.RoundResolved:
		if ev.Tie {
			o.logger.Printf("%s round=%d tie=true", ev.EventName(), ev.Round)
			return
		}
		o.logger.Printf("%s round=%d winner=%q losers=%q loss=%d",
			ev.EventName(), ev.Round, ev.Winner, strings.Join(ev.Losers, ","), ev.VitalityLoss)
	case duel.PoisonRequested:
		o.logger.Printf("%s round=%d winner=%q", ev.EventName(), ev.Round, ev.Winner)
	case duel.PoisonApplied:
		o.logger.Printf("%s round=%d poison=%s target=%q", ev.EventName(), ev.Round, ev.Poison, ev.Target.String())
	case duel.GameEnded:
		o.logger.Printf("%s rounds=%d winner=%q eliminated=%q",
			ev.EventName(), ev.Rounds, ev.Winner, strings.Join(ev.Eliminated, ","))
	default:
		o.logger.Printf("%s", e.EventName())
	}
}
