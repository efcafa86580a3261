// Package console is the terminal front end: line-based player input, localized
// event rendering and an optional live counter line.
package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xtding233/duel-engine/internal/duel"
)

type lineResult struct {
	text string
	err  error
}

// Input reads player actions one line at a time. Every prompt is answered
// with ENTER; keyed objectives take the first character typed.
type Input struct {
	r     *Renderer
	live  *Live
	lines chan lineResult
}

// NewInput reads lines from in. live may be nil.
func NewInput(in io.Reader, r *Renderer, live *Live) *Input {
	i := &Input{r: r, live: live, lines: make(chan lineResult)}
	go i.scan(in)
	return i
}

func (i *Input) scan(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		i.lines <- lineResult{text: sc.Text()}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		i.lines <- lineResult{err: err}
	}
}

func (i *Input) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-i.lines:
		return l.text, l.err
	}
}

// AwaitReady implements duel.Input.
func (i *Input) AwaitReady(ctx context.Context, _ int, _ duel.Party, _ []duel.Objective) error {
	i.r.Prompt("turn.ready")
	_, err := i.readLine(ctx)
	return err
}

// AwaitStop implements duel.Input.
func (i *Input) AwaitStop(ctx context.Context, p duel.ObjectivePrompt) (duel.Signal, error) {
	if _, keyed := p.Objective.(duel.KeyedObjective); keyed {
		i.r.Prompt("objective.keyed", p.Objective.String())
	} else {
		i.r.Prompt("objective.numeric", p.Objective.String())
	}
	if i.live != nil {
		i.live.Arm()
		defer i.live.Disarm()
	}
	line, err := i.readLine(ctx)
	if err != nil {
		return duel.Signal{}, err
	}
	var sig duel.Signal
	if s := strings.TrimSpace(line); s != "" {
		sig.Key, _ = utf8.DecodeRuneInString(s)
	}
	return sig, nil
}

// ChoosePoison implements duel.Input. The menu itself is rendered from the
// PoisonRequested event.
func (i *Input) ChoosePoison(ctx context.Context, _ duel.PoisonRequested) (string, error) {
	return i.readLine(ctx)
}

// Confirm asks the replay question until the answer is Y or N.
func (i *Input) Confirm(ctx context.Context) (bool, error) {
	for {
		i.r.Prompt("replay.prompt")
		line, err := i.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}
		i.r.Prompt("replay.invalid")
	}
}
