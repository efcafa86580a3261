package duel

import (
	"context"
	"errors"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

// Input is the interactive collaborator that produces ready, stop and poison
// signals. Implementations block until the player acts or ctx is done.
type Input interface {
	// AwaitReady blocks until the party is ready to start its turn.
	AwaitReady(ctx context.Context, round int, party Party, objectives []Objective) error
	// AwaitStop blocks while the counter runs and returns the stop signal.
	AwaitStop(ctx context.Context, prompt ObjectivePrompt) (Signal, error)
	// ChoosePoison returns the winner's raw selection.
	ChoosePoison(ctx context.Context, req PoisonRequested) (string, error)
}

// Play drives s until the game is over, asking in for every interactive step.
// Invalid poison selections are retried; any other error ends play.
func Play(ctx context.Context, s *Session, in Input) (GameEnded, error) {
	for {
		if err := ctx.Err(); err != nil {
			return GameEnded{}, err
		}
		var err error
		switch s.State() {
		case AwaitingRound:
			_, err = s.BeginRound()
		case PlayingObjectives:
			err = playTurn(ctx, s, in)
		case ResolvingRound:
			_, err = s.ResolveRound()
		case AwaitingPoisonChoice:
			err = choosePoison(ctx, s, in)
		case RoundComplete:
			_, err = s.CompleteRound()
		case GameOver:
			res, _ := s.Result()
			return res, nil
		}
		if err != nil {
			return GameEnded{}, err
		}
	}
}

func playTurn(ctx context.Context, s *Session, in Input) error {
	party, err := s.BeginTurn()
	if err != nil {
		return err
	}
	objectives := s.Objectives()
	if err := in.AwaitReady(ctx, s.Round(), party, objectives); err != nil {
		return err
	}
	for range objectives {
		prompt, err := s.StartObjective()
		if err != nil {
			return err
		}
		sig, err := in.AwaitStop(ctx, prompt)
		if err != nil {
			if cerr := s.CancelObjective(); cerr != nil {
				return errors.Join(err, cerr)
			}
			return err
		}
		if _, err := s.StopObjective(sig); err != nil {
			return err
		}
	}
	return nil
}

func choosePoison(ctx context.Context, s *Session, in Input) error {
	req, err := s.PoisonPrompt()
	if err != nil {
		return err
	}
	text, err := in.ChoosePoison(ctx, req)
	if err != nil {
		return err
	}
	if _, err := s.SelectPoison(text); err != nil && !errors.Is(err, apperrors.ErrInput) {
		return err
	}
	return nil
}
