package usecase

import (
	"context"
	"fmt"

	"github.com/healingsoulutions/intake-api/internal/entity"
	"go.uber.org/zap"
)

type StepResult string

const (
	StepOK      StepResult = "ok"
	StepFailed  StepResult = "failed"
	StepSkipped StepResult = "skipped"
)

// StepObserver is told how every step ended, including skipped ones.
type StepObserver func(step, service string, result StepResult)

// Step is one call in a submission. When is evaluated right before the step
// runs, so it can depend on what earlier steps wrote to the outcome.
type Step struct {
	Name    string
	Label   string
	Service string
	Fatal   bool
	When    func() bool
	Fn      func(context.Context) error
}

// Pipeline runs steps in order. A failing non-fatal step is written to the
// outcome and the run continues; a failing fatal step ends the run.
type Pipeline struct {
	steps    []Step
	outcome  *entity.SubmissionOutcome
	observer StepObserver
	log      *zap.Logger
}

func NewPipeline(outcome *entity.SubmissionOutcome, observer StepObserver, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		outcome:  outcome,
		observer: observer,
		log:      log,
	}
}

func (p *Pipeline) AddStep(s Step) {
	p.steps = append(p.steps, s)
}

func (p *Pipeline) Execute(ctx context.Context) error {
	for _, s := range p.steps {
		if s.When != nil && !s.When() {
			p.notify(s, StepSkipped)
			continue
		}

		if err := s.Fn(ctx); err != nil {
			p.outcome.AddError(s.Label, err)
			p.notify(s, StepFailed)
			p.log.Warn("step failed",
				zap.String("step", s.Name),
				zap.String("client_id", p.outcome.ClientID),
				zap.Error(err),
			)

			if s.Fatal {
				return fmt.Errorf("step '%s' failed: %w", s.Name, err)
			}
			continue
		}
		p.notify(s, StepOK)
	}
	return nil
}

func (p *Pipeline) notify(s Step, result StepResult) {
	if p.observer != nil {
		p.observer(s.Name, s.Service, result)
	}
}
