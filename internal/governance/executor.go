package governance

import "council-governance/internal/logger"

// LogExecutor is the default proposal executor: it records the invocation
// and succeeds. Wiring a real target-contract call means replacing this
// collaborator, not the engine.
type LogExecutor struct {
	log *logger.Logger
}

func NewLogExecutor(log *logger.Logger) *LogExecutor {
	return &LogExecutor{log: log}
}

func (e *LogExecutor) Execute(p *Proposal) error {
	if e.log != nil {
		e.log.Printf("executing proposal %s target=%s payload=%d bytes", p.ID, p.Target, len(p.Payload))
	}
	return nil
}
