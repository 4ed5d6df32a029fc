package command

import "github.com/dshills/drafter/internal/event"

// Phase names a stage of command processing at which listeners can hook in.
type Phase string

const (
	PhaseCanExecute   Phase = "canExecute"
	PhasePreExecute   Phase = "preExecute"
	PhasePreExecuted  Phase = "preExecuted"
	PhaseExecute      Phase = "execute"
	PhaseExecuted     Phase = "executed"
	PhasePostExecute  Phase = "postExecute"
	PhasePostExecuted Phase = "postExecuted"
	PhaseRevert       Phase = "revert"
	PhaseReverted     Phase = "reverted"
)

// Phases returns every phase in processing order.
func Phases() []Phase {
	return []Phase{
		PhaseCanExecute,
		PhasePreExecute,
		PhasePreExecuted,
		PhaseExecute,
		PhaseExecuted,
		PhasePostExecute,
		PhasePostExecuted,
		PhaseRevert,
		PhaseReverted,
	}
}

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	for _, known := range Phases() {
		if p == known {
			return true
		}
	}
	return false
}

// Atomic reports whether listeners of p run inside the atomic region.
func (p Phase) Atomic() bool {
	switch p {
	case PhaseExecute, PhaseExecuted, PhaseRevert, PhaseReverted:
		return true
	}
	return false
}

// Channel names used by the stack.
const (
	// ChannelPrefix prefixes every phase channel.
	ChannelPrefix = "stack"

	// ChangedChannel carries a Changed payload once per outermost call.
	ChangedChannel event.Channel = "stack.changed"

	// ElementsChangedChannel carries an ElementsChanged payload once per
	// outermost call.
	ElementsChangedChannel event.Channel = "elements.changed"
)

// PhaseChannel returns "stack.<command>.<phase>", or "stack.<phase>" when
// command is empty.
func PhaseChannel(command string, phase Phase) event.Channel {
	return event.Join(ChannelPrefix, command, string(phase))
}

// Changed is the payload of ChangedChannel.
type Changed struct {
	Trigger Trigger
}

// ElementsChanged is the payload of ElementsChangedChannel.
type ElementsChanged struct {
	// Elements holds each changed element once, most recent change first.
	Elements []Element
	Trigger  Trigger
}

// Stage describes where the stack currently is within a top-level call.
type Stage int

const (
	// StageIdle means no call is in flight.
	StageIdle Stage = iota
	// StagePre covers preExecute, Handler.PreExecute and preExecuted.
	StagePre
	// StageAtomic covers a handler's own Execute or Revert and the phases
	// fired around it. New actions are rejected here.
	StageAtomic
	// StagePost covers postExecute, Handler.PostExecute and postExecuted.
	StagePost
	// StageFlush covers the change notifications fired after the outermost
	// call completed.
	StageFlush
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePre:
		return "pre"
	case StageAtomic:
		return "atomic"
	case StagePost:
		return "post"
	case StageFlush:
		return "flush"
	default:
		return "unknown"
	}
}

// AllowsComposition reports whether new actions may be started in s.
func (s Stage) AllowsComposition() bool {
	return s != StageAtomic
}
