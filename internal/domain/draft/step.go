package draft

import "fmt"

// Step identifies a wizard step in the booking flow.
type Step int

const (
	StepVehicle Step = iota + 1
	StepJourney
	StepProtection
	StepPayment
	StepConfirmed
)

// advanceTransitions defines forward navigation. The payment step has no
// forward entry here: it is left only through a successful submission.
var advanceTransitions = map[Step]Step{
	StepVehicle:    StepJourney,
	StepJourney:    StepProtection,
	StepProtection: StepPayment,
}

// retreatTransitions defines backward navigation. The wizard never retreats
// past its own first step, and the terminal step accepts no navigation.
var retreatTransitions = map[Step]Step{
	StepJourney:    StepVehicle,
	StepProtection: StepJourney,
	StepPayment:    StepProtection,
}

var stepNames = map[Step]string{
	StepVehicle:    "vehicle",
	StepJourney:    "journey",
	StepProtection: "protection",
	StepPayment:    "payment",
	StepConfirmed:  "confirmed",
}

// IsValid returns true if the step is a recognized wizard step.
func (s Step) IsValid() bool {
	_, ok := stepNames[s]
	return ok
}

// Next returns the step reached by a plain forward transition, if one exists.
func (s Step) Next() (Step, bool) {
	next, ok := advanceTransitions[s]
	return next, ok
}

// Prev returns the step reached by a backward transition, if one exists.
func (s Step) Prev() (Step, bool) {
	prev, ok := retreatTransitions[s]
	return prev, ok
}

// IsTerminal returns true once the wizard has reached confirmation.
func (s Step) IsTerminal() bool {
	return s == StepConfirmed
}

// String returns the step's name.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// ParseStep converts a stored step index back to a Step.
func ParseStep(n int) (Step, error) {
	s := Step(n)
	if !s.IsValid() {
		return 0, fmt.Errorf("invalid wizard step: %d", n)
	}
	return s, nil
}
