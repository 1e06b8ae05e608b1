package draft

// CanLeave reports whether forward navigation away from the given step is
// permitted for the draft's current contents. It is pure and synchronous;
// the wizard controller consults it before every forward transition so the
// state machine is self-defending regardless of which client triggers it.
func CanLeave(step Step, d *Draft) bool {
	switch step {
	case StepVehicle:
		return d.Vehicle() != nil
	case StepJourney:
		return d.DateRange() != nil && d.Location() != nil && d.AvailabilityConfirmed()
	case StepProtection:
		// Protection and extras are optional refinements with safe defaults.
		return true
	case StepPayment:
		return d.Payment() != nil && d.Payment().IsComplete()
	default:
		return false
	}
}
