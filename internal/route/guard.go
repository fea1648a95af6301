package route

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard decides whether a route of group g may be shown. It has no side effects.
func Guard(authenticated bool, g Group) Decision {
	switch {
	case g == RequiresSession && !authenticated:
		return Decision{Redirect: SignIn}
	case g == RequiresNoSession && authenticated:
		return Decision{Redirect: Profile}
	default:
		return Decision{Allow: true}
	}
}
