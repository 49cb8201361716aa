package domain

// ActorKind discriminates the identities that can be attributed to an event.
type ActorKind string

const (
	ActorUser      ActorKind = "USER"
	ActorSystem    ActorKind = "SYSTEM"
	ActorAnonymous ActorKind = "ANONYMOUS"
)

// Actor is the identity performing an operation. UserID is set only for ActorUser.
type Actor struct {
	Kind   ActorKind `json:"kind"`
	UserID string    `json:"userID,omitempty"`
}

// Authority is the audit-trail attribution recorded with every event.
// Stores persist it verbatim; authorization decisions happen one layer up,
// in the services.
type Authority struct {
	Actor Actor `json:"actor"`
}

// Direct builds an Authority acting directly as the given actor.
func Direct(actor Actor) Authority {
	return Authority{Actor: actor}
}

// UserActor returns an Actor for the given user id.
func UserActor(userID string) Actor {
	return Actor{Kind: ActorUser, UserID: userID}
}

// SystemActor returns the system Actor.
func SystemActor() Actor {
	return Actor{Kind: ActorSystem}
}

// AnonymousActor returns the anonymous Actor.
func AnonymousActor() Actor {
	return Actor{Kind: ActorAnonymous}
}
