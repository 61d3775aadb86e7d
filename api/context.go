package api

import (
	"context"

	"github.com/epitaphe360/cms-backend/auth"
)

type keyType string

const actorKey keyType = "actor"

// ctxWithActor adds the authenticated actor to the context
func ctxWithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ctxGetActor retrieves the actor placed by the auth middleware
func ctxGetActor(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(auth.Actor)
	return actor, ok
}
