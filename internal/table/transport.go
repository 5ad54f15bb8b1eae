package table

// Transport delivers view updates to whoever is watching a table. The
// mediator publishes through it after every successful mutation; the
// websocket server implements it by fanning out to subscribed
// connections. Implementations must not block on slow consumers.
type Transport interface {
	// PublishPublic delivers the shared view to every subscriber of the
	// table, players and spectators alike.
	PublishPublic(tableID string, view any)

	// PublishPlayer delivers a seat's private view to that player's
	// connections only.
	PublishPlayer(tableID, playerID string, view any)
}
