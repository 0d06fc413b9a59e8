package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for pushing data to connected clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a payload to every client subscribed to topic.
	Broadcast(topic string, payload interface{})

	// -----------------------------------------------------------------------------
	// UpdateSnapshot replaces the state sent to clients when they connect.
	UpdateSnapshot(topic string, payload interface{})

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
