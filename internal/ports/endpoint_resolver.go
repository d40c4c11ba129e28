package ports

// EndpointResolver returns the Globus endpoint of the local machine.
type EndpointResolver interface {
	LocalEndpoint() (string, error)
}
