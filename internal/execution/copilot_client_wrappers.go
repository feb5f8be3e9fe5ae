package execution

//go:generate go tool mockgen -source=copilot_client_wrappers.go -destination=copilot_client_wrappers_mock_test.go -package=execution

import (
	"context"

	copilot "github.com/github/copilot-sdk/go"
)

// copilotSession is the part of [*copilot.Session] the engine uses.
type copilotSession interface {
	On(handler copilot.SessionEventHandler) func()
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)
	SessionID() string
}

// copilotClient is the part of [*copilot.Client] the engine uses.
type copilotClient interface {
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)
	Start(ctx context.Context) error
	Stop() error
}

// newCopilotClient is replaced in tests.
var newCopilotClient = func(clientOptions *copilot.ClientOptions) copilotClient {
	return sdkClient{copilot.NewClient(clientOptions)}
}

// sdkClient adapts [*copilot.Client]; Start and Stop are promoted as is.
type sdkClient struct {
	*copilot.Client
}

func (c sdkClient) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	sess, err := c.Client.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return sdkSession{sess}, nil
}

// sdkSession adapts [*copilot.Session], whose ID is a field rather than a
// method.
type sdkSession struct {
	*copilot.Session
}

func (s sdkSession) SessionID() string {
	return s.Session.SessionID
}
