package session

import (
	"context"
	"errors"
	"testing"

	"lspmcp/internal/config"
	"lspmcp/internal/lsperrors"
	"lspmcp/lsap"
)

type fakeClient struct {
	lsap.Client
	disconnects int
}

func (f *fakeClient) Disconnect() error {
	f.disconnects++
	return nil
}

func fakeConnector(clients *[]*fakeClient) Connector {
	return func(ctx context.Context, opts lsap.Options) (lsap.Client, error) {
		c := &fakeClient{}
		*clients = append(*clients, c)
		return c, nil
	}
}

func TestInitAndCurrent(t *testing.T) {
	var clients []*fakeClient
	m := NewManager(fakeConnector(&clients), config.PolicyError, nil)

	s, err := m.Init(context.Background(), lsap.Options{
		WorkspaceRoot: "/work",
		Language:      "python",
		Command:       "pyright-langserver",
	}, false)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if s.ID == "" {
		t.Error("expected a session id")
	}
	if s.Language != "python" {
		t.Errorf("expected language python, got %s", s.Language)
	}

	got, err := m.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("Current returned different session: %s != %s", got.ID, s.ID)
	}
}

func TestCurrentWithoutSession(t *testing.T) {
	m := NewManager(fakeConnector(&[]*fakeClient{}), config.PolicyError, nil)

	_, err := m.Current()
	if !lsperrors.HasCode(err, lsperrors.NoActiveSession) {
		t.Errorf("expected NO_ACTIVE_SESSION, got %v", err)
	}
}

func TestInitRejectedWhileActive(t *testing.T) {
	var clients []*fakeClient
	m := NewManager(fakeConnector(&clients), config.PolicyError, nil)

	first, err := m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/a", Language: "go"}, false)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}

	_, err = m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/b", Language: "go"}, false)
	if !lsperrors.HasCode(err, lsperrors.SessionActive) {
		t.Fatalf("expected SESSION_ACTIVE, got %v", err)
	}

	// The running session is untouched.
	got, err := m.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("rejection must keep the first session, got %s", got.ID)
	}
	if clients[0].disconnects != 0 {
		t.Errorf("rejection must not disconnect, got %d", clients[0].disconnects)
	}
}

func TestInitForceReplaces(t *testing.T) {
	var clients []*fakeClient
	m := NewManager(fakeConnector(&clients), config.PolicyError, nil)

	first, _ := m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/a", Language: "go"}, false)
	second, err := m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/b", Language: "rust"}, true)
	if err != nil {
		t.Fatalf("forced Init failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new session id")
	}
	if clients[0].disconnects != 1 {
		t.Errorf("expected old client disconnected once, got %d", clients[0].disconnects)
	}

	got, _ := m.Current()
	if got.WorkspaceRoot != "/b" {
		t.Errorf("expected new workspace, got %s", got.WorkspaceRoot)
	}
}

func TestReplacePolicy(t *testing.T) {
	var clients []*fakeClient
	m := NewManager(fakeConnector(&clients), config.PolicyReplace, nil)

	m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/a", Language: "go"}, false)
	_, err := m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/b", Language: "go"}, false)
	if err != nil {
		t.Fatalf("replace policy should allow re-init: %v", err)
	}
	if clients[0].disconnects != 1 {
		t.Errorf("expected old client disconnected, got %d", clients[0].disconnects)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	var clients []*fakeClient
	m := NewManager(fakeConnector(&clients), config.PolicyError, nil)

	m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/a", Language: "go"}, false)

	stopped, err := m.Shutdown()
	if err != nil || !stopped {
		t.Fatalf("expected stopped=true, err=nil; got %v, %v", stopped, err)
	}
	if clients[0].disconnects != 1 {
		t.Errorf("expected one disconnect, got %d", clients[0].disconnects)
	}

	stopped, err = m.Shutdown()
	if err != nil || stopped {
		t.Fatalf("second shutdown must be a no-op; got %v, %v", stopped, err)
	}
	if clients[0].disconnects != 1 {
		t.Errorf("second shutdown must not disconnect again, got %d", clients[0].disconnects)
	}
}

func TestInitConnectorFailure(t *testing.T) {
	boom := errors.New("spawn failed")
	m := NewManager(func(ctx context.Context, opts lsap.Options) (lsap.Client, error) {
		return nil, lsperrors.New(lsperrors.ServerUnreachable, "cannot start server", boom)
	}, config.PolicyError, nil)

	_, err := m.Init(context.Background(), lsap.Options{WorkspaceRoot: "/a", Language: "go"}, false)
	if !lsperrors.HasCode(err, lsperrors.ServerUnreachable) {
		t.Fatalf("expected SERVER_UNREACHABLE, got %v", err)
	}

	if _, err := m.Current(); !lsperrors.HasCode(err, lsperrors.NoActiveSession) {
		t.Errorf("failed init must leave no session, got %v", err)
	}
}
