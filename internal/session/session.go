// Package session owns the single active language-server session and the
// policy for replacing it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lspmcp/internal/config"
	"lspmcp/internal/logging"
	"lspmcp/internal/lsperrors"
	"lspmcp/lsap"
)

// Session is one initialized connection to a language server.
type Session struct {
	ID            string
	WorkspaceRoot string
	Language      string
	Command       string
	Args          []string
	StartedAt     time.Time
	Client        lsap.Client
}

// Connector establishes a language-server connection. Tests substitute it
// to avoid spawning processes.
type Connector func(ctx context.Context, opts lsap.Options) (lsap.Client, error)

// Manager serializes session lifecycle. At most one session is active.
type Manager struct {
	mu      sync.Mutex
	current *Session

	connect Connector
	policy  string
	log     *logging.Logger
}

// NewManager creates a manager with the given connector and replacement
// policy (config.PolicyError or config.PolicyReplace).
func NewManager(connect Connector, policy string, log *logging.Logger) *Manager {
	if connect == nil {
		connect = lsap.Connect
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{connect: connect, policy: policy, log: log}
}

// Init starts a session. If one is already active it is replaced only when
// force is set or the manager policy is replace; otherwise the call is
// rejected without touching the running server.
func (m *Manager) Init(ctx context.Context, opts lsap.Options, force bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if !force && m.policy != config.PolicyReplace {
			return nil, lsperrors.Newf(lsperrors.SessionActive,
				"a session for %s is already active (id %s)", m.current.WorkspaceRoot, m.current.ID).
				WithHint("pass force=true to replace it, or call shutdown_lsp_client first")
		}
		m.log.Info("replacing active session", logging.Fields{"session_id": m.current.ID})
		if err := m.current.Client.Disconnect(); err != nil {
			m.log.Warn("failed to disconnect replaced session", logging.Fields{"error": err.Error()})
		}
		m.current = nil
	}

	client, err := m.connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:            uuid.NewString(),
		WorkspaceRoot: opts.WorkspaceRoot,
		Language:      opts.Language,
		Command:       opts.Command,
		Args:          opts.Args,
		StartedAt:     time.Now(),
		Client:        client,
	}
	m.current = s

	m.log.Info("session started", logging.Fields{
		"session_id": s.ID,
		"language":   s.Language,
		"workspace":  s.WorkspaceRoot,
	})
	return s, nil
}

// Current returns the active session, or a NO_ACTIVE_SESSION error.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, lsperrors.New(lsperrors.NoActiveSession,
			"no active session", nil)
	}
	return m.current, nil
}

// Shutdown stops the active session. Calling it with no session is not an
// error; the returned flag reports whether a session was actually stopped.
func (m *Manager) Shutdown() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false, nil
	}

	s := m.current
	m.current = nil
	err := s.Client.Disconnect()

	m.log.Info("session stopped", logging.Fields{
		"session_id": s.ID,
		"uptime_s":   int(time.Since(s.StartedAt).Seconds()),
	})
	return true, err
}
