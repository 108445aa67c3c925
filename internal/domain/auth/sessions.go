package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/kv"
)

// SlotKey holds the identity of the most recent login; it is what Restore
// reads at startup. Each session also has its own key under SlotKey.
const SlotKey = "kpi_user"

// lastLogin is the value under SlotKey. SessionID names the session that
// owns the slot so an older session's logout leaves it alone.
type lastLogin struct {
	SessionID string       `json:"sessionId"`
	User      kpi.Employee `json:"user"`
}

// EmployeeSource supplies the employees that can sign in.
type EmployeeSource interface {
	Employees() []kpi.Employee
}

// Session is a signed-in identity and the bearer token that represents it.
type Session struct {
	ID        string       `json:"id"`
	Employee  kpi.Employee `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type Sessions struct {
	slot      Slot
	employees EmployeeSource
	secret    string
	ttl       time.Duration
	now       func() time.Time
}

func NewSessions(slot Slot, employees EmployeeSource, secret string, ttl time.Duration) *Sessions {
	return &Sessions{slot: slot, employees: employees, secret: secret, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string {
	return SlotKey + "/" + id
}

func normalizeIdentifier(raw string) string {
	return cases.Fold().String(strings.TrimSpace(raw))
}

// Authenticate finds the employee whose code or email matches identifier
// (case-insensitive, trimmed) and whose password matches. Stored bcrypt
// hashes are verified with bcrypt; anything else is compared as plain text.
func (s *Sessions) Authenticate(identifier, password string) (kpi.Employee, error) {
	id := normalizeIdentifier(identifier)
	pass := strings.TrimSpace(password)
	if id == "" {
		return kpi.Employee{}, ErrInvalidCredentials
	}
	for _, e := range s.employees.Employees() {
		if normalizeIdentifier(e.Code) != id && normalizeIdentifier(e.Email) != id {
			continue
		}
		if passwordMatches(strings.TrimSpace(e.Password), pass) {
			role, _ := kpi.NormalizeRole(string(e.Role))
			e.Role = role
			return e.Public(), nil
		}
	}
	return kpi.Employee{}, ErrInvalidCredentials
}

func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return CheckPassword(stored, given) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(v string) bool {
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}

// Login authenticates and persists the identity. On failure nothing is
// written.
func (s *Sessions) Login(ctx context.Context, identifier, password string) (Session, error) {
	emp, err := s.Authenticate(identifier, password)
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	sess := Session{ID: uuid.NewString(), Employee: emp, ExpiresAt: now.Add(s.ttl)}
	sess.Token, err = IssueToken(s.secret, sess.ID, emp, now, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	payload, err := json.Marshal(emp)
	if err != nil {
		return Session{}, err
	}
	if err := s.slot.Put(ctx, sessionKey(sess.ID), payload); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	last, err := json.Marshal(lastLogin{SessionID: sess.ID, User: emp})
	if err != nil {
		return Session{}, err
	}
	if err := s.slot.Put(ctx, SlotKey, last); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// Current returns the identity stored for a session id.
func (s *Sessions) Current(ctx context.Context, sessionID string) (kpi.Employee, error) {
	return s.read(ctx, sessionKey(sessionID))
}

// Restore returns the identity of the most recent login, if any.
func (s *Sessions) Restore(ctx context.Context) (kpi.Employee, bool, error) {
	last, err := s.last(ctx)
	if errors.Is(err, ErrNoSession) {
		return kpi.Employee{}, false, nil
	}
	if err != nil {
		return kpi.Employee{}, false, err
	}
	return last.User, true, nil
}

// Logout clears the session's slot. The most-recent-login slot is cleared
// only when this session owns it.
func (s *Sessions) Logout(ctx context.Context, sessionID string) error {
	if sessionID != "" {
		if err := s.slot.Delete(ctx, sessionKey(sessionID)); err != nil {
			return err
		}
	}
	last, err := s.last(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err == nil && last.SessionID != sessionID {
		return nil
	}
	return s.slot.Delete(ctx, SlotKey)
}

// Verify parses a bearer token and checks that its session was not logged out.
func (s *Sessions) Verify(ctx context.Context, token string) (*Claims, kpi.Employee, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, kpi.Employee{}, err
	}
	emp, err := s.Current(ctx, claims.SessionID())
	if err != nil {
		return nil, kpi.Employee{}, err
	}
	return claims, emp, nil
}

func (s *Sessions) read(ctx context.Context, key string) (kpi.Employee, error) {
	raw, err := s.slot.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return kpi.Employee{}, ErrNoSession
	}
	if err != nil {
		return kpi.Employee{}, err
	}
	var emp kpi.Employee
	if err := json.Unmarshal(raw, &emp); err != nil {
		return kpi.Employee{}, fmt.Errorf("decode session: %w", err)
	}
	return emp, nil
}

func (s *Sessions) last(ctx context.Context) (lastLogin, error) {
	raw, err := s.slot.Get(ctx, SlotKey)
	if errors.Is(err, kv.ErrNotFound) {
		return lastLogin{}, ErrNoSession
	}
	if err != nil {
		return lastLogin{}, err
	}
	var last lastLogin
	if err := json.Unmarshal(raw, &last); err != nil {
		return lastLogin{}, fmt.Errorf("decode last login: %w", err)
	}
	return last, nil
}
