package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTTL = 12 * time.Hour

type Service struct {
	repo       Repository
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewService(repo Repository, signingKey []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, signingKey: signingKey, ttl: ttl, now: time.Now}
}

// SetClock overrides the service's time source, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateSession binds a source system's patient identifier to a local patient
// ID and mints the access token for it. An earlier active session for the
// same external identifier is deactivated first.
func (s *Service) CreateSession(ctx context.Context, externalPatientID, patientID string) (*Session, error) {
	if externalPatientID == "" {
		return nil, fmt.Errorf("external_patient_id is required")
	}
	if patientID == "" {
		patientID = externalPatientID
	}

	if prev, err := s.repo.GetActiveByExternalID(ctx, externalPatientID); err != nil {
		return nil, err
	} else if prev != nil {
		if err := s.repo.Deactivate(ctx, prev.ID); err != nil {
			return nil, fmt.Errorf("deactivate previous session: %w", err)
		}
	}

	now := s.now().UTC()
	sess := &Session{
		ID:                uuid.New(),
		ExternalPatientID: externalPatientID,
		PatientID:         patientID,
		ExpiresAt:         now.Add(s.ttl),
		Active:            true,
		CreatedAt:         now,
	}

	token, err := s.mintToken(sess, now)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	sess.AccessToken = token

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) mintToken(sess *Session, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": sess.PatientID,
		"ext": sess.ExternalPatientID,
		"sid": sess.ID.String(),
		"iat": now.Unix(),
		"exp": sess.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// VerifyToken parses and validates an access token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ResolvePatientID maps a source system's patient identifier to the local
// patient ID. With no active session the identifier is assumed to already be
// local and is returned unchanged.
func (s *Service) ResolvePatientID(ctx context.Context, externalPatientID string) (string, error) {
	sess, err := s.repo.GetActiveByExternalID(ctx, externalPatientID)
	if err != nil {
		return "", err
	}
	if sess == nil || sess.Expired(s.now().UTC()) {
		return externalPatientID, nil
	}
	return sess.PatientID, nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}
