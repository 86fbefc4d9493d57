package keychain

import (
	"fmt"

	"github.com/benaskins/socialhub/internal/audit"
)

// AuditedStore wraps a Store and records every access in an audit log.
type AuditedStore struct {
	inner Store
	audit *audit.Logger
	actor string // "cli" or "daemon"
}

// NewAuditedStore wraps an existing store with audit logging.
func NewAuditedStore(inner Store, auditLog *audit.Logger, actor string) *AuditedStore {
	return &AuditedStore{
		inner: inner,
		audit: auditLog,
		actor: actor,
	}
}

func (s *AuditedStore) Set(key, value string) error {
	if err := s.inner.Set(key, value); err != nil {
		s.log(audit.ActionCredentialWrite, key, err)
		return fmt.Errorf("audited store set: %w", err)
	}
	s.log(audit.ActionCredentialWrite, key, nil)
	return nil
}

func (s *AuditedStore) Get(key string) (string, error) {
	val, err := s.inner.Get(key)
	if err != nil {
		return "", fmt.Errorf("audited store get: %w", err)
	}
	s.log(audit.ActionCredentialRead, key, nil)
	return val, nil
}

func (s *AuditedStore) Delete(key string) error {
	if err := s.inner.Delete(key); err != nil {
		s.log(audit.ActionCredentialDelete, key, err)
		return fmt.Errorf("audited store delete: %w", err)
	}
	s.log(audit.ActionCredentialDelete, key, nil)
	return nil
}

func (s *AuditedStore) GetMultiple(keys []string) (map[string]string, error) {
	result, err := s.inner.GetMultiple(keys)
	if err != nil {
		return nil, fmt.Errorf("audited store get multiple: %w", err)
	}
	for _, key := range keys {
		if _, ok := result[key]; ok {
			s.log(audit.ActionCredentialRead, key, nil)
		}
	}
	return result, nil
}

// log is best-effort: a failure to write the audit entry never fails the
// store operation.
func (s *AuditedStore) log(action audit.Action, key string, opErr error) {
	entry := audit.Entry{
		Action: action,
		Key:    key,
		Actor:  s.actor,
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}
	_ = s.audit.Log(entry)
}
