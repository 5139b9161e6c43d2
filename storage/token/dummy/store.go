package dummystore

import (
	"sync"

	"github.com/trezcool/shule/core/session"
)

// Store is an in-memory session.TokenStorage for tests.
// The error hooks inject storage failures.
type Store struct {
	sync.Mutex
	token string

	ReadErr  error
	WriteErr error
	ClearErr error
}

var _ session.TokenStorage = (*Store)(nil) // interface compliance check

func New(token ...string) *Store {
	st := &Store{}
	if len(token) > 0 {
		st.token = token[0]
	}
	return st
}

func (st *Store) Read() (string, error) {
	st.Lock()
	defer st.Unlock()
	if st.ReadErr != nil {
		return "", st.ReadErr
	}
	return st.token, nil
}

func (st *Store) Write(token string) error {
	st.Lock()
	defer st.Unlock()
	if st.WriteErr != nil {
		return st.WriteErr
	}
	st.token = token
	return nil
}

func (st *Store) Clear() error {
	st.Lock()
	defer st.Unlock()
	if st.ClearErr != nil {
		return st.ClearErr
	}
	st.token = ""
	return nil
}

// Token reports the currently persisted token.
func (st *Store) Token() string {
	st.Lock()
	defer st.Unlock()
	return st.token
}
