package session

import (
	"testing"
	"time"

	"github.com/icza/mighty"
)

func TestInMemStore(t *testing.T) {
	eq := mighty.Eq(t)

	st := NewInMemStoreOptions(&InMemStoreOptions{Logger: discardLogger})
	defer st.Close()

	eq(nil, st.Load("asdf"))

	s := NewSession()
	st.Save(s)
	time.Sleep(10 * time.Millisecond)
	eq(s, st.Load(s.ID()))
	eq(false, s.New())

	// Saving again replaces, doesn't duplicate.
	s.SetAttr("a", 1)
	st.Save(s)
	v, _ := st.Load(s.ID()).Attr("a")
	eq(1, v)

	st.Remove(s)
	eq(nil, st.Load(s.ID()))
}

func TestInMemStoreSessCleaner(t *testing.T) {
	eq := mighty.Eq(t)

	st := NewInMemStoreOptions(&InMemStoreOptions{
		SessCleanerInterval: 10 * time.Millisecond,
		Logger:              discardLogger,
	})
	defer st.Close()

	s := NewSessionOptions(&SessOptions{Timeout: 50 * time.Millisecond})
	st.Save(s)
	eq(s, st.Load(s.ID()))

	time.Sleep(30 * time.Millisecond)
	eq(s, st.Load(s.ID()))

	time.Sleep(100 * time.Millisecond)
	eq(nil, st.Load(s.ID()))
}

func TestInMemStoreCloseTwice(t *testing.T) {
	st := NewInMemStoreOptions(&InMemStoreOptions{Logger: discardLogger})
	st.Close()
	st.Close()
}
