package main

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/storefront/internal/catalog"
)

const (
	sessionCookie = "sid"
	ctxController = "ctrl"
)

type session struct {
	ctrl     *catalog.Controller
	lastSeen time.Time
}

// sessions keeps one catalog controller per browser session and evicts
// the ones idle for longer than idle.
type sessions struct {
	mu      sync.Mutex
	byID    map[string]*session
	idle    time.Duration
	newCtrl func() *catalog.Controller
	now     func() time.Time
}

func newSessions(idle time.Duration, newCtrl func() *catalog.Controller) *sessions {
	return &sessions{
		byID:    map[string]*session{},
		idle:    idle,
		newCtrl: newCtrl,
		now:     time.Now,
	}
}

// get returns the controller of id, creating it on first use.
func (s *sessions) get(id string) *catalog.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		sess = &session{ctrl: s.newCtrl()}
		s.byID[id] = sess
	}
	sess.lastSeen = s.now()
	return sess.ctrl
}

// sweep drops idle sessions and returns how many were removed.
func (s *sessions) sweep() int {
	if s.idle <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idle)
	n := 0
	for id, sess := range s.byID {
		if sess.lastSeen.Before(cutoff) {
			delete(s.byID, id)
			n++
		}
	}
	return n
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Session resolves the sid cookie, issuing a new one when it is missing or
// malformed, and stores the session's controller in the gin context.
func (s *sessions) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err == nil {
			_, err = uuid.Parse(id)
		}
		if err != nil {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, int(s.idle.Seconds()), "/", "", false, true)
		}
		c.Set(ctxController, s.get(id))
		c.Next()
	}
}

func controllerOf(c *gin.Context) *catalog.Controller {
	return c.MustGet(ctxController).(*catalog.Controller)
}
