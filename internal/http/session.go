package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"notesfrais/internal/cache"
	"notesfrais/internal/core"
	applog "notesfrais/internal/log"
	"notesfrais/internal/scan"
	"notesfrais/internal/store"
	"notesfrais/internal/view"
)

// SessionCookie names the page session cookie.
const SessionCookie = "nf_session"

// pageSession is the state of one open page: its dataset, its filter and
// sort controls and its scan trigger.
type pageSession struct {
	id    string
	store *store.DataStore
	scan  *scan.Controller

	mu       sync.Mutex
	criteria view.Criteria
	sort     view.SortState
}

// visible filters and sorts the current snapshot with criteria, which
// become the session's criteria.
func (p *pageSession) visible(criteria view.Criteria) []core.ExpenseRecord {
	p.mu.Lock()
	p.criteria = criteria
	state := p.sort
	p.mu.Unlock()
	return view.VisibleRows(p.store.All(), criteria, state)
}

// current returns the last criteria and the rows they select.
func (p *pageSession) current() (view.Criteria, []core.ExpenseRecord) {
	p.mu.Lock()
	criteria, state := p.criteria, p.sort
	p.mu.Unlock()
	return criteria, view.VisibleRows(p.store.All(), criteria, state)
}

func (p *pageSession) invokeSort(key view.SortKey) view.SortState {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sort.Invoke(key)
	return p.sort
}

func (p *pageSession) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.criteria = view.Criteria{}
	p.sort.Reset()
}

// sessions keeps page sessions in a bounded cache keyed by cookie value.
type sessions struct {
	cache   *cache.LRUCache[*pageSession]
	newPage func(id string) *pageSession
	ttl     time.Duration
	logger  *applog.Logger
}

func newSessions(max int, ttl time.Duration, newPage func(id string) *pageSession, logger *applog.Logger) *sessions {
	return &sessions{
		cache:   cache.NewLRUCache[*pageSession](max, ttl),
		newPage: newPage,
		ttl:     ttl,
		logger:  logger.WithComponent(applog.ComponentSession),
	}
}

// open starts a fresh session and sets its cookie. Every full page load
// gets its own session.
func (s *sessions) open(w http.ResponseWriter, r *http.Request) *pageSession {
	id := uuid.NewString()
	p, _ := s.cache.GetOrCreate(id, func() *pageSession { return s.newPage(id) })
	s.setCookie(w, r, id)
	s.logger.DebugContext(r.Context(), "Page session opened", applog.FieldSessionID, id)
	return p
}

// lookup returns the session named by the request cookie. Unknown or
// expired cookies get a fresh, still empty session; fresh reports that.
func (s *sessions) lookup(w http.ResponseWriter, r *http.Request) (p *pageSession, fresh bool) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if p, ok := s.cache.Get(c.Value); ok {
			return p, false
		}
	}
	return s.open(w, r), true
}

func (s *sessions) setCookie(w http.ResponseWriter, r *http.Request, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *sessions) size() int {
	return s.cache.Size()
}

// ensureLoaded loads the dataset once if nothing was loaded yet.
func (p *pageSession) ensureLoaded(ctx context.Context) error {
	if p.store.Loaded() {
		return nil
	}
	return p.store.Load(ctx)
}
