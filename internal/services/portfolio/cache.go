package portfolio

import (
	"sync"

	"github.com/bobmcallan/papertrade/internal/models"
)

// Cache memoizes the most recent PortfolioView per user. Absence is an
// explicit missing entry — there is no sentinel value that could collide
// with real data. One user may have concurrent sessions, so access is
// mutex-guarded.
type Cache struct {
	mu    sync.Mutex
	views map[string]*models.PortfolioView
}

// NewCache creates an empty view cache.
func NewCache() *Cache {
	return &Cache{views: make(map[string]*models.PortfolioView)}
}

// Get returns the cached view for the user and whether one exists.
func (c *Cache) Get(username string) (*models.PortfolioView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.views[username]
	return view, ok
}

// Put stores the view for the user, replacing any previous one. Last
// valuation wins.
func (c *Cache) Put(username string, view *models.PortfolioView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[username] = view
}

// Invalidate drops the cached view for the user. Safe to call when no view
// is cached.
func (c *Cache) Invalidate(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, username)
}
