// Package tenant provides tenant context management for multi-tenant support.
package tenant

import (
	domainAnalytics "github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/caching/manager"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	persistenceAnalytics "github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/persistence/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/persistence/database"
)

// Context holds tenant-specific request context
type Context struct {
	TenantID     string
	Config       *Config
	Database     *Database
	Status       string
	CacheManager *manager.Manager
	Logger       *logging.ChanneledLogger
}

// Close cleans up the tenant context
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}

// GetTenantID returns the tenant ID for this context
func (ctx *Context) GetTenantID() string {
	return ctx.TenantID
}

// GetConfig returns the tenant configuration
func (ctx *Context) GetConfig() *Config {
	return ctx.Config
}

// GetDatabase returns the tenant database connection
func (ctx *Context) GetDatabase() *Database {
	return ctx.Database
}

// GetStatus returns the tenant status
func (ctx *Context) GetStatus() string {
	return ctx.Status
}

// GetCacheManager returns the cache manager
func (ctx *Context) GetCacheManager() *manager.Manager {
	return ctx.CacheManager
}

// IsActive returns true if the tenant is active
func (ctx *Context) IsActive() bool {
	return ctx.Status == "active"
}

// GetDatabaseInfo returns database connection information for logging
func (ctx *Context) GetDatabaseInfo() string {
	if ctx.Database != nil {
		return ctx.Database.GetConnectionInfo()
	}
	return "no database connection"
}

// =============================================================================
// Repository Factory Methods
// =============================================================================

// ScanRepo returns a scan repository instance.
// It returns the interface type from the domain layer.
func (ctx *Context) ScanRepo() domainAnalytics.ScanRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLScanRepository(db, ctx.Logger)
}

// SessionRepo returns a session repository instance.
func (ctx *Context) SessionRepo() domainAnalytics.SessionRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLSessionRepository(db, ctx.Logger)
}

// EventRepo returns an event repository instance.
func (ctx *Context) EventRepo() domainAnalytics.EventRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLEventRepository(db, ctx.Logger)
}

// TagRepo returns a tag repository instance.
func (ctx *Context) TagRepo() domainAnalytics.TagRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLTagRepository(db, ctx.Logger)
}
