package contextkeys

// Custom key type to avoid context collisions.
type contextKey string

// DBContextKey is the key under which the per-request *gorm.DB handle
// (connection pool, or a test transaction) is stored.
const DBContextKey = contextKey("db")
