// Package pg provides a PostgreSQL session cache engine built on
// github.com/jackc/pgx/v5.
//
// Connect opens a pgxpool with retries, Migrate applies the embedded goose
// migrations that create the http_sessions table, and Cache implements the
// Get/Set/Delete/Ready contract used by the session manager. Expired rows are
// ignored by Get and can be removed in bulk with Cache.DeleteExpired.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//	    return err
//	}
//	manager, err := session.New(
//	    session.WithPasswords(password),
//	    session.WithCache(pg.NewCache(pool, cfg)),
//	)
package pg
