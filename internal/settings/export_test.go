package settings

import "context"

// ForceSchemaVersion rewrites the stored schema version.
func ForceSchemaVersion(s *Store, version int) error {
	_, err := s.db.ExecContext(context.Background(), "UPDATE schema_version SET version = ?", version)
	return err
}
