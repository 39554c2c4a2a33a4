package repos

import (
  "database/sql"
  "errors"
)

// insertConflict tells apart the two ways a Scan on an
// `INSERT ... ON CONFLICT DO NOTHING RETURNING id` can fail: no row
// back means the conflict branch fired (not an error), anything else
// is a genuine SQL failure and must surface.
func insertConflict(err error) (bool, error) {
  if errors.Is(err, sql.ErrNoRows) {
    return true, nil
  }
  return false, err
}
