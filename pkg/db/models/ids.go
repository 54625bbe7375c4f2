package models

import "github.com/google/uuid"

// ensureID assigns a random UUID when the caller left the primary key empty.
// Postgres fills ids through gen_random_uuid(); sqlite has no equivalent.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
