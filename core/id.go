package core

import (
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// NewID generates a random UUID string used for session identifiers.
func NewID() string { return uuid.NewString() }

// NewRunID generates a short, time-sortable identifier for a single run.
func NewRunID() string { return xid.New().String() }
