package redisx

import "time"

const (
	// Local console state: storefront:{namespace}:{key} -> JSON blob
	KeyLocalState = "storefront:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var TTLDedup = 48 * time.Hour
