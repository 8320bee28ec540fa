package domain

// FieldSnapshot captures an entity's field values before a risky update
// so a failed email verification can restore them. Snapshots are keyed by
// user, overwritten on every update attempt and expire via storage TTL,
// so concurrent verification round-trips by different users cannot
// clobber each other and a restart does not lose the rollback window.
type FieldSnapshot struct {
	UserID    string            `json:"user_id" dynamodbav:"user_id"`
	Fields    map[string]string `json:"fields" dynamodbav:"fields"`
	ExpiresAt int64             `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds, DynamoDB TTL
}
