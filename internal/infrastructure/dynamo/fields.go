package dynamo

// DynamoDB attribute names used in keys and update expressions.
const (
	fieldProfileID = "profile_id"
	fieldUpdatedAt = "updated_at"
)
